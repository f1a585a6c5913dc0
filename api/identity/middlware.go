package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextPilotClaims is the key used to store pilot claims in the Gin context.
	ContextPilotClaims = "pilotClaims"
)

func Authorize(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatus(http.StatusUnauthorized) // Malformed Authorization header.
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Attach pilot claims to the request context for further use.
		c.Set(ContextPilotClaims, claims)
		c.Next()
	}
}
