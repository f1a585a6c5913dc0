package service

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-drift/identity"
	"github.com/beka-birhanu/vinom-drift/infrastruture/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPilotAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-Drift-key"), bcrypt.MinCost)
	require.NoError(t, err)
	pilot, err := identity.NewPilot("navigator", string(hash))
	require.NoError(t, err)

	tokenizer := token.NewJwtService("secret", "vinom-drift")
	auth := NewPilotAuth(pilot, tokenizer, time.Minute)

	t.Run("valid credentials", func(t *testing.T) {
		tok, err := auth.SignIn("navigator", "s3cret-Drift-key")
		require.NoError(t, err)

		claims, err := tokenizer.Decode(tok)
		require.NoError(t, err)
		assert.Equal(t, "navigator", claims["sub"])
		assert.Equal(t, pilotRole, claims["role"])
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := auth.SignIn("navigator", "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong name", func(t *testing.T) {
		_, err := auth.SignIn("someone", "s3cret-Drift-key")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
