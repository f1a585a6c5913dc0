package identity

// TokenRequest carries the pilot credentials.
type TokenRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// TokenResponse carries the bearer token for the protected routes.
type TokenResponse struct {
	Token string `json:"token"`
}
