package i

// PilotAuthenticator signs the agent pilot in and hands out access tokens.
type PilotAuthenticator interface {
	// SignIn verifies the pilot credentials and returns a bearer token.
	SignIn(name, key string) (string, error)
}
