package service

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-drift/identity"
	"github.com/beka-birhanu/vinom-drift/service/i"
)

const (
	defaultTokenTTL = 24 * time.Hour
	pilotRole       = "pilot"
)

var ErrInvalidCredentials = errors.New("invalid pilot name or key")

var _ i.PilotAuthenticator = &PilotAuth{}

// PilotAuth signs in the configured pilot.
type PilotAuth struct {
	pilot     *identity.Pilot
	tokenizer i.Tokenizer
	ttl       time.Duration
}

// NewPilotAuth creates a PilotAuth. A non-positive ttl selects one day.
func NewPilotAuth(pilot *identity.Pilot, tokenizer i.Tokenizer, ttl time.Duration) *PilotAuth {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &PilotAuth{pilot: pilot, tokenizer: tokenizer, ttl: ttl}
}

// SignIn implements i.PilotAuthenticator.
func (a *PilotAuth) SignIn(name, key string) (string, error) {
	if name != a.pilot.Name || !a.pilot.VerifyKey(key) {
		return "", ErrInvalidCredentials
	}

	return a.tokenizer.Generate(a.pilot.Name, map[string]any{
		"role": pilotRole,
	}, a.ttl)
}
