package identity

import (
	"errors"
	"regexp"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

const (
	minKeyStrengthScore = 3

	namePattern   = `^[a-zA-Z0-9_]+$` // Alphanumeric with underscores
	minNameLength = 3
	maxNameLength = 20

	keyHashCost = 12
)

var (
	nameRegex = regexp.MustCompile(namePattern)

	ErrNameTooShort   = errors.New("pilot name too short")
	ErrNameTooLong    = errors.New("pilot name too long")
	ErrInvalidName    = errors.New("invalid pilot name format")
	ErrWeakKey        = errors.New("weak pilot key")
	ErrInvalidKeyHash = errors.New("pilot key hash is not a bcrypt hash")
)

// Pilot is the single operator allowed to steer the agent.
type Pilot struct {
	Name    string
	KeyHash string
}

// NewPilot builds a Pilot from a configured name and an existing key hash.
func NewPilot(name, keyHash string) (*Pilot, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if _, err := bcrypt.Cost([]byte(keyHash)); err != nil {
		return nil, ErrInvalidKeyHash
	}
	return &Pilot{Name: name, KeyHash: keyHash}, nil
}

// VerifyKey verifies if the given key matches the stored hash.
func (p *Pilot) VerifyKey(key string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(p.KeyHash), []byte(key))
	return err == nil
}

// ValidateName validates the pilot name.
func ValidateName(name string) error {
	if len(name) < minNameLength {
		return ErrNameTooShort
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}
	return nil
}

// ValidateKey checks the strength of the key.
func ValidateKey(key string, userInputs ...string) error {
	result := zxcvbn.PasswordStrength(key, userInputs)
	if result.Score < minKeyStrengthScore {
		return ErrWeakKey
	}
	return nil
}

// HashKey validates the key strength and generates its bcrypt hash.
func HashKey(key string, userInputs ...string) (string, error) {
	if err := ValidateKey(key, userInputs...); err != nil {
		return "", err
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(key), keyHashCost)
	return string(bytes), err
}
