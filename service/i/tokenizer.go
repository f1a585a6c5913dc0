package i

import (
	"time"
)

// Tokenizer defines methods for generating and decoding tokens.
type Tokenizer interface {
	// Generate signs a token for subject carrying the extra claims and
	// expiring after ttl.
	Generate(subject string, claims map[string]any, ttl time.Duration) (string, error)

	// Decode validates a token, returning its claims.
	Decode(token string) (map[string]any, error)
}
