package encoder

import (
	"github.com/beka-birhanu/vinom-drift/game"
	json "github.com/goccy/go-json"
)

var _ Encoder = &JSON{}

type JSON struct{}

// MarshalSnapshot implements Encoder.
func (j *JSON) MarshalSnapshot(s game.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot implements Encoder.
func (j *JSON) UnmarshalSnapshot(b []byte) (game.Snapshot, error) {
	var s game.Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return game.Snapshot{}, malformed(err)
	}
	if err := checkShape(s); err != nil {
		return game.Snapshot{}, err
	}
	return s, nil
}

// ContentType implements Encoder.
func (j *JSON) ContentType() string { return ContentTypeJSON }
