/*
Package encoder turns session snapshots into bytes for HTTP responses,
websocket frames and the broadcast channel.
*/
package encoder

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-drift/game"
	"github.com/beka-birhanu/vinom-drift/maze"
)

const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
)

var (
	ErrUnknownContentType = errors.New("unknown content type")
	ErrMalformedSnapshot  = errors.New("malformed snapshot payload")
)

// Encoder marshals and unmarshals snapshots in one wire format.
type Encoder interface {
	MarshalSnapshot(s game.Snapshot) ([]byte, error)
	UnmarshalSnapshot(b []byte) (game.Snapshot, error)
	ContentType() string
}

// ForContentType returns the encoder serving ct.
func ForContentType(ct string) (Encoder, error) {
	switch ct {
	case ContentTypeJSON:
		return &JSON{}, nil
	case ContentTypeProtobuf:
		return &Protobuf{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
}

// checkShape rejects snapshots whose walls or cells do not fit their grid.
// Dimensions are bounded before they are multiplied.
func checkShape(s game.Snapshot) error {
	if s.Rows <= 0 || s.Cols <= 0 || s.Rows > maze.MaxDimension || s.Cols > maze.MaxDimension {
		return fmt.Errorf("%w: dimensions %dx%d", ErrMalformedSnapshot, s.Rows, s.Cols)
	}
	if len(s.Walls) != s.Rows*s.Cols {
		return fmt.Errorf("%w: %d walls for %dx%d", ErrMalformedSnapshot, len(s.Walls), s.Rows, s.Cols)
	}

	cells := append([]maze.CellPosition{s.Agent, s.Destination}, s.Path...)
	if swap := s.LastSwap; swap != nil {
		cells = append(cells, swap.Closed.A, swap.Closed.B, swap.Opened.A, swap.Opened.B)
	}
	for _, pos := range cells {
		if pos.Row < 0 || pos.Row >= s.Rows || pos.Col < 0 || pos.Col >= s.Cols {
			return fmt.Errorf("%w: cell %v outside %dx%d", ErrMalformedSnapshot, pos, s.Rows, s.Cols)
		}
	}
	return nil
}
