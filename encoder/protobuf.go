package encoder

import (
	"fmt"
	"math"

	"github.com/beka-birhanu/vinom-drift/game"
	"github.com/beka-birhanu/vinom-drift/maze"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var _ Encoder = &Protobuf{}

// Protobuf writes snapshots as the drift.Snapshot message of snapshot.proto.
type Protobuf struct{}

// ContentType implements Encoder.
func (p *Protobuf) ContentType() string { return ContentTypeProtobuf }

// MarshalSnapshot implements Encoder.
func (p *Protobuf) MarshalSnapshot(s game.Snapshot) ([]byte, error) {
	if err := checkShape(s); err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(snapshotMessage)
	msg.Set(snapshotField(fieldVersion), protoreflect.ValueOfInt64(s.Version))
	msg.Set(snapshotField(fieldRows), protoreflect.ValueOfUint32(uint32(s.Rows)))
	msg.Set(snapshotField(fieldCols), protoreflect.ValueOfUint32(uint32(s.Cols)))

	walls := msg.Mutable(snapshotField(fieldWalls)).List()
	for _, w := range s.Walls {
		walls.Append(protoreflect.ValueOfUint32(uint32(w)))
	}
	appendPositions(msg, fieldPath, s.Path...)
	setPosition(msg, fieldAgent, s.Agent)
	setPosition(msg, fieldDestination, s.Destination)

	msg.Set(snapshotField(fieldTick), protoreflect.ValueOfInt64(s.Tick))
	msg.Set(snapshotField(fieldGeneration), protoreflect.ValueOfInt64(s.Generation))
	msg.Set(snapshotField(fieldID), protoreflect.ValueOfBytes(s.ID[:]))
	msg.Set(snapshotField(fieldProbability), protoreflect.ValueOfFloat64(s.MutationProbability))
	msg.Set(snapshotField(fieldStrategy), protoreflect.ValueOfString(string(s.Strategy)))

	if swap := s.LastSwap; swap != nil {
		appendPositions(msg, fieldLastSwap, swap.Closed.A, swap.Closed.B, swap.Opened.A, swap.Opened.B)
	}
	return proto.Marshal(msg)
}

// UnmarshalSnapshot implements Encoder.
func (p *Protobuf) UnmarshalSnapshot(b []byte) (game.Snapshot, error) {
	msg := dynamicpb.NewMessage(snapshotMessage)
	if err := proto.Unmarshal(b, msg); err != nil {
		return game.Snapshot{}, malformed(err)
	}

	s := game.Snapshot{
		Version:             msg.Get(snapshotField(fieldVersion)).Int(),
		Tick:                msg.Get(snapshotField(fieldTick)).Int(),
		Generation:          msg.Get(snapshotField(fieldGeneration)).Int(),
		Rows:                int(msg.Get(snapshotField(fieldRows)).Uint()),
		Cols:                int(msg.Get(snapshotField(fieldCols)).Uint()),
		Agent:               getPosition(msg, fieldAgent),
		Destination:         getPosition(msg, fieldDestination),
		MutationProbability: msg.Get(snapshotField(fieldProbability)).Float(),
		Strategy:            maze.Strategy(msg.Get(snapshotField(fieldStrategy)).String()),
	}

	if raw := msg.Get(snapshotField(fieldID)).Bytes(); len(raw) > 0 {
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return game.Snapshot{}, malformed(err)
		}
		s.ID = id
	}

	walls := uint32s(msg, fieldWalls)
	s.Walls = make([]uint8, len(walls))
	for i, w := range walls {
		if w > math.MaxUint8 {
			return game.Snapshot{}, malformed(fmt.Errorf("wall mask %d out of range", w))
		}
		s.Walls[i] = uint8(w)
	}

	var err error
	if s.Path, err = toPositions(uint32s(msg, fieldPath)); err != nil {
		return game.Snapshot{}, malformed(err)
	}
	if coords := uint32s(msg, fieldLastSwap); len(coords) > 0 {
		if s.LastSwap, err = toSwap(coords); err != nil {
			return game.Snapshot{}, malformed(err)
		}
	}

	if err := checkShape(s); err != nil {
		return game.Snapshot{}, err
	}
	return s, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
}

func setPosition(msg *dynamicpb.Message, num protowire.Number, pos maze.CellPosition) {
	fd := snapshotField(num)
	inner := msg.Mutable(fd).Message()
	fields := fd.Message().Fields()
	inner.Set(fields.ByNumber(fieldRow), protoreflect.ValueOfUint32(uint32(pos.Row)))
	inner.Set(fields.ByNumber(fieldCol), protoreflect.ValueOfUint32(uint32(pos.Col)))
}

func getPosition(msg *dynamicpb.Message, num protowire.Number) maze.CellPosition {
	fd := snapshotField(num)
	inner := msg.Get(fd).Message()
	fields := fd.Message().Fields()
	return maze.CellPosition{
		Row: int(inner.Get(fields.ByNumber(fieldRow)).Uint()),
		Col: int(inner.Get(fields.ByNumber(fieldCol)).Uint()),
	}
}

// appendPositions flattens positions into row, col pairs.
func appendPositions(msg *dynamicpb.Message, num protowire.Number, positions ...maze.CellPosition) {
	list := msg.Mutable(snapshotField(num)).List()
	for _, pos := range positions {
		list.Append(protoreflect.ValueOfUint32(uint32(pos.Row)))
		list.Append(protoreflect.ValueOfUint32(uint32(pos.Col)))
	}
}

func uint32s(msg *dynamicpb.Message, num protowire.Number) []uint32 {
	list := msg.Get(snapshotField(num)).List()
	values := make([]uint32, list.Len())
	for i := range values {
		values[i] = uint32(list.Get(i).Uint())
	}
	return values
}

func toPositions(values []uint32) ([]maze.CellPosition, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("odd number of coordinates (%d)", len(values))
	}
	positions := make([]maze.CellPosition, 0, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		positions = append(positions, maze.CellPosition{Row: int(values[i]), Col: int(values[i+1])})
	}
	return positions, nil
}

func toSwap(values []uint32) (*maze.Swap, error) {
	positions, err := toPositions(values)
	if err != nil {
		return nil, err
	}
	if len(positions) != 4 {
		return nil, fmt.Errorf("swap has %d cells, want 4", len(positions))
	}
	return &maze.Swap{
		Closed: maze.Edge{A: positions[0], B: positions[1]},
		Opened: maze.Edge{A: positions[2], B: positions[3]},
	}, nil
}
