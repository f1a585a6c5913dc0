package i

import "context"

// SnapshotPublisher ships encoded snapshots to out-of-process renderers.
type SnapshotPublisher interface {
	// Claim takes exclusive ownership of the snapshot channel.
	Claim(ctx context.Context) error
	// Publish sends one encoded snapshot.
	Publish(ctx context.Context, payload []byte) error
	// Release gives ownership back.
	Release(ctx context.Context) error
}

// SnapshotSubscriber receives encoded snapshots published by another
// process.
type SnapshotSubscriber interface {
	Subscribe(ctx context.Context) (<-chan []byte, error)
}
