package broadcast

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	ownerKeySuffix  = ":owner"
	defaultOwnerTTL = 8 * time.Second
)

var (
	ErrEmptyChannel = errors.New("broadcast channel name must not be empty")
	ErrNotClaimed   = errors.New("broadcast channel is not claimed")
)

var (
	_ i.SnapshotPublisher  = &RedisBroadcaster{}
	_ i.SnapshotSubscriber = &RedisBroadcaster{}
)

// RedisBroadcaster publishes snapshots on a Redis pub/sub channel. A redsync
// mutex on "<channel>:owner" keeps a second simulation off the channel.
type RedisBroadcaster struct {
	client   *redis.Client
	locker   *redsync.Redsync
	channel  string
	ownerTTL time.Duration

	mu         sync.Mutex
	owner      *redsync.Mutex
	stopExtend chan struct{}
	extendDone chan struct{}
}

// NewRedisBroadcaster initializes a RedisBroadcaster on the given channel.
// A non-positive ownerTTL selects a default.
func NewRedisBroadcaster(client *redis.Client, channel string, ownerTTL time.Duration) (*RedisBroadcaster, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	if ownerTTL <= 0 {
		ownerTTL = defaultOwnerTTL
	}
	pool := goredis.NewPool(client)
	return &RedisBroadcaster{
		client:   client,
		locker:   redsync.New(pool),
		channel:  channel,
		ownerTTL: ownerTTL,
	}, nil
}

// Claim locks the channel owner key and keeps extending it until Release.
func (rb *RedisBroadcaster) Claim(ctx context.Context) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.owner != nil {
		return nil
	}

	mutex := rb.locker.NewMutex(rb.channel+ownerKeySuffix, redsync.WithExpiry(rb.ownerTTL), redsync.WithTries(1))
	if err := mutex.LockContext(ctx); err != nil {
		return err
	}

	rb.owner = mutex
	rb.stopExtend = make(chan struct{})
	rb.extendDone = make(chan struct{})
	go rb.keepOwnership(mutex, rb.stopExtend, rb.extendDone)
	return nil
}

func (rb *RedisBroadcaster) keepOwnership(mutex *redsync.Mutex, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(rb.ownerTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_, _ = mutex.Extend()
		}
	}
}

// Publish sends payload to every subscriber of the channel.
func (rb *RedisBroadcaster) Publish(ctx context.Context, payload []byte) error {
	rb.mu.Lock()
	claimed := rb.owner != nil
	rb.mu.Unlock()
	if !claimed {
		return ErrNotClaimed
	}
	return rb.client.Publish(ctx, rb.channel, payload).Err()
}

// Release stops extending the owner lock and unlocks it.
func (rb *RedisBroadcaster) Release(ctx context.Context) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.owner == nil {
		return nil
	}

	close(rb.stopExtend)
	<-rb.extendDone

	_, err := rb.owner.UnlockContext(ctx)
	rb.owner = nil
	return err
}

// Subscribe returns the payloads published on the channel until ctx is done.
func (rb *RedisBroadcaster) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := rb.client.Subscribe(ctx, rb.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		defer func() {
			_ = pubsub.Close()
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
