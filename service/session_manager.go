package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-drift/encoder"
	"github.com/beka-birhanu/vinom-drift/game"
	"github.com/beka-birhanu/vinom-drift/service/i"
	"github.com/google/uuid"
)

const (
	defaultTickInterval = 100 * time.Millisecond
	publishTimeout      = time.Second
)

var ErrMissingSession = errors.New("session is required")

// SessionManager drives one game session and distributes its snapshots to
// in-process subscribers and to the optional publisher.
type SessionManager struct {
	session     *game.Session
	geometry    game.Geometry
	interval    time.Duration
	encoder     encoder.Encoder
	publisher   i.SnapshotPublisher
	logger      i.Logger
	subscribers map[uuid.UUID]chan game.Snapshot
	done        bool
	sync.RWMutex
}

type Config struct {
	Session   *game.Session
	Geometry  game.Geometry
	Interval  time.Duration
	Encoder   encoder.Encoder // encodes published snapshots, protobuf when nil
	Publisher i.SnapshotPublisher
	Logger    i.Logger
}

func NewSessionManager(c *Config) (*SessionManager, error) {
	if c.Session == nil {
		return nil, ErrMissingSession
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	sm := &SessionManager{
		session:     c.Session,
		geometry:    c.Geometry,
		interval:    c.Interval,
		encoder:     c.Encoder,
		publisher:   c.Publisher,
		logger:      c.Logger,
		subscribers: make(map[uuid.UUID]chan game.Snapshot),
	}
	if sm.interval <= 0 {
		sm.interval = defaultTickInterval
	}
	if sm.encoder == nil {
		sm.encoder = &encoder.Protobuf{}
	}
	return sm, nil
}

// Run ticks the session until ctx is done or Stop is called. When a
// publisher is set it is claimed first and released on return.
func (sm *SessionManager) Run(ctx context.Context) error {
	if sm.publisher != nil {
		if err := sm.publisher.Claim(ctx); err != nil {
			return fmt.Errorf("claiming snapshot channel: %w", err)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := sm.publisher.Release(releaseCtx); err != nil {
				sm.logger.Warning(fmt.Sprintf("releasing snapshot channel: %s", err))
			}
		}()
	}
	defer sm.closeSubscribers()

	runErr := make(chan error, 1)
	go func() { runErr <- sm.session.Run(ctx, sm.interval) }()
	sm.logger.Info(fmt.Sprintf("started session %s", sm.session.ID()))

	for snapshot := range sm.session.StateChan {
		sm.fanOut(snapshot)
		sm.publish(ctx, snapshot)
	}

	err := <-runErr
	sm.logger.Info(fmt.Sprintf("session %s ended", sm.session.ID()))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Stop ends the session loop.
func (sm *SessionManager) Stop() {
	sm.session.Stop()
}

// Subscribe returns a channel receiving every new snapshot and a function
// that unsubscribes. A slow subscriber only ever sees the latest snapshot.
func (sm *SessionManager) Subscribe() (<-chan game.Snapshot, func()) {
	sm.Lock()
	defer sm.Unlock()

	ch := make(chan game.Snapshot, 1)
	if sm.done {
		close(ch)
		return ch, func() {}
	}

	id := uuid.New()
	sm.subscribers[id] = ch
	sm.logger.Debug(fmt.Sprintf("subscriber %s joined", id))

	return ch, func() {
		sm.Lock()
		defer sm.Unlock()
		if sub, ok := sm.subscribers[id]; ok {
			delete(sm.subscribers, id)
			close(sub)
			sm.logger.Debug(fmt.Sprintf("subscriber %s left", id))
		}
	}
}

func (sm *SessionManager) fanOut(snapshot game.Snapshot) {
	sm.RLock()
	defer sm.RUnlock()
	for _, ch := range sm.subscribers {
		select {
		case ch <- snapshot:
			continue
		default:
		}
		// Drop the stale snapshot the subscriber has not read yet.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (sm *SessionManager) publish(ctx context.Context, snapshot game.Snapshot) {
	if sm.publisher == nil {
		return
	}
	payload, err := sm.encoder.MarshalSnapshot(snapshot)
	if err != nil {
		sm.logger.Error(fmt.Sprintf("encoding snapshot %d: %s", snapshot.Version, err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := sm.publisher.Publish(ctx, payload); err != nil {
		sm.logger.Warning(fmt.Sprintf("publishing snapshot %d: %s", snapshot.Version, err))
	}
}

func (sm *SessionManager) closeSubscribers() {
	sm.Lock()
	defer sm.Unlock()
	for id, ch := range sm.subscribers {
		close(ch)
		delete(sm.subscribers, id)
	}
	sm.done = true
}

// Snapshot returns the current session state.
func (sm *SessionManager) Snapshot() game.Snapshot {
	return sm.session.Snapshot()
}

// Submit queues an intent for the next tick.
func (sm *SessionManager) Submit(in game.Intent) error {
	if err := sm.session.Submit(in); err != nil {
		sm.logger.Debug(fmt.Sprintf("rejected %s intent: %s", in.Kind, err))
		return err
	}
	return nil
}

// SetMutationProbability changes the chance of a mutation per tick.
func (sm *SessionManager) SetMutationProbability(p float64) error {
	if err := sm.session.SetMutationProbability(p); err != nil {
		return err
	}
	sm.logger.Info(fmt.Sprintf("mutation probability set to %v", p))
	return nil
}

// Geometry returns the pixel to cell mapping of the renderer screen.
func (sm *SessionManager) Geometry() game.Geometry {
	return sm.geometry
}
