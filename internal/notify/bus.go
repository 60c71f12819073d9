// Package notify carries event-change notifications between the mutation
// path and interested observers (cache invalidation, future websockets). The
// calendar engine itself never subscribes: it stays a pure function of its
// inputs, and hosts recompute views when a change arrives.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Action describes what happened to an event.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionReviewed Action = "reviewed"
)

// Change is one event-store mutation.
type Change struct {
	EventID int64
	Action  Action
	At      time.Time
}

// Bus is an in-process broadcast channel for Change notifications.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Change
	nextID int
	logger *zap.Logger
}

// NewBus constructs a notification bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{subs: make(map[int]chan Change), logger: logger}
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The channel is buffered; slow consumers lose notifications
// rather than blocking publishers.
func (b *Bus) Subscribe() (<-chan Change, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan Change, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the change to every subscriber without blocking.
func (b *Bus) Publish(change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.subs {
		select {
		case sub <- change:
		default:
			b.logger.Sugar().Warnw("dropping change notification", "subscriber", id, "event_id", change.EventID, "action", change.Action)
		}
	}
}
