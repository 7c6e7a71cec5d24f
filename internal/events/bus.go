package events

import (
	"sync"

	"github.com/google/uuid"
)

// Handler receives broadcast events.
type Handler func(Event)

type subscriber struct {
	id string
	fn Handler
}

// Bus is an injectable synchronous publish/subscribe channel.
//
// Publish delivers to subscribers in registration order, within the same call
// (no queuing, no goroutines). Handlers run on the publishing goroutine.
type Bus struct {
	mu   sync.Mutex
	subs []subscriber
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn for all future broadcasts and returns an unsubscribe func.
// Unsubscribing twice is a no-op.
func (b *Bus) Subscribe(fn Handler) func() {
	id := uuid.New().String()

	b.mu.Lock()
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev synchronously to every subscriber in registration order.
//
// The subscriber list is snapshotted under the lock but handlers run outside
// it, so a handler may itself subscribe or publish without deadlocking.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	snapshot := make([]subscriber, len(b.subs))
	copy(snapshot, b.subs)
	b.mu.Unlock()

	for _, s := range snapshot {
		s.fn(ev)
	}
}
