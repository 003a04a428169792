// Package eventbus is a process-wide fan-out broadcast of domain events
// (balance changes, received/sent boosts, streaming-sats updates) to every
// currently-connected WebSocket client.
package eventbus

import "sync"

// Event is one broadcastable occurrence. Kind is the WebSocket message's
// top-level discriminator ("balance", "boost", "stream", "payment");
// Payload is marshaled to JSON as-is.
type Event struct {
	Kind    string
	Payload any
}

// Bus fans a single stream of Events out to any number of subscribers.
// Subscribers that fall behind have events dropped for them rather than
// blocking publishers, matching the teacher's at-least-attempt delivery
// semantics for broadcast-style notification.
type Bus struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// New returns a ready Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener and returns its event channel plus an
// unsubscribe function the caller must call when done listening.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsubscribe
}

// Publish broadcasts evt to every current subscriber. A subscriber whose
// buffer is full is skipped rather than blocking the publisher.
func (b *Bus) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
