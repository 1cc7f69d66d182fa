package feed

import (
	"context"
	"sync"
	"sync/atomic"
)

// Subscription is one Hub listener. Events arrive on C; when the buffer
// is full the oldest queued event is dropped so Publish never blocks.
type Subscription struct {
	id       uint64
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
	dropped  atomic.Int64
}

// C returns the channel to receive events from.
func (s *Subscription) C() <-chan Event {
	return s.events
}

// Done returns a channel that closes when the subscription ends.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Dropped returns how many events were discarded for a full buffer.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription) send(ev Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- ev:
	default:
		// Buffer full, drop oldest and retry once.
		select {
		case <-s.events:
			s.dropped.Add(1)
		default:
		}
		select {
		case s.events <- ev:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Subscription) close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

// Hub fans one upstream source out to any number of subscribers.
// Safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64

	published atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a listener with the given buffer size.
func (h *Hub) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 64
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	s := &Subscription{
		id:     h.nextID,
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
	h.subs[s.id] = s
	return s
}

// Unsubscribe removes a listener and closes its Done channel.
// Safe to call multiple times.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s.id)
	h.mu.Unlock()
	s.close()
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.published.Add(1)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		s.send(ev)
	}
}

// Count returns the number of subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Published returns how many events went through the hub.
func (h *Hub) Published() int64 {
	return h.published.Load()
}

// Run drives src into the hub until ctx is cancelled, then ends every
// subscription.
func (h *Hub) Run(ctx context.Context, src Source) error {
	defer h.closeAll()
	return src.Run(ctx, h.Publish)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.subs {
		s.close()
		delete(h.subs, id)
	}
}

// Pump forwards every event from s to emit until the subscription ends
// or ctx is cancelled.
func Pump(ctx context.Context, s *Subscription, emit func(Event)) {
	for {
		select {
		case ev := <-s.C():
			emit(ev)
		case <-s.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}
