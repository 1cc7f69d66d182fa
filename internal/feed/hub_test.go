package feed

import (
	"context"
	"sync"
	"testing"
	"time"
)

type sliceSource struct {
	events []Event
}

func (s *sliceSource) Run(ctx context.Context, emit func(Event)) error {
	for _, ev := range s.events {
		emit(ev)
	}
	<-ctx.Done()
	return nil
}

func TestHubFanOut(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(8)
	b := h.Subscribe(8)
	if h.Count() != 2 {
		t.Fatalf("Count() = %d, expected 2", h.Count())
	}

	h.Publish(Event{Magnitude: 1})
	h.Publish(Event{Magnitude: 2})

	for _, s := range []*Subscription{a, b} {
		for want := 1.0; want <= 2; want++ {
			select {
			case ev := <-s.C():
				if ev.Magnitude != want {
					t.Errorf("got %v, expected %v", ev.Magnitude, want)
				}
			default:
				t.Fatal("expected a buffered event")
			}
		}
	}
	if h.Published() != 2 {
		t.Errorf("Published() = %d, expected 2", h.Published())
	}
}

func TestHubDropsOldestWhenFull(t *testing.T) {
	h := NewHub()
	s := h.Subscribe(2)
	for i := 1; i <= 5; i++ {
		h.Publish(Event{Magnitude: float64(i)})
	}
	if s.Dropped() != 3 {
		t.Errorf("Dropped() = %d, expected 3", s.Dropped())
	}
	first := <-s.C()
	second := <-s.C()
	if first.Magnitude != 4 || second.Magnitude != 5 {
		t.Errorf("kept %v, %v, expected the newest 4, 5", first.Magnitude, second.Magnitude)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	s := h.Subscribe(4)
	h.Unsubscribe(s)
	h.Unsubscribe(s)

	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed after Unsubscribe")
	}
	h.Publish(Event{Magnitude: 1})
	if len(s.C()) != 0 {
		t.Error("unsubscribed listener should not receive events")
	}
	if h.Count() != 0 {
		t.Errorf("Count() = %d, expected 0", h.Count())
	}
}

func TestHubRunAndPump(t *testing.T) {
	h := NewHub()
	sub := h.Subscribe(16)
	src := &sliceSource{events: []Event{{Magnitude: 10}, {Magnitude: -20}, {Magnitude: 30}}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, src) }()

	var mu sync.Mutex
	var got []float64
	pumped := make(chan struct{})
	go func() {
		Pump(context.Background(), sub, func(ev Event) {
			mu.Lock()
			got = append(got, ev.Magnitude)
			mu.Unlock()
		})
		close(pumped)
	}()

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 3 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("received %d events, expected 3", n)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() = %v, expected nil", err)
	}
	select {
	case <-pumped:
	case <-time.After(2 * time.Second):
		t.Fatal("Pump should stop once the hub shuts down")
	}
	if h.Count() != 0 {
		t.Error("Run should end every subscription on exit")
	}
}
