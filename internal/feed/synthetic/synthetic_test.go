package synthetic

import (
	"context"
	"testing"
	"time"

	"github.com/vovakirdan/pulsefield/internal/feed"
)

func TestNewRejectsBadRate(t *testing.T) {
	if _, err := New(feed.Options{Rate: -1}); err == nil {
		t.Error("expected error for negative rate")
	}
	s, err := New(feed.Options{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if s.rate != DefaultRate {
		t.Errorf("rate = %v, expected %v", s.rate, DefaultRate)
	}
}

func TestNextIsDeterministicPerSeed(t *testing.T) {
	a, _ := New(feed.Options{Seed: 5, Rate: 10})
	b, _ := New(feed.Options{Seed: 5, Rate: 10})
	for i := 0; i < 50; i++ {
		ea, wa := a.Next()
		eb, wb := b.Next()
		if ea != eb || wa != wb {
			t.Fatalf("step %d differs: %v/%v vs %v/%v", i, ea, wa, eb, wb)
		}
	}
}

func TestNextDistribution(t *testing.T) {
	s, _ := New(feed.Options{Seed: 9, Rate: 20})
	var neg, pos int
	var total time.Duration
	const n = 2000
	for i := 0; i < n; i++ {
		ev, wait := s.Next()
		if wait < 0 {
			t.Fatalf("negative wait %v", wait)
		}
		total += wait
		if ev.Magnitude < 0 {
			neg++
		} else {
			pos++
		}
	}
	if neg == 0 || pos == 0 {
		t.Errorf("expected both signs, got %d negative and %d positive", neg, pos)
	}
	// Mean wait should be near 1/rate = 50ms.
	mean := total / n
	if mean < 35*time.Millisecond || mean > 65*time.Millisecond {
		t.Errorf("mean wait = %v, expected about 50ms", mean)
	}
}

func TestRunEmitsUntilCancelled(t *testing.T) {
	s, _ := New(feed.Options{Seed: 1, Rate: 1000})
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	count := 0
	if err := s.Run(ctx, func(feed.Event) { count++ }); err != nil {
		t.Errorf("Run() = %v, expected nil", err)
	}
	if count == 0 {
		t.Error("expected events before the deadline")
	}
}
