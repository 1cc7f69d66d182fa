// Package synthetic generates edit-like events offline.
package synthetic

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/vovakirdan/pulsefield/internal/feed"
	"github.com/vovakirdan/pulsefield/internal/registry"
)

// DefaultRate is roughly the pace of the live recentchange stream.
const DefaultRate = 25.0

// Magnitudes are log-normal around a typical edit of a few dozen bytes.
const (
	logMean  = 3.5
	logSigma = 1.4
)

func init() {
	registry.Register("synthetic", "Random offline edits (--rate)", func(opts feed.Options) (feed.Source, error) {
		return New(opts)
	})
}

// Source emits events with exponential inter-arrival times.
type Source struct {
	rate float64
	rng  *rand.Rand
}

// New creates a generator. A zero rate selects DefaultRate.
func New(opts feed.Options) (*Source, error) {
	rate := opts.Rate
	if rate == 0 {
		rate = DefaultRate
	}
	if rate < 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
		return nil, errors.New("synthetic: rate must be a positive number")
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rate: rate, rng: rand.New(rand.NewSource(seed))}, nil
}

// Next returns the next event and the wait before it.
func (s *Source) Next() (feed.Event, time.Duration) {
	wait := time.Duration(s.rng.ExpFloat64() / s.rate * float64(time.Second))
	m := math.Round(math.Exp(s.rng.NormFloat64()*logSigma + logMean))
	if s.rng.Intn(3) == 0 {
		m = -m
	}
	return feed.Event{Magnitude: m, Wiki: "synthetic"}, wait
}

// Run implements feed.Source.
func (s *Source) Run(ctx context.Context, emit func(feed.Event)) error {
	for {
		ev, wait := s.Next()
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		emit(ev)
	}
}
