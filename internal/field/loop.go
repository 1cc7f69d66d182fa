package field

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/vovakirdan/pulsefield/internal/config"
)

// Frames arriving up to this fraction of the interval early are still accepted.
const frameTolerance = 0.1

// Stats are running counters for one Loop.
type Stats struct {
	Frames  int64 // accepted frames
	Skipped int64 // host ticks rejected by the throttle
	Events  int64 // events posted
	Dropped int64 // events that fired no pulse
	Pulses  int64

	LinksScheduled int64
	LinksCreated   int64
	LinksStale     int64 // due links whose endpoint had been retired
	Retired        int64 // clusters replaced

	MaxMagnitude float64

	Clusters    int
	Particles   int
	Connections int
	Sparks      int
	Pending     int

	Now       float64 // simulation clock, ms
	LastDelta float64
}

// Loop is the frame loop. The host calls Frame on every scheduler tick;
// Frame throttles to the configured target interval and, on accepted
// frames, runs one full simulation step and paints the surface.
type Loop struct {
	cfg        config.Config
	palette    config.Palette
	surface    Surface
	rng        *rand.Rand
	world      *World
	sched      *Scheduler
	dispatcher *Dispatcher
	interval   float64

	started      bool
	lastAccepted float64
	stats        Stats

	mu      sync.Mutex
	inbox   []float64
	paused  bool
	events  int64
	dropped int64
}

// New creates a loop and populates the field to fill the surface.
func New(cfg config.Config, surface Surface, seed int64) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pal, err := cfg.Render.Palette()
	if err != nil {
		return nil, fmt.Errorf("field: %w", err)
	}

	l := &Loop{
		cfg:      cfg,
		palette:  pal,
		surface:  surface,
		interval: cfg.Render.FrameInterval(),
	}
	l.Reset(seed)
	return l, nil
}

// Reset rebuilds the field from a new seed. Pending links, connections,
// sparks and queued events are discarded; counters are kept.
func (l *Loop) Reset(seed int64) {
	l.rng = rand.New(rand.NewSource(seed))
	w, h := l.surface.Size()
	l.world = NewWorld(l.cfg, l.palette, l.rng, w, h)
	l.sched = &Scheduler{}
	l.dispatcher = NewDispatcher(l.world, l.sched, l.rng, l.cfg)
	l.started = false

	l.mu.Lock()
	l.inbox = l.inbox[:0]
	l.mu.Unlock()
}

// World exposes the entity registries for inspection.
func (l *Loop) World() *World {
	return l.world
}

// Scheduler exposes the pending link list for inspection.
func (l *Loop) Scheduler() *Scheduler {
	return l.sched
}

// Config returns the configuration the loop runs with.
func (l *Loop) Config() config.Config {
	return l.cfg
}

// Palette returns the parsed colors.
func (l *Loop) Palette() config.Palette {
	return l.palette
}

// Post queues an event magnitude for the next accepted frame.
// Safe for concurrent use. Events posted while paused are dropped.
func (l *Loop) Post(magnitude float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events++
	if l.paused {
		l.dropped++
		return
	}
	l.inbox = append(l.inbox, magnitude)
}

// SetPaused freezes or resumes the field. Resuming restarts the frame
// clock so the pause is not replayed as one long delta.
func (l *Loop) SetPaused(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused && !paused {
		l.started = false
	}
	l.paused = paused
}

// Paused reports whether the field is frozen.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Resize changes the surface and the bounce area. Entity positions are untouched.
func (l *Loop) Resize(width, height float64) {
	l.surface.Resize(width, height)
	l.world.SetBounds(width, height)
}

// Trigger fires a pulse immediately, bypassing the inbox.
func (l *Loop) Trigger(magnitude float64) PulseResult {
	res := l.dispatcher.Trigger(magnitude)
	l.record(magnitude, res)
	return res
}

// Frame is the host callback. ts is the host timestamp in ms. It returns
// false when the frame was throttled (or the loop is paused) and no work was done.
func (l *Loop) Frame(ts float64) bool {
	if l.Paused() {
		return false
	}

	var delta float64
	if l.started {
		elapsed := ts - l.lastAccepted
		if elapsed < l.interval*(1-frameTolerance) {
			l.stats.Skipped++
			return false
		}
		delta = elapsed
		if limit := l.cfg.Render.MaxFrameDelta; limit > 0 && delta > limit {
			delta = limit
		}
	}
	l.started = true
	l.lastAccepted = ts

	l.step(delta)
	return true
}

// step runs one accepted frame.
func (l *Loop) step(delta float64) {
	w := l.world
	w.now += delta
	l.stats.Frames++
	l.stats.LastDelta = delta

	l.surface.Clear(l.palette.Background)

	// Clusters are retired before any pulse, link or connection reads a
	// handle. Pulses fired after the tick keep their whole lit period.
	l.stats.Retired += int64(w.updateClusters(delta, l.surface))

	l.mu.Lock()
	inbox := l.inbox
	l.inbox = nil
	l.mu.Unlock()
	for _, m := range inbox {
		l.Trigger(m)
	}

	for _, link := range l.sched.Due(w.now) {
		if l.dispatcher.complete(link) {
			l.stats.LinksCreated++
		} else {
			l.stats.LinksStale++
		}
	}

	w.updateConnections(delta, l.surface)
	w.updateSparks(delta, l.surface)
}

func (l *Loop) record(magnitude float64, res PulseResult) {
	if res.Dropped {
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
		return
	}
	l.stats.Pulses++
	l.stats.LinksScheduled += int64(res.Links)
	if m := math.Abs(magnitude); m > l.stats.MaxMagnitude {
		l.stats.MaxMagnitude = m
	}
}

// Stats returns a snapshot of the counters and entity totals.
func (l *Loop) Stats() Stats {
	s := l.stats
	l.mu.Lock()
	s.Events = l.events
	s.Dropped = l.dropped
	l.mu.Unlock()

	w := l.world
	s.Clusters = len(w.clusters)
	s.Particles = len(w.live)
	s.Connections = len(w.connections)
	s.Sparks = len(w.sparks)
	s.Pending = l.sched.Len()
	s.Now = w.now
	return s
}
