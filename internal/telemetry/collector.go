// Package telemetry aggregates frame loop counters into fixed windows and
// writes them out as CSV.
package telemetry

import "github.com/vovakirdan/pulsefield/internal/field"

// WindowStats is one telemetry row.
type WindowStats struct {
	WindowEnd float64 `csv:"window_end_ms"`
	Duration  float64 `csv:"-"`

	FPS     float64 `csv:"fps"`
	Frames  int64   `csv:"frames"`
	Skipped int64   `csv:"skipped"`

	Events       int64   `csv:"events"`
	Dropped      int64   `csv:"dropped"`
	Pulses       int64   `csv:"pulses"`
	LinksCreated int64   `csv:"links_created"`
	LinksStale   int64   `csv:"links_stale"`
	Retired      int64   `csv:"clusters_retired"`
	MaxMagnitude float64 `csv:"max_magnitude"`

	Particles   int `csv:"particles"`
	Connections int `csv:"connections"`
	Sparks      int `csv:"sparks"`
	Pending     int `csv:"pending_links"`
}

// Collector cuts a stream of Loop.Stats snapshots into windows of
// simulation time.
type Collector struct {
	window float64 // ms
	start  field.Stats
	primed bool
}

// NewCollector creates a collector. windowMs <= 0 selects one second.
func NewCollector(windowMs float64) *Collector {
	if windowMs <= 0 {
		windowMs = 1000
	}
	return &Collector{window: windowMs}
}

// Observe feeds the latest snapshot. It returns a finished window when at
// least one window of simulation time has passed since the previous one.
func (c *Collector) Observe(s field.Stats) (WindowStats, bool) {
	if !c.primed {
		c.start = s
		c.primed = true
		return WindowStats{}, false
	}
	// A reset loop restarts its clock; start a fresh window.
	if s.Now < c.start.Now {
		c.start = s
		return WindowStats{}, false
	}

	elapsed := s.Now - c.start.Now
	if elapsed < c.window {
		return WindowStats{}, false
	}

	w := WindowStats{
		WindowEnd:    s.Now,
		Duration:     elapsed,
		Frames:       s.Frames - c.start.Frames,
		Skipped:      s.Skipped - c.start.Skipped,
		Events:       s.Events - c.start.Events,
		Dropped:      s.Dropped - c.start.Dropped,
		Pulses:       s.Pulses - c.start.Pulses,
		LinksCreated: s.LinksCreated - c.start.LinksCreated,
		LinksStale:   s.LinksStale - c.start.LinksStale,
		Retired:      s.Retired - c.start.Retired,
		MaxMagnitude: s.MaxMagnitude,
		Particles:    s.Particles,
		Connections:  s.Connections,
		Sparks:       s.Sparks,
		Pending:      s.Pending,
	}
	w.FPS = float64(w.Frames) / (elapsed / 1000)
	c.start = s
	return w, true
}
