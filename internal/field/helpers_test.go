package field

import (
	"testing"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

type rectCall struct {
	x, y, w, h float64
	c          core.Color
}

type lineCall struct {
	x1, y1, x2, y2 float64
	c              core.Color
	dash           []float64
}

// recordingSurface is a Surface that remembers what was drawn since the last Clear.
type recordingSurface struct {
	w, h   float64
	clears int
	rects  []rectCall
	lines  []lineCall
}

func newRecordingSurface(w, h float64) *recordingSurface {
	return &recordingSurface{w: w, h: h}
}

func (s *recordingSurface) Size() (float64, float64) { return s.w, s.h }

func (s *recordingSurface) Resize(w, h float64) { s.w, s.h = w, h }

func (s *recordingSurface) Clear(core.Color) {
	s.clears++
	s.rects = s.rects[:0]
	s.lines = s.lines[:0]
}

func (s *recordingSurface) FillRect(x, y, w, h float64, c core.Color) {
	s.rects = append(s.rects, rectCall{x, y, w, h, c})
}

func (s *recordingSurface) StrokeLine(x1, y1, x2, y2 float64, c core.Color, _ float64, dash []float64) {
	s.lines = append(s.lines, lineCall{x1, y1, x2, y2, c, dash})
}

// testConfig is the classic preset with long-lived clusters and a
// 1ms frame interval, so tests drive time explicitly.
func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Field.ClusterCount = 4
	cfg.Field.ParticlesPerCluster = 5
	cfg.Field.LifetimeMin = 1e9
	cfg.Field.LifetimeMax = 1e9
	cfg.Particle.Jitter.Enabled = false
	cfg.Render.TargetFPS = 1000
	cfg.Render.MaxFrameDelta = 0
	return cfg
}

func newTestLoop(t *testing.T, cfg config.Config, seed int64) (*Loop, *recordingSurface) {
	t.Helper()
	s := newRecordingSurface(640, 384)
	l, err := New(cfg, s, seed)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return l, s
}

// runFrames advances the loop by n accepted frames of step ms each,
// starting right after the last timestamp used.
func runFrames(l *Loop, from float64, n int, step float64) float64 {
	ts := from
	for i := 0; i < n; i++ {
		ts += step
		l.Frame(ts)
	}
	return ts
}

func countLit(w *World) int {
	n := 0
	for _, c := range w.Clusters() {
		for i := range c.Particles {
			if c.Particles[i].Lit() {
				n++
			}
		}
	}
	return n
}
