package field

import (
	"sync"
	"testing"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Pulse.MagnitudeStep = 0
	if _, err := New(cfg, newRecordingSurface(100, 100), 1); err == nil {
		t.Fatal("expected error for zero magnitude step")
	}
}

func TestNewPopulatesField(t *testing.T) {
	cfg := testConfig()
	l, _ := newTestLoop(t, cfg, 1)
	s := l.Stats()
	if s.Clusters != cfg.Field.ClusterCount {
		t.Errorf("clusters = %d, expected %d", s.Clusters, cfg.Field.ClusterCount)
	}
	if s.Particles != cfg.Field.ClusterCount*cfg.Field.ParticlesPerCluster {
		t.Errorf("particles = %d, expected %d", s.Particles, cfg.Field.ClusterCount*cfg.Field.ParticlesPerCluster)
	}
	for _, c := range l.World().Clusters() {
		if c.Pos.X < 0 || c.Pos.X >= 640 || c.Pos.Y < 0 || c.Pos.Y >= 384 {
			t.Errorf("cluster spawned outside the surface at %v", c.Pos)
		}
	}
}

func TestFrameThrottle(t *testing.T) {
	cfg := testConfig()
	cfg.Render.TargetFPS = 100
	l, s := newTestLoop(t, cfg, 1)

	if !l.Frame(0) {
		t.Fatal("first frame should be accepted")
	}
	if l.Stats().LastDelta != 0 {
		t.Errorf("first delta = %v, expected 0", l.Stats().LastDelta)
	}
	if l.Frame(5) {
		t.Error("frame 5ms after the last should be throttled")
	}
	if !l.Frame(9.5) {
		t.Error("frame within the tolerance should be accepted")
	}
	if l.Frame(12) {
		t.Error("frame 2.5ms after the last should be throttled")
	}
	if !l.Frame(30) {
		t.Error("late frame should be accepted")
	}

	st := l.Stats()
	if st.Frames != 3 || st.Skipped != 2 {
		t.Errorf("frames=%d skipped=%d, expected 3 and 2", st.Frames, st.Skipped)
	}
	if st.LastDelta != 20.5 {
		t.Errorf("last delta = %v, expected 20.5", st.LastDelta)
	}
	if st.Now != 30 {
		t.Errorf("clock = %v, expected 30", st.Now)
	}
	if s.clears != 3 {
		t.Errorf("surface cleared %d times, expected only on the 3 accepted frames", s.clears)
	}
}

func TestFrameDeltaClamped(t *testing.T) {
	cfg := testConfig()
	cfg.Render.MaxFrameDelta = 50
	l, _ := newTestLoop(t, cfg, 1)

	l.Frame(0)
	l.Frame(5000)
	if got := l.Stats().LastDelta; got != 50 {
		t.Errorf("delta = %v, expected clamp to 50", got)
	}
}

func TestPostDrainedOnNextFrame(t *testing.T) {
	cfg := testConfig()
	l, _ := newTestLoop(t, cfg, 1)

	l.Post(10)
	l.Post(200)
	if l.Stats().Pulses != 0 {
		t.Fatal("posted events must wait for a frame")
	}
	l.Frame(0)

	st := l.Stats()
	if st.Events != 2 || st.Pulses != 2 {
		t.Errorf("events=%d pulses=%d, expected 2 and 2", st.Events, st.Pulses)
	}
	if st.MaxMagnitude != 200 {
		t.Errorf("max magnitude = %v, expected 200", st.MaxMagnitude)
	}
	want := int64(ConnectionCount(10, cfg.Pulse) + ConnectionCount(200, cfg.Pulse))
	if st.LinksScheduled != want {
		t.Errorf("links scheduled = %d, expected %d", st.LinksScheduled, want)
	}

	l.Frame(10)
	if l.Stats().Pulses != 2 {
		t.Error("inbox should be empty after being drained")
	}
}

func TestPostedPulseKeepsFullLitPeriod(t *testing.T) {
	cfg := testConfig()
	cfg.Pulse.MaxDelay = 0
	l, _ := newTestLoop(t, cfg, 3)

	l.Frame(0)
	l.Post(300)
	l.Frame(16)

	lit := 0
	for _, c := range l.World().Clusters() {
		for i := range c.Particles {
			p := &c.Particles[i]
			if !p.Lit() {
				continue
			}
			lit++
			if p.LitFor != cfg.Particle.LitDuration {
				t.Errorf("particle %v lit for %v, expected %v", p.ID, p.LitFor, cfg.Particle.LitDuration)
			}
		}
	}
	if lit == 0 {
		t.Fatal("posted pulse lit nothing")
	}
}

func TestPostConcurrent(t *testing.T) {
	l, _ := newTestLoop(t, testConfig(), 1)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Post(float64(i))
			}
		}()
	}
	wg.Wait()
	l.Frame(0)

	if st := l.Stats(); st.Events != 400 || st.Pulses != 400 {
		t.Errorf("events=%d pulses=%d, expected 400", st.Events, st.Pulses)
	}
}

func TestPauseDropsEventsAndFreezes(t *testing.T) {
	cfg := testConfig()
	cfg.Render.TargetFPS = 100
	l, _ := newTestLoop(t, cfg, 1)

	l.Frame(0)
	l.SetPaused(true)
	l.Post(100)
	if l.Frame(100) {
		t.Error("paused loop should not accept frames")
	}
	st := l.Stats()
	if st.Dropped != 1 || st.Events != 1 {
		t.Errorf("events=%d dropped=%d, expected 1 and 1", st.Events, st.Dropped)
	}

	l.SetPaused(false)
	if !l.Frame(5000) {
		t.Fatal("resumed loop should accept the next frame")
	}
	st = l.Stats()
	if st.LastDelta != 0 {
		t.Errorf("delta after resume = %v, expected 0", st.LastDelta)
	}
	if st.Pulses != 0 {
		t.Error("event posted during pause must not fire")
	}
}

func TestResizeKeepsPositions(t *testing.T) {
	cfg := testConfig()
	canvas := core.NewCanvas(core.NewScreen(80, 24))
	l, err := New(cfg, canvas, 5)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	before := make([]core.Vec2, 0)
	for _, c := range l.World().Clusters() {
		before = append(before, c.Pos)
	}

	l.Resize(100, 40)
	if w, h := canvas.Size(); w != 100 || h != 40 {
		t.Errorf("canvas size = %vx%v, expected 100x40", w, h)
	}
	if w, h := l.World().width, l.World().height; w != 100 || h != 40 {
		t.Errorf("bounds = %vx%v, expected 100x40", w, h)
	}
	if canvas.Screen().Width() != 13 || canvas.Screen().Height() != 3 {
		t.Errorf("screen = %dx%d, expected 13x3", canvas.Screen().Width(), canvas.Screen().Height())
	}
	for i, c := range l.World().Clusters() {
		if c.Pos != before[i] {
			t.Errorf("cluster %d moved on resize: %v -> %v", i, before[i], c.Pos)
		}
	}

	// Clusters left outside the new bounds head back in.
	l.Frame(0)
	l.Frame(1)
	for _, c := range l.World().Clusters() {
		if c.Pos.X > 100 && c.Vel.X > 0 {
			t.Errorf("cluster at x=%v still moving outward", c.Pos.X)
		}
		if c.Pos.Y > 40 && c.Vel.Y > 0 {
			t.Errorf("cluster at y=%v still moving outward", c.Pos.Y)
		}
	}
}

func TestResetRebuildsField(t *testing.T) {
	cfg := testConfig()
	l, _ := newTestLoop(t, cfg, 21)
	first := l.World().Clusters()[0].Pos

	l.Frame(0)
	l.Trigger(1000)
	l.Post(5)
	l.Reset(21)

	if l.Scheduler().Len() != 0 {
		t.Error("pending links should be discarded")
	}
	if len(l.World().Sparks()) != 0 || len(l.World().Connections()) != 0 {
		t.Error("sparks and connections should be discarded")
	}
	if got := l.World().Clusters()[0].Pos; got != first {
		t.Errorf("same seed should rebuild the same field: %v vs %v", got, first)
	}
	l.Frame(1000)
	if l.Stats().Pulses != 1 {
		t.Error("queued events should be discarded by Reset")
	}
	if l.Stats().LastDelta != 0 {
		t.Error("reset should restart the frame clock")
	}
}

func TestLoopPaintsBackgroundOnCanvas(t *testing.T) {
	cfg := testConfig()
	cfg.Field.ClusterCount = 0
	canvas := core.NewCanvas(core.NewScreen(4, 2))
	l, err := New(cfg, canvas, 1)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	canvas.Screen().BlendPixel(0, 0, core.Black)
	l.Frame(0)

	bg := l.Palette().Background
	if got := canvas.Screen().Pixel(0, 0); got.Hex() != bg.Hex() {
		t.Errorf("pixel = %s, expected background %s", got.Hex(), bg.Hex())
	}
}

func TestNoirPresetRuns(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.Load("", config.PresetNoir)
	if err != nil {
		t.Fatalf("Load(noir) failed: %v", err)
	}
	l, _ := newTestLoop(t, cfg, 3)
	ts := 0.0
	l.Frame(ts)
	for i := 0; i < 100; i++ {
		if i%10 == 0 {
			l.Post(float64(i * 37))
		}
		ts += 34
		l.Frame(ts)
	}
	if l.Stats().Pulses != 10 {
		t.Errorf("pulses = %d, expected 10", l.Stats().Pulses)
	}
}
