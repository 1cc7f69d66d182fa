package field

import "testing"

func TestConnectionOpacityDecreases(t *testing.T) {
	c := Connection{Lifetime: 600}
	prev := c.Opacity(0.8)
	if prev != 0.8 {
		t.Fatalf("opacity at age 0 = %v, expected 0.8", prev)
	}
	for c.Age < c.Lifetime {
		c.update(50)
		got := c.Opacity(0.8)
		if got >= prev {
			t.Fatalf("opacity did not decrease at age %v: %v -> %v", c.Age, prev, got)
		}
		prev = got
	}
	if prev > 0 {
		t.Errorf("opacity at age %v = %v, expected <= 0", c.Age, prev)
	}
}

func TestConnectionExpiry(t *testing.T) {
	c := Connection{Lifetime: 600}
	c.update(600)
	if c.Expired() {
		t.Fatal("connection at age == lifetime should survive one more tick")
	}
	c.update(1)
	if !c.Expired() {
		t.Fatal("connection past its lifetime should be expired")
	}
}

func TestConnectionRemovedOnTickAfterLifetime(t *testing.T) {
	cfg := testConfig()
	cfg.Render.TargetFPS = 100
	cfg.Pulse.MaxDelay = 0
	l, _ := newTestLoop(t, cfg, 2)

	l.Frame(0)
	l.Trigger(0)
	ts := runFrames(l, 0, 1, 10)
	if n := len(l.World().Connections()); n != 1 {
		t.Fatalf("connections = %d, expected 1", n)
	}

	// Created with age 0 and aged by this frame's delta.
	ts = runFrames(l, ts, 59, 10)
	if n := len(l.World().Connections()); n != 1 {
		t.Fatalf("connections = %d, expected 1 at age == lifetime", n)
	}
	if age := l.World().Connections()[0].Age; age != 600 {
		t.Fatalf("age = %v, expected 600", age)
	}
	runFrames(l, ts, 1, 10)
	if n := len(l.World().Connections()); n != 0 {
		t.Fatalf("connections = %d, expected 0 once age > lifetime", n)
	}
}

func TestConnectionWithRetiredEndpointNotDrawn(t *testing.T) {
	cfg := testConfig()
	cfg.Field.ClusterCount = 2
	cfg.Field.StaticLinks = false
	cfg.Render.TargetFPS = 100
	l, s := newTestLoop(t, cfg, 8)
	w := l.World()

	a := w.Clusters()[0].Particles[0].ID
	b := w.Clusters()[1].Particles[0].ID
	w.addConnection(a, b)

	l.Frame(0)
	if len(s.lines) != 1 {
		t.Fatalf("lines drawn = %d, expected 1", len(s.lines))
	}

	w.retire(1)
	l.Frame(10)
	if len(s.lines) != 0 {
		t.Errorf("lines drawn = %d, expected 0 with a retired endpoint", len(s.lines))
	}
	if len(w.Connections()) != 1 {
		t.Error("connection should live out its lifetime")
	}
}

func TestConnectionColor(t *testing.T) {
	cfg := testConfig()
	cfg.Field.ClusterCount = 1
	cfg.Field.ParticlesPerCluster = 2
	cfg.Field.StaticLinks = false
	cfg.Render.TargetFPS = 100
	l, s := newTestLoop(t, cfg, 8)
	w := l.World()
	pal := l.Palette()

	c := w.Clusters()[0]
	w.addConnection(c.Particles[0].ID, c.Particles[1].ID)

	l.Frame(0)
	if len(s.lines) != 1 {
		t.Fatalf("lines drawn = %d, expected 1", len(s.lines))
	}
	got := s.lines[0].c
	if got.R != pal.Link.R || got.A != cfg.Pulse.ConnectionOpacity*0.5 {
		t.Errorf("unlit endpoints color = %+v, expected link color at half opacity", got)
	}
	if len(s.lines[0].dash) != len(cfg.Pulse.Dash) {
		t.Errorf("dash = %v, expected %v", s.lines[0].dash, cfg.Pulse.Dash)
	}

	c.Particles[0].Light(1000)
	c.Particles[1].Light(1000)
	l.Frame(10)
	got = s.lines[0].c
	want := cfg.Pulse.ConnectionOpacity * (1 - 10/cfg.Pulse.ConnectionLifetime)
	if got.R != pal.Lit.R || got.G != pal.Lit.G || got.A != want {
		t.Errorf("lit endpoints color = %+v, expected lit color at %v", got, want)
	}
}
