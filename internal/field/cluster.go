package field

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

// Cluster is a drifting group of particles sharing one origin and a finite
// lifetime. Its particle set never changes; an expired cluster is replaced.
type Cluster struct {
	Pos       core.Vec2
	Vel       core.Vec2 // logical px per second
	Age       float64
	Lifetime  float64
	Particles []Particle
	links     [][2]int
}

// newCluster builds a cluster inside the given bounds. Particle handles are
// assigned by the World when it registers the cluster.
func newCluster(cfg config.FieldConfig, rng *rand.Rand, width, height float64) *Cluster {
	c := &Cluster{
		Pos: core.Vec2{X: rng.Float64() * width, Y: rng.Float64() * height},
		Vel: core.Vec2{
			X: (rng.Float64()*2 - 1) * cfg.ClusterSpeed,
			Y: (rng.Float64()*2 - 1) * cfg.ClusterSpeed,
		},
		Lifetime:  cfg.LifetimeMin + rng.Float64()*(cfg.LifetimeMax-cfg.LifetimeMin),
		Particles: make([]Particle, cfg.ParticlesPerCluster),
	}
	for i := range c.Particles {
		c.Particles[i].Offset = core.Vec2{
			X: (rng.Float64()*2 - 1) * cfg.OffsetRange,
			Y: (rng.Float64()*2 - 1) * cfg.OffsetRange,
		}
	}
	if cfg.StaticLinks {
		c.links = ringLinks(len(c.Particles))
	}
	return c
}

// ringLinks joins every particle to its next and next-next neighbour in
// construction order, dropping self-pairs and duplicates for small rings.
func ringLinks(n int) [][2]int {
	seen := make(map[[2]int]bool)
	var links [][2]int
	for i := 0; i < n; i++ {
		for _, step := range []int{1, 2} {
			j := (i + step) % n
			if j == i {
				continue
			}
			key := [2]int{min(i, j), max(i, j)}
			if seen[key] {
				continue
			}
			seen[key] = true
			links = append(links, [2]int{i, j})
		}
	}
	return links
}

// Links returns the static link index pairs.
func (c *Cluster) Links() [][2]int {
	return c.links
}

// Expired reports whether the cluster has outlived its lifetime.
func (c *Cluster) Expired() bool {
	return c.Age > c.Lifetime
}

// Opacity is the fade multiplier for the cluster's current age.
func (c *Cluster) Opacity(fadeIn, fadeOut float64) float64 {
	o := 1.0
	if fadeIn > 0 && c.Age < fadeIn {
		o = c.Age / fadeIn
	}
	if fadeOut > 0 {
		if remain := c.Lifetime - c.Age; remain < fadeOut {
			o = math.Min(o, remain/fadeOut)
		}
	}
	return core.ClampF(o, 0, 1)
}

// update ages and moves the cluster, bouncing off the bounds, and ticks its particles.
func (c *Cluster) update(delta float64, width, height float64, rng *rand.Rand, jitter config.JitterConfig) {
	c.Age += delta
	c.Pos = c.Pos.Add(c.Vel.Scale(delta / 1000))

	if c.Pos.X < 0 {
		c.Vel.X = math.Abs(c.Vel.X)
	} else if c.Pos.X > width {
		c.Vel.X = -math.Abs(c.Vel.X)
	}
	if c.Pos.Y < 0 {
		c.Vel.Y = math.Abs(c.Vel.Y)
	} else if c.Pos.Y > height {
		c.Vel.Y = -math.Abs(c.Vel.Y)
	}

	for i := range c.Particles {
		c.Particles[i].update(delta, rng, jitter)
	}
}

// draw paints the static links first, then the particles on top.
func (c *Cluster) draw(s Surface, cfg config.Config, pal config.Palette) {
	opacity := c.Opacity(cfg.Field.FadeIn, cfg.Field.FadeOut)
	if opacity <= 0 {
		return
	}

	linkColor := pal.Link.WithAlpha(cfg.Render.StaticLinkAlpha * opacity)
	for _, l := range c.links {
		a := c.Particles[l[0]].Position(c.Pos)
		b := c.Particles[l[1]].Position(c.Pos)
		s.StrokeLine(a.X, a.Y, b.X, b.Y, linkColor, 1, nil)
	}

	for i := range c.Particles {
		p := &c.Particles[i]
		p.draw(s, c.Pos, p.color(cfg, pal, opacity), cfg.Particle.Size)
	}
}
