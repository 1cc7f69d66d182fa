package field

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

// ParticleID is a generational handle into the World's particle slots.
// A handle stays comparable after its particle is retired; resolving it
// then reports false instead of reaching a replacement particle.
type ParticleID struct {
	slot uint32
	gen  uint32
}

// Particle is a point owned by exactly one Cluster.
type Particle struct {
	ID       ParticleID
	Offset   core.Vec2 // fixed at construction
	LitFor   float64   // remaining lit time, 0 = unlit
	LitTotal float64   // duration of the current lit period
	Jitter   core.Vec2 // cosmetic, re-rolled every tick
}

// Lit reports whether the particle is currently highlighted.
func (p *Particle) Lit() bool {
	return p.LitFor > 0
}

// Light highlights the particle for duration ms, restarting any lit period.
func (p *Particle) Light(duration float64) {
	p.LitFor = duration
	p.LitTotal = duration
}

// Progress returns how far through the lit period the particle is, in [0, 1].
func (p *Particle) Progress() float64 {
	if p.LitTotal <= 0 || p.LitFor <= 0 {
		return 1
	}
	return core.ClampF(1-p.LitFor/p.LitTotal, 0, 1)
}

// Position is the drawn position, jitter included.
func (p *Particle) Position(origin core.Vec2) core.Vec2 {
	return origin.Add(p.Offset).Add(p.Jitter)
}

func (p *Particle) update(delta float64, rng *rand.Rand, jitter config.JitterConfig) {
	if p.LitFor > 0 {
		p.LitFor -= delta
		if p.LitFor <= 0 {
			p.LitFor = 0
		}
	}

	p.Jitter = core.Vec2{}
	if jitter.Enabled && rng.Float64() < jitter.Probability {
		p.Jitter = core.Vec2{
			X: (rng.Float64() - 0.5) * jitter.Amplitude,
			Y: (rng.Float64() - 0.5) * jitter.Amplitude,
		}
	}
}

// color resolves the fill for the current state at the given cluster opacity.
func (p *Particle) color(cfg config.Config, pal config.Palette, opacity float64) core.Color {
	base := cfg.Render.ParticleAlpha
	if !p.Lit() {
		return pal.Particle.WithAlpha(base * opacity)
	}
	alpha := 1.0
	if cfg.Particle.PulseCurve {
		alpha = math.Max(base, math.Sin(p.Progress()*math.Pi))
	}
	return pal.Lit.WithAlpha(alpha * opacity)
}

func (p *Particle) draw(s Surface, origin core.Vec2, c core.Color, size float64) {
	pos := p.Position(origin)
	s.FillRect(pos.X, pos.Y, size, size, c)
}
