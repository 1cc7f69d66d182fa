package field

import (
	"math/rand"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

// Spark is a short-lived drifting point emitted at a pulse origin.
type Spark struct {
	Pos      core.Vec2
	Vel      core.Vec2 // logical px per second
	Age      float64
	Lifetime float64
	Size     float64
}

func newSpark(at core.Vec2, cfg config.SparkConfig, rng *rand.Rand) Spark {
	return Spark{
		Pos: at,
		Vel: core.Vec2{
			X: (rng.Float64()*2 - 1) * cfg.Speed,
			Y: (rng.Float64()*2 - 1) * cfg.Speed,
		},
		Lifetime: cfg.LifetimeMin + rng.Float64()*(cfg.LifetimeMax-cfg.LifetimeMin),
		Size:     cfg.SizeMin + rng.Float64()*(cfg.SizeMax-cfg.SizeMin),
	}
}

func (s *Spark) update(delta float64) {
	s.Age += delta
	s.Pos = s.Pos.Add(s.Vel.Scale(delta / 1000))
}

// Expired reports whether the spark should be discarded.
func (s *Spark) Expired() bool {
	return s.Age > s.Lifetime
}

// Opacity fades linearly from 1 to 0 over the lifetime.
func (s *Spark) Opacity() float64 {
	if s.Lifetime <= 0 {
		return 0
	}
	return 1 - s.Age/s.Lifetime
}

func (s *Spark) draw(dst Surface, c core.Color) {
	dst.FillRect(s.Pos.X, s.Pos.Y, s.Size, s.Size, c.WithAlpha(s.Opacity()))
}
