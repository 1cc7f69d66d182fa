package field

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/pulsefield/internal/config"
)

// PulseResult describes what a single Trigger did.
type PulseResult struct {
	Initiator ParticleID
	Links     int  // links scheduled
	Sparks    int  // sparks emitted
	Dropped   bool // no pulse fired (empty registry or unusable magnitude)
}

// ConnectionCount maps an event magnitude to the number of links a pulse
// schedules: min(floor(|m| / step), cap) + offset. It is non-decreasing in
// |m| and never below offset.
func ConnectionCount(magnitude float64, cfg config.PulseConfig) int {
	if math.IsNaN(magnitude) {
		return 0
	}
	steps := math.Floor(math.Abs(magnitude) / cfg.MagnitudeStep)
	if steps > float64(cfg.Cap) {
		steps = float64(cfg.Cap)
	}
	return int(steps) + cfg.Offset
}

// Dispatcher turns event magnitudes into lit particles, sparks and
// delayed links.
type Dispatcher struct {
	world *World
	sched *Scheduler
	rng   *rand.Rand
	cfg   config.Config
}

// NewDispatcher binds a dispatcher to a world and its link scheduler.
func NewDispatcher(w *World, sched *Scheduler, rng *rand.Rand, cfg config.Config) *Dispatcher {
	return &Dispatcher{world: w, sched: sched, rng: rng, cfg: cfg}
}

// Trigger fires one pulse. The initiator is lit immediately; each partner is
// lit, and its connection created, when the link comes due.
func (d *Dispatcher) Trigger(magnitude float64) PulseResult {
	w := d.world
	n := w.ParticleCount()
	if n == 0 || math.IsNaN(magnitude) {
		return PulseResult{Dropped: true}
	}

	initiatorPos := d.rng.Intn(n)
	initiator := w.ParticleAt(initiatorPos)
	res := PulseResult{Initiator: initiator}

	_, p, _ := w.Resolve(initiator)
	p.Light(d.cfg.Particle.LitDuration)

	if d.cfg.Sparks.Enabled && d.cfg.Sparks.Count > 0 {
		pos, _ := w.ScreenPosition(initiator)
		w.addSparks(pos, d.cfg.Sparks.Count)
		res.Sparks = d.cfg.Sparks.Count
	}

	if n < 2 {
		return res
	}

	count := ConnectionCount(magnitude, d.cfg.Pulse)
	for i := 0; i < count; i++ {
		// Uniform over every particle except the initiator.
		j := d.rng.Intn(n - 1)
		if j >= initiatorPos {
			j++
		}
		delay := 0.0
		if d.cfg.Pulse.MaxDelay > 0 {
			delay = d.rng.Float64() * d.cfg.Pulse.MaxDelay
		}
		d.sched.Schedule(PendingLink{
			Due:  w.now + delay,
			From: initiator,
			To:   w.ParticleAt(j),
		})
		res.Links++
	}
	return res
}

// complete runs one due link. It reports false when either endpoint has
// been retired since the link was scheduled.
func (d *Dispatcher) complete(link PendingLink) bool {
	w := d.world
	if !w.Alive(link.From) {
		return false
	}
	_, partner, ok := w.Resolve(link.To)
	if !ok {
		return false
	}
	partner.Light(d.cfg.Particle.LitDuration)
	w.addConnection(link.From, link.To)
	return true
}
