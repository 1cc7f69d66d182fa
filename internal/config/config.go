// Package config provides YAML-based configuration loading and presets for
// the particle field.
package config

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/pulsefield/internal/core"
)

// Config contains every tunable of the field. Times are milliseconds,
// distances logical pixels, speeds logical pixels per second.
type Config struct {
	Field    FieldConfig    `yaml:"field"`
	Particle ParticleConfig `yaml:"particle"`
	Pulse    PulseConfig    `yaml:"pulse"`
	Sparks   SparkConfig    `yaml:"sparks"`
	Render   RenderConfig   `yaml:"render"`
}

// FieldConfig defines cluster population and motion.
type FieldConfig struct {
	ClusterCount        int     `yaml:"cluster_count"`
	ParticlesPerCluster int     `yaml:"particles_per_cluster"`
	OffsetRange         float64 `yaml:"offset_range"`  // particle offsets in [-range, range)
	ClusterSpeed        float64 `yaml:"cluster_speed"` // max speed per axis
	LifetimeMin         float64 `yaml:"lifetime_min"`
	LifetimeMax         float64 `yaml:"lifetime_max"`
	StaticLinks         bool    `yaml:"static_links"`
	FadeIn              float64 `yaml:"fade_in"`
	FadeOut             float64 `yaml:"fade_out"`
}

// ParticleConfig defines particle appearance and the lit state.
type ParticleConfig struct {
	Size        float64      `yaml:"size"`
	LitDuration float64      `yaml:"lit_duration"`
	PulseCurve  bool         `yaml:"pulse_curve"` // alpha follows sin(progress*pi) while lit
	Jitter      JitterConfig `yaml:"jitter"`
}

// JitterConfig defines the per-tick glitch offset.
type JitterConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Probability float64 `yaml:"probability"`
	Amplitude   float64 `yaml:"amplitude"` // full width; offsets are in [-a/2, a/2)
}

// PulseConfig defines how feed events become connections.
type PulseConfig struct {
	MagnitudeStep      float64   `yaml:"magnitude_step"`
	Cap                int       `yaml:"cap"`
	Offset             int       `yaml:"offset"`
	MaxDelay           float64   `yaml:"max_delay"`
	ConnectionLifetime float64   `yaml:"connection_lifetime"`
	ConnectionOpacity  float64   `yaml:"connection_opacity"`
	Dash               []float64 `yaml:"dash"`
}

// SparkConfig defines the burst emitted at a pulse origin.
type SparkConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Count       int     `yaml:"count"`
	Speed       float64 `yaml:"speed"` // max speed per axis
	LifetimeMin float64 `yaml:"lifetime_min"`
	LifetimeMax float64 `yaml:"lifetime_max"`
	SizeMin     float64 `yaml:"size_min"`
	SizeMax     float64 `yaml:"size_max"`
}

// RenderConfig defines frame pacing and the palette.
type RenderConfig struct {
	TargetFPS       float64 `yaml:"target_fps"`
	MaxFrameDelta   float64 `yaml:"max_frame_delta"` // 0 = unclamped
	Background      string  `yaml:"background"`
	Particle        string  `yaml:"particle"`
	ParticleAlpha   float64 `yaml:"particle_alpha"`
	Lit             string  `yaml:"lit"`
	Link            string  `yaml:"link"`
	StaticLinkAlpha float64 `yaml:"static_link_alpha"`
	Spark           string  `yaml:"spark"`
	HUD             string  `yaml:"hud"`
}

// Palette is the parsed form of the RenderConfig colors.
type Palette struct {
	Background core.Color
	Particle   core.Color
	Lit        core.Color
	Link       core.Color
	Spark      core.Color
	HUD        core.Color
}

// Palette parses the configured colors.
func (r RenderConfig) Palette() (Palette, error) {
	var p Palette
	fields := []struct {
		name string
		hex  string
		dst  *core.Color
	}{
		{"background", r.Background, &p.Background},
		{"particle", r.Particle, &p.Particle},
		{"lit", r.Lit, &p.Lit},
		{"link", r.Link, &p.Link},
		{"spark", r.Spark, &p.Spark},
		{"hud", r.HUD, &p.HUD},
	}
	for _, f := range fields {
		c, err := core.ParseHex(f.hex)
		if err != nil {
			return Palette{}, fmt.Errorf("config: render.%s: %w", f.name, err)
		}
		*f.dst = c
	}
	return p, nil
}

// FrameInterval returns the target frame interval in milliseconds.
func (r RenderConfig) FrameInterval() float64 {
	if r.TargetFPS <= 0 {
		return 0
	}
	return 1000 / r.TargetFPS
}

// Validate checks the configuration for values the field cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Field.ClusterCount >= 0, "field.cluster_count must be >= 0, got %d", c.Field.ClusterCount)
	check(c.Field.ParticlesPerCluster >= 0, "field.particles_per_cluster must be >= 0, got %d", c.Field.ParticlesPerCluster)
	check(c.Field.LifetimeMin > 0, "field.lifetime_min must be > 0, got %v", c.Field.LifetimeMin)
	check(c.Field.LifetimeMax >= c.Field.LifetimeMin, "field.lifetime_max must be >= lifetime_min")
	check(c.Field.OffsetRange >= 0, "field.offset_range must be >= 0")
	check(c.Field.FadeIn >= 0 && c.Field.FadeOut >= 0, "field.fade_in/fade_out must be >= 0")

	check(c.Particle.Size > 0, "particle.size must be > 0")
	check(c.Particle.LitDuration > 0, "particle.lit_duration must be > 0")
	check(c.Particle.Jitter.Probability >= 0 && c.Particle.Jitter.Probability <= 1,
		"particle.jitter.probability must be in [0, 1]")

	check(c.Pulse.MagnitudeStep > 0, "pulse.magnitude_step must be > 0")
	check(c.Pulse.Cap >= 0, "pulse.cap must be >= 0")
	check(c.Pulse.Offset >= 1, "pulse.offset must be >= 1")
	check(c.Pulse.MaxDelay >= 0, "pulse.max_delay must be >= 0")
	check(c.Pulse.ConnectionLifetime > 0, "pulse.connection_lifetime must be > 0")
	for _, d := range c.Pulse.Dash {
		check(d >= 0, "pulse.dash entries must be >= 0")
	}

	if c.Sparks.Enabled {
		check(c.Sparks.Count >= 0, "sparks.count must be >= 0")
		check(c.Sparks.LifetimeMin > 0, "sparks.lifetime_min must be > 0")
		check(c.Sparks.LifetimeMax >= c.Sparks.LifetimeMin, "sparks.lifetime_max must be >= lifetime_min")
		check(c.Sparks.SizeMax >= c.Sparks.SizeMin, "sparks.size_max must be >= size_min")
	}

	check(c.Render.TargetFPS > 0, "render.target_fps must be > 0")
	check(c.Render.MaxFrameDelta >= 0, "render.max_frame_delta must be >= 0")
	if _, err := c.Render.Palette(); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid configuration: %w", err)
	}
	return nil
}
