package config

import (
	_ "embed"
)

//go:embed defaults/classic.yaml
var defaultClassicYAML []byte

//go:embed defaults/noir.yaml
var defaultNoirYAML []byte

// Preset names a built-in configuration.
type Preset string

const (
	PresetClassic Preset = "classic"
	PresetNoir    Preset = "noir"
)

// PresetInfo describes a built-in preset for listings.
type PresetInfo struct {
	Name        Preset
	Description string
}

// Presets lists the built-in presets in display order.
func Presets() []PresetInfo {
	return []PresetInfo{
		{PresetClassic, "white paper, charcoal clusters, red pulses, glitch and sparks (cap 5, +1)"},
		{PresetNoir, "dark field, fading clusters, smooth pulse curve, no sparks (cap 10, +2)"},
	}
}

// IsPreset reports whether name is a built-in preset.
func IsPreset(name string) bool {
	return GetPresetYAML(Preset(name)) != nil
}

// GetPresetYAML returns the embedded YAML for a preset, or nil if unknown.
func GetPresetYAML(p Preset) []byte {
	switch p {
	case PresetClassic, "":
		return defaultClassicYAML
	case PresetNoir:
		return defaultNoirYAML
	default:
		return nil
	}
}

// DefaultConfig returns the classic configuration without touching YAML.
func DefaultConfig() Config {
	return Config{
		Field: FieldConfig{
			ClusterCount:        25,
			ParticlesPerCluster: 20,
			OffsetRange:         75,
			ClusterSpeed:        9,
			LifetimeMin:         15000,
			LifetimeMax:         35000,
			StaticLinks:         true,
		},
		Particle: ParticleConfig{
			Size:        2,
			LitDuration: 600,
			Jitter: JitterConfig{
				Enabled:     true,
				Probability: 0.05,
				Amplitude:   4,
			},
		},
		Pulse: PulseConfig{
			MagnitudeStep:      50,
			Cap:                5,
			Offset:             1,
			MaxDelay:           300,
			ConnectionLifetime: 600,
			ConnectionOpacity:  0.8,
			Dash:               []float64{1, 3},
		},
		Sparks: SparkConfig{
			Enabled:     true,
			Count:       5,
			Speed:       90,
			LifetimeMin: 50,
			LifetimeMax: 150,
			SizeMin:     1,
			SizeMax:     3,
		},
		Render: RenderConfig{
			TargetFPS:       60,
			MaxFrameDelta:   250,
			Background:      "#ffffff",
			Particle:        "#333333",
			ParticleAlpha:   1,
			Lit:             "#fa0000",
			Link:            "#333333",
			StaticLinkAlpha: 0.1,
			Spark:           "#fa0000",
			HUD:             "#777777",
		},
	}
}
