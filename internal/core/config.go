package core

// RuntimeConfig contains the host parameters handed to a field at startup.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Host scheduler ticks per second (default 60)
	Seed     int64 // RNG seed; 0 means time-based
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// LogicalSize returns the logical pixel size covered by the screen.
func (c RuntimeConfig) LogicalSize() (width, height float64) {
	return float64(c.ScreenW * CellWidth), float64(c.ScreenH * CellHeight)
}
