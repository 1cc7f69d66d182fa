package field

// Connection is a transient edge between two particles created by a pulse.
// It lives for a fixed time regardless of what happens to its endpoints.
type Connection struct {
	From     ParticleID // initiator
	To       ParticleID // partner
	Age      float64
	Lifetime float64
}

func (c *Connection) update(delta float64) {
	c.Age += delta
}

// Expired reports whether the connection should be discarded.
func (c *Connection) Expired() bool {
	return c.Age > c.Lifetime
}

// Opacity falls linearly from peak to zero over the lifetime.
func (c *Connection) Opacity(peak float64) float64 {
	if c.Lifetime <= 0 {
		return 0
	}
	return peak * (1 - c.Age/c.Lifetime)
}
