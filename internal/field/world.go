// Package field implements the particle field: clusters of particles that
// drift and age, connections and sparks produced by pulses, and the frame
// loop that ticks and draws all of them.
//
// The package is single-threaded. Only Loop.Post may be called from other
// goroutines; everything else belongs to the goroutine driving Loop.Frame.
package field

import (
	"math/rand"

	"github.com/vovakirdan/pulsefield/internal/config"
	"github.com/vovakirdan/pulsefield/internal/core"
)

// slot is one entry of the particle handle table.
type slot struct {
	gen     uint32
	used    bool
	cluster int // index into World.clusters
	index   int // index into Cluster.Particles
	livePos int // index into World.live
}

// World owns every entity and the flat particle registry. Mutation goes
// through its methods only: cluster retirement, connection and spark
// creation, and expiry sweeps.
type World struct {
	cfg     config.Config
	palette config.Palette
	rng     *rand.Rand

	width, height float64
	now           float64

	clusters    []*Cluster
	slots       []slot
	free        []uint32
	live        []ParticleID
	connections []Connection
	sparks      []Spark
}

// NewWorld builds a world of cfg.Field.ClusterCount clusters inside the given bounds.
func NewWorld(cfg config.Config, pal config.Palette, rng *rand.Rand, width, height float64) *World {
	w := &World{
		cfg:     cfg,
		palette: pal,
		rng:     rng,
		width:   width,
		height:  height,
	}
	w.clusters = make([]*Cluster, cfg.Field.ClusterCount)
	for i := range w.clusters {
		w.spawn(i)
	}
	return w
}

// SetBounds changes the bounce area. Stored positions are left alone.
func (w *World) SetBounds(width, height float64) {
	w.width, w.height = width, height
}

// Now returns the simulation clock in ms.
func (w *World) Now() float64 {
	return w.now
}

// Clusters returns the cluster slots. The slice must not be modified.
func (w *World) Clusters() []*Cluster {
	return w.clusters
}

// Connections returns the live connections.
func (w *World) Connections() []Connection {
	return w.connections
}

// Sparks returns the live sparks.
func (w *World) Sparks() []Spark {
	return w.sparks
}

// ParticleCount returns the size of the particle registry.
func (w *World) ParticleCount() int {
	return len(w.live)
}

// ParticleAt returns the i-th handle of the registry.
func (w *World) ParticleAt(i int) ParticleID {
	return w.live[i]
}

// Alive reports whether id still refers to a registered particle.
func (w *World) Alive(id ParticleID) bool {
	if int(id.slot) >= len(w.slots) {
		return false
	}
	s := w.slots[id.slot]
	return s.used && s.gen == id.gen
}

// Resolve returns the particle for id and its owning cluster.
func (w *World) Resolve(id ParticleID) (*Cluster, *Particle, bool) {
	if !w.Alive(id) {
		return nil, nil, false
	}
	s := w.slots[id.slot]
	c := w.clusters[s.cluster]
	return c, &c.Particles[s.index], true
}

// ScreenPosition returns the drawn position of a live particle.
func (w *World) ScreenPosition(id ParticleID) (core.Vec2, bool) {
	c, p, ok := w.Resolve(id)
	if !ok {
		return core.Vec2{}, false
	}
	return p.Position(c.Pos), true
}

// spawn constructs a new cluster in slot i and registers its particles.
func (w *World) spawn(i int) {
	c := newCluster(w.cfg.Field, w.rng, w.width, w.height)
	w.clusters[i] = c
	for j := range c.Particles {
		c.Particles[j].ID = w.add(i, j)
	}
}

// retire unregisters every particle of cluster i and replaces the cluster.
// The registry shrinks and regrows by the same count within the call.
func (w *World) retire(i int) {
	for _, p := range w.clusters[i].Particles {
		w.remove(p.ID)
	}
	w.spawn(i)
}

func (w *World) add(cluster, index int) ParticleID {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, slot{gen: 1})
	}

	s := &w.slots[idx]
	s.used = true
	s.cluster = cluster
	s.index = index
	s.livePos = len(w.live)

	id := ParticleID{slot: idx, gen: s.gen}
	w.live = append(w.live, id)
	return id
}

// remove drops id from the registry. The slot generation moves on so any
// outstanding handle to it stops resolving.
func (w *World) remove(id ParticleID) bool {
	if !w.Alive(id) {
		return false
	}
	s := &w.slots[id.slot]
	pos := s.livePos
	last := len(w.live) - 1
	moved := w.live[last]
	w.live[pos] = moved
	w.slots[moved.slot].livePos = pos
	w.live = w.live[:last]

	s.used = false
	s.gen++
	w.free = append(w.free, id.slot)
	return true
}

// addConnection appends a connection between two handles.
func (w *World) addConnection(from, to ParticleID) {
	w.connections = append(w.connections, Connection{
		From:     from,
		To:       to,
		Lifetime: w.cfg.Pulse.ConnectionLifetime,
	})
}

// addSparks emits a burst at pos.
func (w *World) addSparks(pos core.Vec2, n int) {
	for i := 0; i < n; i++ {
		w.sparks = append(w.sparks, newSpark(pos, w.cfg.Sparks, w.rng))
	}
}

// updateClusters ticks, retires and draws every cluster. It returns how
// many clusters were replaced.
func (w *World) updateClusters(delta float64, s Surface) int {
	retired := 0
	for i, c := range w.clusters {
		c.update(delta, w.width, w.height, w.rng, w.cfg.Particle.Jitter)
		if c.Expired() {
			w.retire(i)
			retired++
		}
		w.clusters[i].draw(s, w.cfg, w.palette)
	}
	return retired
}

// updateConnections ticks connections, discards expired ones and draws the rest.
// A connection whose endpoint has been retired is kept but not drawn.
func (w *World) updateConnections(delta float64, s Surface) {
	kept := w.connections[:0]
	for _, conn := range w.connections {
		conn.update(delta)
		if conn.Expired() {
			continue
		}
		kept = append(kept, conn)
		w.drawConnection(&conn, s)
	}
	clear(w.connections[len(kept):])
	w.connections = kept
}

func (w *World) drawConnection(conn *Connection, s Surface) {
	_, a, okA := w.Resolve(conn.From)
	_, b, okB := w.Resolve(conn.To)
	if !okA || !okB {
		return
	}
	opacity := conn.Opacity(w.cfg.Pulse.ConnectionOpacity)
	if opacity <= 0 {
		return
	}
	col := w.palette.Link.WithAlpha(opacity * 0.5)
	if a.Lit() && b.Lit() {
		col = w.palette.Lit.WithAlpha(opacity)
	}
	pa, _ := w.ScreenPosition(conn.From)
	pb, _ := w.ScreenPosition(conn.To)
	s.StrokeLine(pa.X, pa.Y, pb.X, pb.Y, col, 1, w.cfg.Pulse.Dash)
}

// updateSparks ticks sparks, discards expired ones and draws the rest.
func (w *World) updateSparks(delta float64, s Surface) {
	kept := w.sparks[:0]
	for _, sp := range w.sparks {
		sp.update(delta)
		if sp.Expired() {
			continue
		}
		kept = append(kept, sp)
		sp.draw(s, w.palette.Spark)
	}
	clear(w.sparks[len(kept):])
	w.sparks = kept
}
