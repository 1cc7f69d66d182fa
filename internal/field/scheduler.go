package field

import "sort"

// PendingLink is a connection waiting for its delay to elapse.
type PendingLink struct {
	Due  float64 // simulation time in ms
	From ParticleID
	To   ParticleID
}

// Scheduler is the list of delayed pulse links, ordered by due time.
// The frame loop drains it; nothing fires on its own.
type Scheduler struct {
	tasks []PendingLink
}

// Schedule queues a link. Links with equal due times keep insertion order.
func (s *Scheduler) Schedule(link PendingLink) {
	i := sort.Search(len(s.tasks), func(i int) bool {
		return s.tasks[i].Due > link.Due
	})
	s.tasks = append(s.tasks, PendingLink{})
	copy(s.tasks[i+1:], s.tasks[i:])
	s.tasks[i] = link
}

// Due removes and returns every link due at or before now, earliest first.
func (s *Scheduler) Due(now float64) []PendingLink {
	n := sort.Search(len(s.tasks), func(i int) bool {
		return s.tasks[i].Due > now
	})
	if n == 0 {
		return nil
	}
	due := make([]PendingLink, n)
	copy(due, s.tasks[:n])
	s.tasks = append(s.tasks[:0], s.tasks[n:]...)
	return due
}

// Len returns the number of pending links.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Clear drops every pending link.
func (s *Scheduler) Clear() {
	s.tasks = s.tasks[:0]
}
