package field

import "testing"

func TestSchedulerOrdersByDue(t *testing.T) {
	var s Scheduler
	ids := []ParticleID{{slot: 0, gen: 1}, {slot: 1, gen: 1}, {slot: 2, gen: 1}, {slot: 3, gen: 1}}
	s.Schedule(PendingLink{Due: 30, To: ids[0]})
	s.Schedule(PendingLink{Due: 10, To: ids[1]})
	s.Schedule(PendingLink{Due: 20, To: ids[2]})
	s.Schedule(PendingLink{Due: 10, To: ids[3]})

	if s.Len() != 4 {
		t.Fatalf("Len() = %d, expected 4", s.Len())
	}

	due := s.Due(20)
	if len(due) != 3 {
		t.Fatalf("Due(20) returned %d links, expected 3", len(due))
	}
	want := []ParticleID{ids[1], ids[3], ids[2]}
	for i, link := range due {
		if link.To != want[i] {
			t.Errorf("due[%d] = %v, expected %v", i, link.To, want[i])
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", s.Len())
	}
}

func TestSchedulerNothingDue(t *testing.T) {
	var s Scheduler
	if due := s.Due(100); due != nil {
		t.Errorf("empty scheduler returned %v", due)
	}
	if s.Len() != 0 {
		t.Errorf("empty scheduler has %d links", s.Len())
	}

	s.Schedule(PendingLink{Due: 50})
	if due := s.Due(49.9); len(due) != 0 {
		t.Errorf("link fired %v early", due)
	}
	if due := s.Due(50); len(due) != 1 {
		t.Errorf("link due exactly at now should fire, got %d", len(due))
	}
}

func TestSchedulerClear(t *testing.T) {
	var s Scheduler
	for i := 0; i < 5; i++ {
		s.Schedule(PendingLink{Due: float64(i)})
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() = %d after Clear, expected 0", s.Len())
	}
}
