package queue

import (
	"sync"
	"time"

	"github.com/urbanride/dispatch/core/model"
)

// Set is the three-tier dispatch queue. All mutating operations and the
// cross-tier dispatch decision run under a single coordinating lock, so two
// concurrent Dispatch calls can never pop out of precedence order.
type Set struct {
	mu    sync.Mutex
	p0    *fifoQueue
	p1    *scoredQueue
	p2    *scoredQueue
	tiers map[string]model.Tier
}

// Snapshot is a point-in-time, read-only view of all three tiers, listed in
// dispatch order.
type Snapshot struct {
	P0     []model.QueueEntry `json:"P0"`
	P1     []model.QueueEntry `json:"P1"`
	P2     []model.QueueEntry `json:"P2"`
	Counts map[string]int     `json:"counts"`
	Taken  time.Time          `json:"taken_at"`
}

// NewSet creates an empty queue set.
func NewSet() *Set {
	return &Set{
		p0:    newFIFOQueue(),
		p1:    newScoredQueue(),
		p2:    newScoredQueue(),
		tiers: make(map[string]model.Tier),
	}
}

// Enqueue inserts the entry into its tier's structure.
func (s *Set) Enqueue(e *model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.tiers[e.OrderID]; dup {
		return &DuplicateError{OrderID: e.OrderID}
	}
	switch e.Tier {
	case model.TierP0:
		s.p0.push(e)
	case model.TierP1:
		s.p1.push(e)
	default:
		s.p2.push(e)
	}
	s.tiers[e.OrderID] = e.Tier
	return nil
}

// Dispatch removes and returns the next eligible entry: P0 first, then P1,
// then P2. The second return value is false when every tier is empty. The
// returned entry is marked dispatched.
func (s *Set) Dispatch() (*model.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.p0.pop()
	if !ok {
		e, ok = s.p1.pop()
	}
	if !ok {
		e, ok = s.p2.pop()
	}
	if !ok {
		return nil, false
	}
	delete(s.tiers, e.OrderID)
	e.State = model.StateDispatched
	return e, true
}

// Cancel transitions the entry to cancelled, removes it from future dispatch
// results and returns it. Unknown or already-terminal ids yield NotFoundError.
func (s *Set) Cancel(orderID string) (*model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tier, ok := s.tiers[orderID]
	if !ok {
		return nil, &NotFoundError{OrderID: orderID}
	}
	var e *model.QueueEntry
	switch tier {
	case model.TierP0:
		e, _ = s.p0.remove(orderID)
	case model.TierP1:
		e, _ = s.p1.remove(orderID)
	default:
		e, _ = s.p2.remove(orderID)
	}
	delete(s.tiers, orderID)
	e.State = model.StateCancelled
	return e, nil
}

// Counts returns the current depth of each tier.
func (s *Set) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countsLocked()
}

func (s *Set) countsLocked() map[string]int {
	return map[string]int{
		model.TierP0.String(): s.p0.len(),
		model.TierP1.String(): s.p1.len(),
		model.TierP2.String(): s.p2.len(),
	}
}

// Snapshot copies all entries under the lock; per-tier ordering reflects the
// order Dispatch would drain them in.
func (s *Set) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		P0:     s.p0.entries(),
		P1:     s.p1.entries(),
		P2:     s.p2.entries(),
		Counts: s.countsLocked(),
		Taken:  time.Now().UTC(),
	}
}
