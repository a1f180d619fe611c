package model

import "time"

// Tier is the dispatch priority tier an order is queued in. P0 has absolute
// precedence over P1, which has precedence over P2.
type Tier int

const (
	TierP0 Tier = iota
	TierP1
	TierP2
)

// Tiers returns all tiers in dispatch precedence order.
func Tiers() []Tier { return []Tier{TierP0, TierP1, TierP2} }

// String returns a human-readable representation of the tier.
func (t Tier) String() string {
	switch t {
	case TierP0:
		return "P0"
	case TierP1:
		return "P1"
	case TierP2:
		return "P2"
	default:
		return "unknown"
	}
}

// EntryState tracks the lifecycle of a queue entry. Both Dispatched and
// Cancelled are terminal.
type EntryState int

const (
	StateEnqueued EntryState = iota
	StateDispatched
	StateCancelled
)

func (s EntryState) String() string {
	switch s {
	case StateEnqueued:
		return "ENQUEUED"
	case StateDispatched:
		return "DISPATCHED"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "unknown"
	}
}

// QueueEntry is a priced order waiting for dispatch. The sequence number is
// allocated atomically at enqueue time and strictly increases across all
// producers; it provides FIFO order for P0 and the tie-break for P1/P2.
type QueueEntry struct {
	OrderID      string         `json:"order_id"`
	Tier         Tier           `json:"tier"`
	RevenueScore float64        `json:"revenue_score"`
	Sequence     uint64         `json:"sequence"`
	Breakdown    PriceBreakdown `json:"price_breakdown"`
	CreatedAt    time.Time      `json:"created_at"`
	State        EntryState     `json:"state"`
}

// DispatchedOrder is the view handed to the fulfillment collaborator.
type DispatchedOrder struct {
	OrderID      string         `json:"order_id"`
	Tier         Tier           `json:"tier"`
	FinalPrice   float64        `json:"final_price"`
	Breakdown    PriceBreakdown `json:"price_breakdown"`
	RevenueScore float64        `json:"revenue_score"`
	EnqueuedAt   time.Time      `json:"enqueued_at"`
	DispatchedAt time.Time      `json:"dispatched_at"`
}
