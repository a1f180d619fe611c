package eventbus

import "github.com/urbanride/dispatch/core/model"

// OrderEnqueued is published after an order has been priced and queued.
type OrderEnqueued struct {
	Entry model.QueueEntry
}

// OrderDispatched is published when an order is handed to fulfillment.
type OrderDispatched struct {
	Order model.DispatchedOrder
}

// OrderCancelled is published when an enqueued order is cancelled.
type OrderCancelled struct {
	OrderID string
	Tier    model.Tier
}

// RulesReplaced is published after a rule snapshot swap.
type RulesReplaced struct {
	Version uint64
	Rules   int
}
