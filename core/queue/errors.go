package queue

import "fmt"

// NotFoundError reports a dispatch or cancel against an order that is not
// present or no longer in the enqueued state.
type NotFoundError struct {
	OrderID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("queue: order %s not found or not enqueued", e.OrderID)
}

// DuplicateError reports an enqueue with an order id that is already queued.
type DuplicateError struct {
	OrderID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("queue: order %s already enqueued", e.OrderID)
}
