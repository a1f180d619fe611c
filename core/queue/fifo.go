package queue

import (
	"container/list"

	"github.com/urbanride/dispatch/core/model"
)

// fifoQueue holds P0 entries in strict arrival order. The id index gives O(1)
// removal on cancel. Not safe for concurrent use; the Set serializes access.
type fifoQueue struct {
	order *list.List
	byID  map[string]*list.Element
}

func newFIFOQueue() *fifoQueue {
	return &fifoQueue{order: list.New(), byID: make(map[string]*list.Element)}
}

func (q *fifoQueue) push(e *model.QueueEntry) {
	q.byID[e.OrderID] = q.order.PushBack(e)
}

// pop removes and returns the entry with the smallest sequence number.
func (q *fifoQueue) pop() (*model.QueueEntry, bool) {
	front := q.order.Front()
	if front == nil {
		return nil, false
	}
	e := front.Value.(*model.QueueEntry)
	q.order.Remove(front)
	delete(q.byID, e.OrderID)
	return e, true
}

func (q *fifoQueue) remove(orderID string) (*model.QueueEntry, bool) {
	el, ok := q.byID[orderID]
	if !ok {
		return nil, false
	}
	e := el.Value.(*model.QueueEntry)
	q.order.Remove(el)
	delete(q.byID, orderID)
	return e, true
}

func (q *fifoQueue) len() int { return q.order.Len() }

// entries returns copies in dispatch order.
func (q *fifoQueue) entries() []model.QueueEntry {
	out := make([]model.QueueEntry, 0, q.order.Len())
	for el := q.order.Front(); el != nil; el = el.Next() {
		out = append(out, *el.Value.(*model.QueueEntry))
	}
	return out
}
