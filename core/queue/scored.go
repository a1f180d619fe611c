package queue

import (
	"container/heap"
	"sort"

	"github.com/urbanride/dispatch/core/model"
)

// scoredQueue holds P1/P2 entries ordered by revenue score descending, ties
// broken by smaller sequence number. Insert and pop are O(log n); the id
// index lets cancel remove an arbitrary entry in O(log n) instead of O(n).
// Not safe for concurrent use; the Set serializes access.
type scoredQueue struct {
	items scoredHeap
	byID  map[string]*scoredItem
}

type scoredItem struct {
	entry *model.QueueEntry
	index int
}

func newScoredQueue() *scoredQueue {
	return &scoredQueue{byID: make(map[string]*scoredItem)}
}

func (q *scoredQueue) push(e *model.QueueEntry) {
	it := &scoredItem{entry: e}
	q.byID[e.OrderID] = it
	heap.Push(&q.items, it)
}

// pop removes and returns the maximum element.
func (q *scoredQueue) pop() (*model.QueueEntry, bool) {
	if q.items.Len() == 0 {
		return nil, false
	}
	it := heap.Pop(&q.items).(*scoredItem)
	delete(q.byID, it.entry.OrderID)
	return it.entry, true
}

func (q *scoredQueue) remove(orderID string) (*model.QueueEntry, bool) {
	it, ok := q.byID[orderID]
	if !ok {
		return nil, false
	}
	heap.Remove(&q.items, it.index)
	delete(q.byID, orderID)
	return it.entry, true
}

func (q *scoredQueue) len() int { return q.items.Len() }

// entries returns copies sorted in dispatch order. The heap array itself is
// only partially ordered, so the copy is sorted explicitly.
func (q *scoredQueue) entries() []model.QueueEntry {
	out := make([]model.QueueEntry, 0, q.items.Len())
	for _, it := range q.items {
		out = append(out, *it.entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RevenueScore != out[j].RevenueScore {
			return out[i].RevenueScore > out[j].RevenueScore
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

type scoredHeap []*scoredItem

func (h scoredHeap) Len() int { return len(h) }

func (h scoredHeap) Less(i, j int) bool {
	a, b := h[i].entry, h[j].entry
	if a.RevenueScore != b.RevenueScore {
		return a.RevenueScore > b.RevenueScore
	}
	return a.Sequence < b.Sequence
}

func (h scoredHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *scoredHeap) Push(x any) {
	it := x.(*scoredItem)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}
