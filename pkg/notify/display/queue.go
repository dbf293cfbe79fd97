package display

import (
	"cmp"
	"container/heap"
	"slices"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/notify"
)

type item struct {
	entry *notify.Entry
	seq   uint64
	index int
}

type items []*item

func (h items) Len() int { return len(h) }

func (h items) Less(i, j int) bool {
	if h[i].entry.Priority != h[j].entry.Priority {
		return h[i].entry.Priority > h[j].entry.Priority
	}
	return h[i].seq < h[j].seq
}

func (h items) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *items) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *items) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Queue is a priority queue of entries safe for concurrent use. The zero
// value is ready to use.
type Queue struct {
	mu   sync.Mutex
	heap items
	byID map[int64]*item
	seq  uint64
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push adds e. Pushing an entry already queued keeps its original place.
func (q *Queue) Push(e *notify.Entry) bool {
	if e == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.byID == nil {
		q.byID = make(map[int64]*item)
	}
	if _, ok := q.byID[e.ID()]; ok {
		return false
	}
	q.seq++
	it := &item{entry: e, seq: q.seq}
	heap.Push(&q.heap, it)
	q.byID[e.ID()] = it
	return true
}

// Pop removes and returns the next entry to show.
func (q *Queue) Pop() (*notify.Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return nil, false
	}
	it := heap.Pop(&q.heap).(*item)
	delete(q.byID, it.entry.ID())
	return it.entry, true
}

// Peek returns the next entry without removing it.
func (q *Queue) Peek() (*notify.Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.heap) == 0 {
		return nil, false
	}
	return q.heap[0].entry, true
}

// Remove drops the entry with id, reporting whether it was queued.
func (q *Queue) Remove(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&q.heap, it.index)
	delete(q.byID, id)
	return true
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// Items returns the queued entries in the order Pop would return them.
func (q *Queue) Items() []*notify.Entry {
	q.mu.Lock()
	sorted := slices.Clone(q.heap)
	q.mu.Unlock()

	slices.SortFunc(sorted, func(a, b *item) int {
		if a.entry.Priority != b.entry.Priority {
			return cmp.Compare(b.entry.Priority, a.entry.Priority)
		}
		return cmp.Compare(a.seq, b.seq)
	})
	out := make([]*notify.Entry, len(sorted))
	for i, it := range sorted {
		out[i] = it.entry
	}
	return out
}
