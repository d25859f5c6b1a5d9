package payoff

import (
	"container/heap"

	"github.com/alejandrodnm/debtplan/internal/domain"
)

// Selector keeps debts ranked for one strategy so the month's target can be
// read in O(1) and re-ranked in O(log n) after each balance change.
//
// Ordering:
//   - snowball:  balance asc, APR asc, id asc
//   - avalanche: APR desc, balance asc, id asc
type Selector struct {
	h rankHeap
}

// NewSelector returns an empty selector for the given strategy.
// Any strategy other than snowball ranks as avalanche.
func NewSelector(strategy domain.Strategy) *Selector {
	less := avalancheLess
	if strategy == domain.Snowball {
		less = snowballLess
	}
	return &Selector{h: rankHeap{pos: make(map[string]int), less: less}}
}

// Push starts tracking a debt. Pushing an id that is already tracked re-ranks it.
func (s *Selector) Push(id string, balance, apr float64) {
	s.Update(id, balance, apr)
}

// Update re-ranks id with its new balance, inserting it if absent.
func (s *Selector) Update(id string, balance, apr float64) {
	if i, ok := s.h.pos[id]; ok {
		e := &s.h.items[i]
		if e.balance == balance && e.apr == apr {
			return
		}
		e.balance, e.apr = balance, apr
		heap.Fix(&s.h, i)
		return
	}
	heap.Push(&s.h, rankEntry{id: id, balance: balance, apr: apr})
}

// Remove stops tracking id. Unknown ids are ignored.
func (s *Selector) Remove(id string) {
	if i, ok := s.h.pos[id]; ok {
		heap.Remove(&s.h, i)
	}
}

// Peek returns the top-ranked id without removing it.
func (s *Selector) Peek() (string, bool) {
	if len(s.h.items) == 0 {
		return "", false
	}
	return s.h.items[0].id, true
}

// Len returns the number of tracked debts.
func (s *Selector) Len() int {
	return len(s.h.items)
}

type rankEntry struct {
	id      string
	balance float64
	apr     float64
}

func snowballLess(a, b rankEntry) bool {
	if a.balance != b.balance {
		return a.balance < b.balance
	}
	if a.apr != b.apr {
		return a.apr < b.apr
	}
	return a.id < b.id
}

func avalancheLess(a, b rankEntry) bool {
	if a.apr != b.apr {
		return a.apr > b.apr
	}
	if a.balance != b.balance {
		return a.balance < b.balance
	}
	return a.id < b.id
}

// rankHeap implements heap.Interface with an id → index map for Fix/Remove.
type rankHeap struct {
	items []rankEntry
	pos   map[string]int
	less  func(a, b rankEntry) bool
}

func (h rankHeap) Len() int           { return len(h.items) }
func (h rankHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }

func (h rankHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].id] = i
	h.pos[h.items[j].id] = j
}

func (h *rankHeap) Push(x any) {
	e := x.(rankEntry)
	h.pos[e.id] = len(h.items)
	h.items = append(h.items, e)
}

func (h *rankHeap) Pop() any {
	n := len(h.items) - 1
	e := h.items[n]
	h.items = h.items[:n]
	delete(h.pos, e.id)
	return e
}
