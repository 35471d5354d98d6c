package qmap

// Miss is the sentinel returned by every fallible lookup: "no id", "no
// slot", "no handle", "not found". It is the all-ones 32-bit value, the
// direct analogue of QM_MISS / IDM_MISS in the original C engine.
const Miss uint32 = ^uint32(0)

// idManager is a dense small-integer allocator with a free list,
// grounded on idm.h/idm.c: it hands out the smallest unused id,
// preferring a recycled one, and tracks a monotonic "last" watermark so
// whole tail ranges can be reclaimed cheaply. The free list is a plain
// slice rather than the original's singly-linked list — no
// allocation-per-node; new takes its smallest entry.
type idManager struct {
	free []uint32
	last uint32
}

func newIDManager() idManager {
	return idManager{}
}

// new returns the smallest unused id: the smallest id on the free list
// if non-empty, otherwise the current watermark (which it then advances).
func (m *idManager) new() uint32 {
	if n := len(m.free); n > 0 {
		lo := 0
		for i := 1; i < n; i++ {
			if m.free[i] < m.free[lo] {
				lo = i
			}
		}
		id := m.free[lo]
		m.free[lo] = m.free[n-1]
		m.free = m.free[:n-1]
		return id
	}
	id := m.last
	m.last++
	return id
}

// del returns 1 if id was the topmost allocated id (the watermark moves
// down), else pushes id onto the free list and returns 0. Mirrors
// idm_del's int-returning contract exactly, since callers (table close)
// rely on the watermark sometimes shrinking.
func (m *idManager) del(id uint32) int {
	if id+1 == m.last {
		m.last--
		return 1
	}
	m.free = append(m.free, id)
	return 0
}

// pushTo fills the free list with every id in [last, n) and advances the
// watermark to n+1, reserving slot n without handing out the ids before
// it (idm_push). putLowLevel does not call it: a secondary's pinned slot
// number is assigned directly.
func (m *idManager) pushTo(n uint32) uint32 {
	if n < m.last {
		return Miss
	}
	for i := m.last; i < n; i++ {
		m.free = append(m.free, i)
	}
	m.last = n + 1
	return n
}

// drop releases the free list; the watermark is left untouched, matching
// idm_drop (callers that also want the watermark reset do so themselves).
func (m *idManager) drop() {
	m.free = nil
}

// reset fully clears the manager, used by table close where the whole
// slot-number space is being discarded.
func (m *idManager) reset() {
	m.free = nil
	m.last = 0
}
