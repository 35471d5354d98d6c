package qmap

// cursorMode selects which of next()'s behaviors a cursor runs, chosen
// once at Iter time from (key == nil, flags&FlagRange, table sorted?)
// per spec.md §4.8:
//
//	no FlagRange, key != nil             -> modePoint:     the one matching entry, if any
//	no FlagRange, key == nil              -> modeScanAll:   every entry, natural slot order
//	FlagRange, table has no sorted index  -> modeScanRange: natural slot order, filtering out keys < key (key == nil: no filter)
//	FlagRange, table has a sorted index   -> modeSorted:    key order, starting at bsearch(key), or the start if key == nil
type cursorMode int

const (
	modePoint cursorMode = iota
	modeScanAll
	modeScanRange
	modeSorted
)

// cursor is the single piece of state behind every iteration mode: a
// table handle, a mode, a cursor-local position, and an optional anchor
// key. Every mode funnels through the same Next, grounded on
// qmap_lnext being the lone primitive behind qmap_iter/qmap_get/
// whole-table scans in the original engine.
type cursor struct {
	hd   uint32
	mode cursorMode
	pos  uint32 // next slot number (modeScanAll/modeScanRange) or sortedIdx position (modeSorted)
	key  []byte
	done bool
}

// Iter opens a cursor over hd. A nil key with flags == 0 walks the whole
// table in slot order. FlagRange on a table without FlagSorted performs
// a linear "key >= anchor" scan in natural slot order; on a FlagSorted
// table it walks the sorted index from the first entry >= key (or from
// the start, when key is nil).
func (e *Engine) Iter(hd uint32, key []byte, flags IterFlags) uint32 {
	t := e.tables[hd]
	cur := &cursor{hd: hd}

	switch {
	case flags&FlagRange == 0 && key != nil:
		cur.mode = modePoint
		cur.key = key

	case flags&FlagRange == 0:
		cur.mode = modeScanAll

	case t.flags&FlagSorted == 0:
		cur.mode = modeScanRange
		cur.key = key

	default:
		e.rebuildSorted(hd)
		cur.mode = modeSorted
		if key != nil {
			pos, _ := e.bsearch(hd, key)
			cur.pos = uint32(pos)
		}
	}

	id := e.cursors.new()
	e.curs[id] = cur
	return id
}

// Next advances cur and returns its next (key, value) pair, or
// ok == false once the cursor is exhausted.
func (e *Engine) Next(cur uint32) ([]byte, []byte, bool) {
	c := e.curs[cur]
	if c == nil || c.done {
		return nil, nil, false
	}
	t := e.tables[c.hd]

	switch c.mode {
	case modePoint:
		c.done = true
		ktype := e.types.get(t.keyType)
		id := probe(t, ktype, c.key)
		n := t.idmap[id]
		if n == Miss || t.keys[n] == nil || cmpKeys(ktype, t.keys[n], c.key) != 0 {
			return nil, nil, false
		}
		return e.key(c.hd, n), e.val(c.hd, n), true

	case modeScanAll:
		for c.pos < t.capacity {
			n := c.pos
			c.pos++
			if t.keys[n] != nil {
				return e.key(c.hd, n), e.val(c.hd, n), true
			}
		}
		c.done = true
		return nil, nil, false

	case modeScanRange:
		ktype := e.types.get(t.keyType)
		for c.pos < t.capacity {
			n := c.pos
			c.pos++
			k := t.keys[n]
			if k == nil {
				continue
			}
			if c.key != nil && cmpKeys(ktype, k, c.key) < 0 {
				continue
			}
			return e.key(c.hd, n), e.val(c.hd, n), true
		}
		c.done = true
		return nil, nil, false

	default: // modeSorted
		if c.pos >= t.sortedN {
			c.done = true
			return nil, nil, false
		}
		n := t.sortedIdx[c.pos]
		c.pos++
		return e.key(c.hd, n), e.val(c.hd, n), true
	}
}

// Fin closes a cursor opened with Iter. Finalizing an already-closed or
// unknown cursor is a no-op.
func (e *Engine) Fin(cur uint32) {
	if _, ok := e.curs[cur]; !ok {
		return
	}
	delete(e.curs, cur)
	e.cursors.del(cur)
}
