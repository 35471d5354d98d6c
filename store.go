package qmap

import (
	"bytes"

	"go.uber.org/zap"
)

// key returns hd's own n'th stored key, the Go analogue of qmap_key:
// every table, primary or secondary, keeps its own omap of keys.
func (e *Engine) key(hd, n uint32) []byte {
	return e.tables[hd].keys[n]
}

// val returns the n'th value as hd sees it: a FlagPrimaryGet table (a
// mirror, or any hand-built reverse index) reads the primary's key
// instead, everything else reads the primary's own value payload
// directly, per qmap_val.
func (e *Engine) val(hd, n uint32) []byte {
	t := e.tables[hd]
	if t.flags&FlagPrimaryGet != 0 {
		return e.key(t.primary, n)
	}
	return e.tables[t.primary].vals[n]
}

// putLowLevel is the engine's single entry point for writing a slot,
// grounded on _qmap_put in libqmap.c. pn, when not Miss, pins the slot
// number instead of minting a fresh one — used by Put's association
// fan-out so a secondary's entry shares its primary's slot number n.
//
// Reuse policy follows spec.md §4.4, not the original C source: an
// update that lands on the slot it already occupies reuses the existing
// key allocation when the new key is byte-for-byte identical, and
// reuses the existing value allocation whenever it is already large
// enough, rather than freeing and reallocating on every write.
func (e *Engine) putLowLevel(hd uint32, key, value []byte, pn uint32) uint32 {
	t := e.table(hd)
	ktype := e.types.get(t.keyType)

	var id, n uint32
	var existing bool

	if key != nil {
		id = probe(t, ktype, key)
		oldN := t.idmap[id]
		existing = oldN != Miss
		if existing {
			// a probe that exhausted the table ends on an occupied cell
			// holding some other key: the table is full.
			if okey := t.keys[oldN]; okey == nil || cmpKeys(ktype, okey, key) != 0 {
				e.fatalf("qmap: table full", zap.Uint32("handle", hd))
			}
			n = oldN
		} else {
			if pn != Miss {
				n = pn
			} else {
				n = t.idm.new()
			}
			t.count++
		}
	} else {
		if pn != Miss {
			n = pn
		} else {
			n = t.idm.new()
		}
		id = n
		t.count++
		key = EncodeU32(n)
	}

	if n >= t.capacity {
		e.fatalf("qmap: capacity exhausted", zap.Uint32("handle", hd), zap.Uint32("slot", n))
	}

	storedKey := key

	if t.primary == hd {
		vtype := e.types.get(t.valType)
		vlen := vtype.length(value)
		if existing && cap(t.vals[n]) >= vlen {
			t.vals[n] = t.vals[n][:vlen]
		} else {
			t.vals[n] = make([]byte, vlen)
		}
		copy(t.vals[n], value[:vlen])

		klen := ktype.length(key)
		oldKey := t.keys[n]
		if existing && oldKey != nil && len(oldKey) == klen && bytes.Equal(oldKey, key[:klen]) {
			storedKey = oldKey
		} else {
			storedKey = make([]byte, klen)
			copy(storedKey, key[:klen])
		}

		if t.flags&FlagSorted != 0 {
			t.iflags |= sdirty
		}
	}

	t.idmap[id] = n
	t.keys[n] = storedKey

	return id
}

// Put writes (key, value) into hd's table and fans the write out to
// every secondary associated with hd, deriving each one's key via its
// AssocFunc from hd's own (key, value) as stored — not the caller's raw
// arguments, since a nil key under FlagAutoIndex only becomes concrete
// once the primary has minted its slot number. Returns the slot's id in
// hd's own hash index.
func (e *Engine) Put(hd uint32, key, value []byte) uint32 {
	id := e.putLowLevel(hd, key, value, Miss)

	t := e.tables[hd]
	n := t.idmap[id]
	rkey := e.key(hd, n)
	rval := e.val(hd, n)

	for _, ahd := range t.linked {
		at := e.tables[ahd]
		skey := at.assoc(rkey, rval)
		e.putLowLevel(ahd, skey, rval, n)
	}

	return id
}

// Get looks up key in hd's table through the cursor machine (a single
// point-mode step), returning the value as hd's own perspective defines
// it — the primary's value payload, or the primary's key on a
// FlagPrimaryGet table.
func (e *Engine) Get(hd uint32, key []byte) ([]byte, bool) {
	cur := e.Iter(hd, key, 0)
	_, v, ok := e.Next(cur)
	e.Fin(cur)
	return v, ok
}
