package qmap

// ndelTopDown deletes slot n from hd and every one of hd's secondaries,
// recursing into secondaries first so a leaf's own slot is freed before
// its parent's — the cascade spec.md §4.9 describes, grounded on
// qmap_ndel_topdown.
func (e *Engine) ndelTopDown(hd, n uint32) {
	t := e.tables[hd]
	for _, ahd := range t.linked {
		e.ndelTopDown(ahd, n)
	}
	e.ndel(hd, n)
}

// ndel frees slot n in hd's own table: it clears the hash index cell
// that currently points at n (found by re-probing hd's own stored key,
// not by re-hashing the caller's), and — only when hd is itself a
// primary — releases the value payload and decrements the live count.
// A table that has already lost its key at n (already deleted, or never
// associated a key into this slot) is a no-op, per qmap_ndel.
func (e *Engine) ndel(hd, n uint32) {
	t := e.tables[hd]
	key := t.keys[n]
	if key == nil {
		return
	}

	ktype := e.types.get(t.keyType)
	id := probe(t, ktype, key)
	t.idmap[id] = Miss

	if t.primary == hd {
		t.vals[n] = nil
		t.count--
		if t.flags&FlagSorted != 0 {
			t.iflags |= sdirty
		}
	}

	t.keys[n] = nil
	t.idm.del(n)
}

// Del removes the entry for key from hd, ascending to hd's root primary
// and cascading top-down through the whole association graph from there
// — a delete issued against a secondary must still clear the primary's
// payload and every sibling secondary, per qmap_ndel. A missing key is a
// no-op.
func (e *Engine) Del(hd uint32, key []byte) {
	t := e.tables[hd]
	ktype := e.types.get(t.keyType)
	id := probe(t, ktype, key)
	n := t.idmap[id]
	if n == Miss || t.keys[n] == nil || cmpKeys(ktype, t.keys[n], key) != 0 {
		return
	}
	e.ndelTopDown(e.root(hd), n)
}

// Drop removes every entry from hd (cascading through hd's root, as Del
// does, for each one) without closing the table itself.
func (e *Engine) Drop(hd uint32) {
	t := e.tables[hd]
	root := e.root(hd)
	for n := uint32(0); n < t.capacity; n++ {
		if t.keys[n] != nil {
			e.ndelTopDown(root, n)
		}
	}
	t.idm.drop()
	t.count = 0
}
