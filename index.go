package qmap

// cmpKeys compares a and b under typ, first trimming each to its own
// effective length (the fixed length, or the measure callback's result).
// This is the Go-native replacement for the original's max(len(a),
// len(b)) trick: qmap_id/qmap_n_cmp compute a shared comparison length
// because C buffers don't carry their own size, but a Go []byte already
// does, so slicing each operand to its own logical length and letting
// the comparator (bytes.Compare in the byte-wise case) handle the
// differing lengths is both simpler and strictly safer — it can never
// read past either buffer's real extent.
func cmpKeys(typ *Type, a, b []byte) int {
	return typ.Cmp(a[:typ.length(a)], b[:typ.length(b)])
}

// probe runs the open-addressed linear probe described in spec.md §4.3
// and grounded on qmap_id in libqmap.c: hash-and-mask to find a starting
// id, then walk forward (wrapping via the mask) up to capacity steps.
// MISS stops the probe at an insertion point; a slot whose key bytes
// are nil (a deleted entry whose hash-index cell was never cleared
// because something else now occupies it) is walked past rather than
// treated as a match; any other occupied slot is compared against key
// and stops the probe on equality. Exhausting the full capacity without
// an empty slot or a match means the table is full; the id returned then
// names an occupied cell whose key does not match, which callers check.
func probe(t *table, typ *Type, key []byte) uint32 {
	id := typ.Hash(key) & t.mask

	for count := uint32(0); ; count++ {
		n := t.idmap[id]
		if n == Miss {
			return id
		}

		okey := t.keys[n]
		if okey == nil {
			id = (id + 1) & t.mask
			if count+1 >= t.capacity {
				return id
			}
			continue
		}

		if cmpKeys(typ, okey, key) == 0 {
			return id
		}

		id = (id + 1) & t.mask
		if count+1 >= t.capacity {
			return id
		}
	}
}
