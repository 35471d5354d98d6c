package qmap

import "go.uber.org/zap"

// defaultMask mirrors QM_DEFAULT_MASK: the mask used when Open is
// called with mask == 0, giving a capacity of 256.
const defaultMask = 0xFF

// table is one open handle's worth of state. Every table, primary or
// secondary, keeps its own keys array (the original's omap): a
// secondary's keys are its own derived index, not borrowed from the
// primary. Only vals is primary-only — a secondary reads its values
// through to the primary by slot number instead (see Engine.val in
// store.go).
type table struct {
	keyType, valType uint32
	mask             uint32 // capacity-1; capacity = mask+1, a power of two
	capacity         uint32
	count            uint32
	flags            OpenFlags
	iflags           internalFlags
	primary          uint32 // phd; primary == own handle for a primary table
	linked           []uint32
	assoc            AssocFunc

	dbid     uint32
	filename string
	database string

	idm   idManager
	idmap []uint32 // id -> slot number n

	keys [][]byte // n -> this table's own key bytes, nil when free
	vals [][]byte // n -> owned value bytes; only ever populated when primary == own handle

	sortedIdx []uint32
	sortedN   uint32
}

// openLowLevel is the internal, mirror-unaware table constructor
// (_qmap_open): it allocates the hash index, payload store and, if
// requested, the sorted index scratch array, and registers the new
// table's own handle as its own primary.
func (e *Engine) openLowLevel(ktype, vtype, mask uint32, flags OpenFlags) uint32 {
	hd := e.handles.new()

	if mask == 0 {
		mask = defaultMask
	}
	capacity := mask + 1
	if capacity&mask != 0 {
		e.fatalf("qmap: mask must be 2^k - 1", zap.Uint32("mask", mask))
	}

	t := &table{
		keyType:  ktype,
		valType:  vtype,
		mask:     mask,
		capacity: capacity,
		flags:    flags,
		primary:  hd,
		idm:      newIDManager(),
		idmap:    make([]uint32, capacity),
	}
	for i := range t.idmap {
		t.idmap[i] = Miss
	}

	t.keys = make([][]byte, capacity)
	t.vals = make([][]byte, capacity)

	if flags&FlagSorted != 0 {
		t.sortedIdx = make([]uint32, capacity)
		t.iflags |= sdirty
	}

	e.tables[hd] = t
	return hd
}

// Open creates (and, if filename is file-backed, loads) a table.
// filename/database empty means in-memory-only / no logical database
// association, the Go analogue of NULL in the C API.
func (e *Engine) Open(filename, database string, ktype, vtype, mask uint32, flags OpenFlags) uint32 {
	hd := e.openLowLevel(ktype, vtype, mask, flags)
	t := e.tables[hd]

	if database != "" {
		t.dbid = dbidHash(database)
	} else {
		t.dbid = Miss
	}
	t.filename = filename
	t.database = database

	// The mirror must be associated before the primary's file loads:
	// loadFile replays entries through Put, and Put only fans out to
	// secondaries already present in t.linked at the time of the call.
	if flags&FlagMirror != 0 {
		mirrorFlags := (flags &^ FlagAutoIndex) | FlagPrimaryGet
		mirrorHd := e.openLowLevel(vtype, ktype, mask, mirrorFlags)
		e.Assoc(mirrorHd, hd, nil)
	}

	if filename != "" {
		key := dbKey(filename, database)
		if prevHd, ok := e.dbIndex[key]; ok {
			if prevFile := e.files[filename]; prevFile != nil {
				prevFile.removeTable(prevHd)
			}
		}
		e.dbIndex[key] = hd

		fr := e.files[filename]
		if fr == nil {
			fr = &fileRecord{filename: filename}
			e.files[filename] = fr
		}
		fr.addTable(hd)

		e.loadFile(filename, hd, t.dbid)
	}

	return hd
}

// root follows phd until it reaches the owning primary, per qmap_root.
func (e *Engine) root(hd uint32) uint32 {
	for {
		t := e.tables[hd]
		if t.primary == hd {
			return hd
		}
		hd = t.primary
	}
}

// discardOwnStorage frees a table's own value payload store because it
// has just become a secondary and will read values through to its
// primary from now on (qmap_assoc frees qmap->table, the value array,
// after linking). Its own keys array (omap) is kept: a secondary still
// owns — or at least references — its own derived keys, stored by
// table.keys.
func (t *table) discardOwnStorage() {
	t.vals = nil
}

// Close deletes every entry, closes every associated secondary, and
// releases the table's internal arrays, per qmap_close.
func (e *Engine) Close(hd uint32) {
	t := e.tables[hd]
	if t == nil {
		return
	}

	e.Drop(hd)

	for _, ahd := range t.linked {
		e.Close(ahd)
	}

	if fr := e.files[t.filename]; fr != nil {
		fr.removeTable(hd)
	}

	delete(e.tables, hd)
	e.handles.del(hd)
}
