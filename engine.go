package qmap

import (
	"go.uber.org/zap"
)

// OpenFlags configure a table at Open time (enum qmap_flags).
type OpenFlags uint32

const (
	// FlagAutoIndex makes a nil key in Put mint a fresh slot number and
	// use it as the key, instead of requiring a real key (QM_AINDEX).
	FlagAutoIndex OpenFlags = 1 << iota

	// FlagMirror opens a second table at handle+1 with key and value
	// types swapped, flagged FlagPrimaryGet, and associated with the
	// default callback, giving bidirectional lookup for free (QM_MIRROR).
	FlagMirror

	// FlagPrimaryGet makes Get on this table return the primary's key
	// instead of the primary's value; set automatically on a mirror, and
	// available for any hand-built secondary index (QM_PGET).
	FlagPrimaryGet

	// FlagSorted maintains a lazily rebuilt sorted index, enabling
	// ordered iteration and range seeks (QM_SORTED).
	FlagSorted
)

// internal flags, not part of the public Open surface.
type internalFlags uint32

const (
	sdirty internalFlags = 1 << iota // sorted index needs rebuild
)

// IterFlags configure a cursor at Iter time (enum qmap_if).
type IterFlags uint32

const (
	// FlagRange requests range/ordered iteration semantics instead of a
	// single point lookup; see cursor.go for the full mode table.
	FlagRange IterFlags = 1
)

// AssocFunc derives a secondary table's key from a primary (key, value)
// pair. A nil AssocFunc passed to Assoc defaults to "secondary key =
// primary value" (qmap_rassoc).
type AssocFunc func(primaryKey, primaryValue []byte) (secondaryKey []byte)

// Engine owns every table, cursor, registered type, and open file handle
// it creates. It holds all of Qmap's otherwise process-wide state
// explicitly (per the Design Notes), so nothing here is a package-level
// global: a program may run more than one Engine, each an independent
// exclusion domain, but must not call a single Engine's methods from
// more than one goroutine concurrently.
type Engine struct {
	log *zap.Logger

	handles idManager
	cursors idManager
	types   typeRegistry

	tables  map[uint32]*table
	curs    map[uint32]*cursor
	files   map[string]*fileRecord
	dbIndex map[string]uint32 // "filename\x00database" -> handle, mirrors qmap_dbs_hd
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the Engine's default production zap.Logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New builds a ready-to-use Engine with the four built-in types
// preregistered in the fixed order PTR, HNDL, STR, U32.
func New(opts ...Option) *Engine {
	e := &Engine{
		handles: newIDManager(),
		cursors: newIDManager(),
		types:   newTypeRegistry(),
		tables:  make(map[uint32]*table),
		curs:    make(map[uint32]*cursor),
		files:   make(map[string]*fileRecord),
		dbIndex: make(map[string]uint32),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		e.log = l
	}
	e.initBuiltins()
	return e
}

func (e *Engine) initBuiltins() {
	ptrID := e.types.reg(ptrSize, e.log)
	if ptrID != PTR {
		panic("qmap: PTR registration out of order")
	}

	hndlID := e.types.reg(4, e.log)
	e.types.get(hndlID).Hash = identityHash
	e.types.get(hndlID).Cmp = u32Cmp
	if hndlID != HNDL {
		panic("qmap: HNDL registration out of order")
	}

	strID := e.types.mreg(strMeasure, e.log)
	e.types.get(strID).Cmp = stringCmp
	if strID != STR {
		panic("qmap: STR registration out of order")
	}

	u32ID := e.types.reg(4, e.log)
	e.types.get(u32ID).Cmp = u32Cmp
	if u32ID != U32 {
		panic("qmap: U32 registration out of order")
	}
}

// Reg registers a fixed-length type with the default hash and
// comparator, returning Miss (and logging once) when the type registry
// is full.
func (e *Engine) Reg(length int) uint32 {
	return e.types.reg(length, e.log)
}

// Mreg registers a variable-length type using measure, with the default
// hash and comparator.
func (e *Engine) Mreg(measure MeasureFunc) uint32 {
	return e.types.mreg(measure, e.log)
}

// CmpSet overrides the comparator of a previously registered type.
func (e *Engine) CmpSet(typeID uint32, cmp CmpFunc) {
	e.types.cmpSet(typeID, cmp)
}

// LenOf returns the byte length of data under the given type: its fixed
// length, or the result of its measure callback.
func (e *Engine) LenOf(typeID uint32, data []byte) int {
	return e.types.get(typeID).length(data)
}

// dbKey builds the lookup key for the (filename, database) -> handle
// index, the Go map replacement for qmap_dbs_hd.
func dbKey(filename, database string) string {
	return filename + "\x00" + database
}

func (e *Engine) table(hd uint32) *table {
	t := e.tables[hd]
	if t == nil {
		e.fatalf("qmap: unknown table handle", zap.Uint32("handle", hd))
	}
	return t
}
