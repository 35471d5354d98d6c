package qmap

import (
	"unsafe"

	"go.uber.org/zap"
)

// ptrSize is the byte width of the PTR built-in: a pointer-sized opaque
// value, hashed and compared like any other fixed type.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// Built-in type identifiers, preregistered in this exact order by New
// (via initBuiltins) so their numeric ids are fixed, per spec.
const (
	// PTR is a fixed pointer-sized key or value (unsafe.Sizeof(uintptr(0))
	// bytes), hashed and compared byte-wise like any other fixed type.
	//
	// The original C engine special-cases QM_PTR on Put because every
	// value there is passed as a `const void *` one level removed from
	// the data itself, so the pointer-typed case needs an extra
	// `value = &value` to store the pointer's own bits instead of
	// dereferencing it. Qmap's Put already takes the value as a []byte
	// with no such indirection layer, so PTR needs no special casing
	// here: callers that want to round-trip a Go pointer encode it
	// themselves, e.g. via binary.NativeEndian.PutUint64 on
	// uint64(uintptr(unsafe.Pointer(p))), and Qmap stores exactly those
	// bytes, unchanged.
	PTR uint32 = 0

	// HNDL is a fixed 32-bit integer key with an identity hash (the
	// first four bytes read as a little-endian uint32) and an integer
	// comparator, rather than the default byte hash + memcmp.
	HNDL uint32 = 1

	// STR is a variable-length, NUL-terminated string: its measure is
	// len(data)+1 would be the C convention, but Go strings carry their
	// own length, so the measure callback instead returns the length of
	// data up to and including the first NUL byte (or the whole slice if
	// none is present), matching s_measure's "strlen+1" semantics for
	// byte slices built from C-style or Go string sources alike. Values
	// compared with an ordinary byte-order comparator.
	STR uint32 = 2

	// U32 is a fixed 32-bit unsigned integer with the default hash and
	// an integer comparator.
	U32 uint32 = 3
)

// MeasureFunc returns the byte length of a variable-length element.
type MeasureFunc func(data []byte) int

// CmpFunc compares two elements of the given length, returning a value
// <0, ==0, or >0 the way bytes.Compare does.
type CmpFunc func(a, b []byte) int

// HashFunc computes a 32-bit hash of a key.
type HashFunc func(data []byte) uint32

// Type is a registered key or value type: a record of either a fixed
// length or a measure callback (never both — FixedLen == 0 iff Measure
// != nil), a hash function and a comparator. Built-ins are simply
// preregistered Type values; custom types are added via Engine.Reg /
// Engine.Mreg and may have their comparator overridden via CmpSet.
type Type struct {
	FixedLen int
	Measure  MeasureFunc
	Hash     HashFunc
	Cmp      CmpFunc
}

// length returns the byte length of data under this type: the fixed
// length, or the result of the measure callback.
func (t *Type) length(data []byte) int {
	if t.Measure != nil {
		return t.Measure(data)
	}
	return t.FixedLen
}

// typesCapacity mirrors TYPES_MASK+1 in libqmap.c: the process-wide
// limit on how many types a single Engine can register.
const typesCapacity = 256

type typeRegistry struct {
	types []Type
}

func newTypeRegistry() typeRegistry {
	return typeRegistry{types: make([]Type, 0, typesCapacity)}
}

// reg registers a fixed-length type with the default hash and
// comparator, returning Miss (and logging once) if the registry is full.
func (r *typeRegistry) reg(length int, log *zap.Logger) uint32 {
	if len(r.types) >= typesCapacity {
		log.Warn("qmap: type registry full, registration rejected")
		return Miss
	}
	id := uint32(len(r.types))
	r.types = append(r.types, Type{
		FixedLen: length,
		Hash:     defaultHash,
		Cmp:      byteCmp,
	})
	return id
}

// mreg registers a variable-length type using measure, with the default
// hash and comparator.
func (r *typeRegistry) mreg(measure MeasureFunc, log *zap.Logger) uint32 {
	if len(r.types) >= typesCapacity {
		log.Warn("qmap: type registry full, registration rejected")
		return Miss
	}
	id := uint32(len(r.types))
	r.types = append(r.types, Type{
		Measure: measure,
		Hash:    defaultHash,
		Cmp:     byteCmp,
	})
	return id
}

func (r *typeRegistry) get(id uint32) *Type {
	return &r.types[id]
}

func (r *typeRegistry) cmpSet(id uint32, cmp CmpFunc) {
	r.types[id].Cmp = cmp
}
