package qmap

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// defaultHash is the type registry's default key hash. The original
// engine seeds XXH32 with the constant 13 (QM_SEED); xxhash/v2 only
// exposes a 64-bit digest, so the low 32 bits of Sum64 are used instead.
// This is not bit-compatible with the C engine's hash values. Probing
// only needs the hash to agree within one process, but the dbid written
// into each database block header is this hash of the database name
// (see dbidHash), so files written by the C engine are not found by
// their database name here, and vice versa.
func defaultHash(data []byte) uint32 {
	return uint32(xxhash.Sum64(data))
}

// dbidHash hashes a logical database name into the 32-bit id stored in
// each file-format database header, mirroring qmap_open's
// XXH32(database, strlen(database), QM_SEED).
func dbidHash(database string) uint32 {
	return defaultHash([]byte(database))
}

// identityHash reads the first 4 bytes of key as a little-endian
// uint32 and returns them unchanged, the HNDL built-in's hash (qmap_nohash:
// "uses value directly as hash, no transformation").
func identityHash(key []byte) uint32 {
	return binary.LittleEndian.Uint32(key)
}

// byteCmp is the default comparator: a plain byte-wise comparison over
// the first length bytes of a and b (qmap_ccmp / memcmp).
func byteCmp(a, b []byte) int {
	return bytes.Compare(a, b)
}

// stringCmp is STR's comparator (qmap_scmp / strcmp): byte-wise compare,
// stopping at the first NUL in either operand so trailing garbage past
// a string's logical end never affects ordering.
func stringCmp(a, b []byte) int {
	return bytes.Compare(trimNUL(a), trimNUL(b))
}

func trimNUL(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// u32Cmp is HNDL/U32's comparator (qmap_ucmp): numeric order over the
// first 4 bytes read as little-endian uint32, not byte-lexicographic
// order.
func u32Cmp(a, b []byte) int {
	ua := binary.LittleEndian.Uint32(a)
	ub := binary.LittleEndian.Uint32(b)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	default:
		return 0
	}
}

// strMeasure is STR's measure callback: the length of data up to and
// including the first NUL byte, or the whole slice when there is none.
// This is the byte-slice analogue of s_measure's strlen(key)+1.
func strMeasure(data []byte) int {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1
	}
	return len(data)
}

// EncodeU32 packs a uint32 into the 4-byte little-endian form expected
// by the U32 and HNDL built-in types.
func EncodeU32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// DecodeU32 is the inverse of EncodeU32.
func DecodeU32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// EncodeStr packs a Go string into the NUL-terminated byte form expected
// by the STR built-in type.
func EncodeStr(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// DecodeStr is the inverse of EncodeStr.
func DecodeStr(b []byte) string {
	return string(trimNUL(b))
}
