package qmap_test

import (
	"testing"

	"github.com/tty-pt/qmap"
)

func BenchmarkPut(b *testing.B) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.U32, 0xFFFF, 0)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := qmap.EncodeU32(uint32(i) & 0xFFFF)
		e.Put(hd, key, key)
	}
}

func BenchmarkGetHit(b *testing.B) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.U32, 0xFFFF, 0)

	const n = 1 << 14
	for i := uint32(0); i < n; i++ {
		key := qmap.EncodeU32(i)
		e.Put(hd, key, key)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := qmap.EncodeU32(uint32(i) % n)
		e.Get(hd, key)
	}
}

func BenchmarkSortedRangeIterate(b *testing.B) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.U32, 0xFFFF, qmap.FlagSorted)

	const n = 1 << 14
	for i := uint32(0); i < n; i++ {
		key := qmap.EncodeU32(i)
		e.Put(hd, key, key)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cur := e.Iter(hd, nil, qmap.FlagRange)
		for {
			_, _, ok := e.Next(cur)
			if !ok {
				break
			}
		}
		e.Fin(cur)
	}
}

// BenchmarkMirrorPut is capped at the table's own capacity: FlagAutoIndex
// mints a fresh slot on every Put with no reuse, so letting b.N run past
// capacity would hit the engine's capacity-exhaustion fatal path.
func BenchmarkMirrorPut(b *testing.B) {
	e := qmap.New()
	hd := e.Open("", "", qmap.HNDL, qmap.STR, 0xFFFF, qmap.FlagAutoIndex|qmap.FlagMirror)

	names := [][]byte{qmap.EncodeStr("ada"), qmap.EncodeStr("grace"), qmap.EncodeStr("alan")}

	if b.N > 0xFFFF {
		b.N = 0xFFFF
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Put(hd, nil, names[i%len(names)])
	}
}
