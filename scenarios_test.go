package qmap_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tty-pt/qmap"
)

func TestMirrorGivesBidirectionalLookup(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	mirror := hd + 1

	id := e.Put(hd, nil, qmap.EncodeStr("ziggy"))

	v, ok := e.Get(hd, qmap.EncodeU32(id))
	require.True(t, ok)
	require.Equal(t, "ziggy", qmap.DecodeStr(v))

	back, ok := e.Get(mirror, qmap.EncodeStr("ziggy"))
	require.True(t, ok)
	require.Equal(t, id, qmap.DecodeU32(back))
}

func TestCustomAssociationDerivesSecondaryKey(t *testing.T) {
	e := qmap.New()
	pri := e.Open("", "", qmap.U32, qmap.STR, 0, 0)
	sec := e.Open("", "", qmap.STR, qmap.U32, 0, qmap.FlagPrimaryGet)

	// secondary key = first byte of the primary's value
	e.Assoc(sec, pri, func(primaryKey, primaryValue []byte) []byte {
		return qmap.EncodeStr(string(primaryValue[:1]))
	})

	e.Put(pri, qmap.EncodeU32(1), qmap.EncodeStr("alpha"))
	e.Put(pri, qmap.EncodeU32(2), qmap.EncodeStr("beta"))

	v, ok := e.Get(sec, qmap.EncodeStr("a"))
	require.True(t, ok)
	require.Equal(t, uint32(1), qmap.DecodeU32(v))

	v, ok = e.Get(sec, qmap.EncodeStr("b"))
	require.True(t, ok)
	require.Equal(t, uint32(2), qmap.DecodeU32(v))
}

func TestSortedRangeIteration(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.STR, 0, qmap.FlagSorted)

	for _, n := range []uint32{30, 10, 50, 20, 40} {
		e.Put(hd, qmap.EncodeU32(n), qmap.EncodeStr("v"))
	}

	cur := e.Iter(hd, nil, qmap.FlagRange)
	var got []uint32
	for {
		k, _, ok := e.Next(cur)
		if !ok {
			break
		}
		got = append(got, qmap.DecodeU32(k))
	}
	e.Fin(cur)

	require.Equal(t, []uint32{10, 20, 30, 40, 50}, got)

	cur = e.Iter(hd, qmap.EncodeU32(25), qmap.FlagRange)
	k, _, ok := e.Next(cur)
	require.True(t, ok)
	require.Equal(t, uint32(30), qmap.DecodeU32(k))
	e.Fin(cur)
}

func TestRangeIterationOnUnsortedTableFiltersNaturalOrder(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.STR, 0, 0)

	for _, n := range []uint32{30, 10, 50, 20, 40} {
		e.Put(hd, qmap.EncodeU32(n), qmap.EncodeStr("v"))
	}

	cur := e.Iter(hd, qmap.EncodeU32(25), qmap.FlagRange)
	var got []uint32
	for {
		k, _, ok := e.Next(cur)
		if !ok {
			break
		}
		got = append(got, qmap.DecodeU32(k))
	}
	e.Fin(cur)

	// no FlagSorted on this table: entries come back in slot-insertion
	// order, just filtered to keys >= 25, not reordered ascending.
	require.Equal(t, []uint32{30, 50, 40}, got)
}

func TestWholeTableScanVisitsEveryLiveEntry(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.STR, 0, 0)

	for _, n := range []uint32{1, 2, 3} {
		e.Put(hd, qmap.EncodeU32(n), qmap.EncodeStr("v"))
	}
	e.Del(hd, qmap.EncodeU32(2))

	cur := e.Iter(hd, nil, 0)
	seen := map[uint32]bool{}
	for {
		k, _, ok := e.Next(cur)
		if !ok {
			break
		}
		seen[qmap.DecodeU32(k)] = true
	}
	e.Fin(cur)

	require.True(t, seen[1])
	require.False(t, seen[2])
	require.True(t, seen[3])
}

func TestDeleteCascadesThroughAssociations(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	mirror := hd + 1

	id := e.Put(hd, nil, qmap.EncodeStr("leaf"))
	e.Del(hd, qmap.EncodeU32(id))

	_, ok := e.Get(hd, qmap.EncodeU32(id))
	require.False(t, ok)

	_, ok = e.Get(mirror, qmap.EncodeStr("leaf"))
	require.False(t, ok)
}

func TestDeleteThroughSecondaryCascadesToPrimary(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	mirror := hd + 1

	id := e.Put(hd, nil, qmap.EncodeStr("leaf"))

	// deleting by the mirror's own key must ascend to the primary and
	// cascade from there, not just clear the mirror's own slot.
	e.Del(mirror, qmap.EncodeStr("leaf"))

	_, ok := e.Get(hd, qmap.EncodeU32(id))
	require.False(t, ok)

	_, ok = e.Get(mirror, qmap.EncodeStr("leaf"))
	require.False(t, ok)
}

func TestDropClearsTableButKeepsItOpen(t *testing.T) {
	e := qmap.New()
	hd := e.Open("", "", qmap.U32, qmap.STR, 0, 0)

	e.Put(hd, qmap.EncodeU32(1), qmap.EncodeStr("a"))
	e.Put(hd, qmap.EncodeU32(2), qmap.EncodeStr("b"))
	e.Drop(hd)

	_, ok := e.Get(hd, qmap.EncodeU32(1))
	require.False(t, ok)

	e.Put(hd, qmap.EncodeU32(3), qmap.EncodeStr("c"))
	v, ok := e.Get(hd, qmap.EncodeU32(3))
	require.True(t, ok)
	require.Equal(t, "c", qmap.DecodeStr(v))
}

func TestSaveAndReopenRoundTrips(t *testing.T) {
	path := "scenario_roundtrip.qmap"
	defer os.Remove(path)

	e := qmap.New()
	hd := e.Open(path, "users", qmap.U32, qmap.STR, 0, 0)
	e.Put(hd, qmap.EncodeU32(1), qmap.EncodeStr("ada"))
	e.Put(hd, qmap.EncodeU32(2), qmap.EncodeStr("grace"))
	require.NoError(t, e.Save())

	e2 := qmap.New()
	hd2 := e2.Open(path, "users", qmap.U32, qmap.STR, 0, 0)

	v, ok := e2.Get(hd2, qmap.EncodeU32(1))
	require.True(t, ok)
	require.Equal(t, "ada", qmap.DecodeStr(v))

	v, ok = e2.Get(hd2, qmap.EncodeU32(2))
	require.True(t, ok)
	require.Equal(t, "grace", qmap.DecodeStr(v))
}

func TestMirrorRoundTripsThroughSave(t *testing.T) {
	path := "scenario_mirror_roundtrip.qmap"
	defer os.Remove(path)

	e := qmap.New()
	hd := e.Open(path, "people", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	e.Put(hd, nil, qmap.EncodeStr("ada"))
	require.NoError(t, e.Save())

	e2 := qmap.New()
	hd2 := e2.Open(path, "people", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	mirror2 := hd2 + 1

	v, ok := e2.Get(mirror2, qmap.EncodeStr("ada"))
	require.True(t, ok)
	require.Equal(t, uint32(0), qmap.DecodeU32(v))
}
