package qmap

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// fileHeaderSize is the byte width of one database block's header:
// dbid (u32), size (u64, the byte length of the entries that follow),
// count (u32) — spec.md §4.10's on-disk format.
const fileHeaderSize = 4 + 8 + 4

// fileRecord tracks one backing file shared by every table opened
// against it: the persistent handles registered against this file, in
// the order they were opened (the Go slice replacement for the
// original's per-file ids_t handle list), and, once a load has
// happened, the read-only mmap it was loaded from. Save emits one
// database block per entry of tables, in this order, per spec.md §4.10.
type fileRecord struct {
	filename string
	tables   []uint32

	file    *os.File
	mapping mmap.MMap
}

// addTable registers hd as a persistent member of fr, in open order.
func (fr *fileRecord) addTable(hd uint32) {
	fr.tables = append(fr.tables, hd)
}

// removeTable drops hd from fr's persistent set, e.g. when a handle is
// closed or superseded by a later Open against the same filename and
// database. A no-op if hd isn't registered.
func (fr *fileRecord) removeTable(hd uint32) {
	for i, h := range fr.tables {
		if h == hd {
			fr.tables = append(fr.tables[:i:i], fr.tables[i+1:]...)
			return
		}
	}
}

// open mmaps fr.filename read-only for loading. A missing or empty file
// is not an error — it simply means there is nothing to load yet, the
// common case for a table being opened for the first time.
func (fr *fileRecord) open() bool {
	f, err := os.Open(fr.filename)
	if err != nil {
		return false
	}
	info, err := f.Stat()
	if err != nil || info.Size() == 0 {
		f.Close()
		return false
	}
	m, err := mmap.MapRegion(f, int(info.Size()), mmap.RDONLY, 0, 0)
	if err != nil {
		f.Close()
		return false
	}
	fr.file = f
	fr.mapping = m
	return true
}

// loadFile scans filename for the database block matching dbid and
// replays its entries into hd via the public Put, so any secondary
// already associated with hd (in particular a mirror, wired by Open
// before this call) is repopulated through its association callback
// exactly as a live Put would, rather than by re-parsing the same bytes
// a second time under the secondary's own, differently-typed, key/value
// layout. Grounded on qmap_load_file / _qmap_load, which replays through
// the public qmap_put for the same reason. Entries carry no length
// prefix of their own: the table's own key/value types measure their
// extent from the bytes themselves, exactly as Put relies on the same
// types to measure data for storage.
func (e *Engine) loadFile(filename string, hd uint32, dbid uint32) {
	fr := e.files[filename]
	if fr.mapping == nil && !fr.open() {
		return
	}

	data := fr.mapping
	t := e.tables[hd]
	ktype := e.types.get(t.keyType)
	vtype := e.types.get(t.valType)

	pos := 0
	for pos+fileHeaderSize <= len(data) {
		blockDbid := binary.LittleEndian.Uint32(data[pos:])
		size := binary.LittleEndian.Uint64(data[pos+4:])
		count := binary.LittleEndian.Uint32(data[pos+12:])
		pos += fileHeaderSize

		if pos+int(size) > len(data) {
			e.fatalf("qmap: truncated database block", zap.String("file", filename))
		}

		if blockDbid != dbid {
			pos += int(size)
			continue
		}

		block := data[pos : pos+int(size)]
		bpos := 0
		for i := uint32(0); i < count; i++ {
			klen := ktype.length(block[bpos:])
			key := block[bpos : bpos+klen]
			bpos += klen

			vlen := vtype.length(block[bpos:])
			val := block[bpos : bpos+vlen]
			bpos += vlen

			e.Put(hd, key, val)
		}
		return
	}
}

// Save writes every persistent table back to its backing file, one
// database block per handle, as an in-memory buffer followed by an
// atomic rename. The original engine mmaps the file for writing after
// precomputing its exact final size (qmap_calc_file_size); Go's
// encoding/bytes buffer plus os.Rename gets the same effect — a file
// that is either fully the old contents or fully the new ones, never a
// partial write — without needing to grow an mmap in place.
func (e *Engine) Save() error {
	for filename, fr := range e.files {
		if err := e.saveFile(filename, fr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) saveFile(filename string, fr *fileRecord) error {
	var buf bytes.Buffer

	for _, hd := range fr.tables {
		t := e.tables[hd]
		ktype := e.types.get(t.keyType)
		vtype := e.types.get(t.valType)

		var body bytes.Buffer
		var count uint32
		for n := uint32(0); n < t.capacity; n++ {
			if t.keys[n] == nil {
				continue
			}
			key := e.key(hd, n)
			val := e.val(hd, n)
			body.Write(key[:ktype.length(key)])
			body.Write(val[:vtype.length(val)])
			count++
		}

		var header [fileHeaderSize]byte
		binary.LittleEndian.PutUint32(header[0:], t.dbid)
		binary.LittleEndian.PutUint64(header[4:], uint64(body.Len()))
		binary.LittleEndian.PutUint32(header[12:], count)

		buf.Write(header[:])
		buf.Write(body.Bytes())
	}

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "qmap: writing %s", tmp)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return errors.Wrapf(err, "qmap: renaming %s to %s", tmp, filename)
	}

	if fr.mapping != nil {
		fr.mapping.Unmap()
		fr.mapping = nil
	}
	if fr.file != nil {
		fr.file.Close()
		fr.file = nil
	}
	return nil
}
