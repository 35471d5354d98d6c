// Command example demonstrates a small, file-backed Qmap: a primary
// table keyed by an auto-assigned handle, with value-to-handle lookups
// for free via a mirror, then reopened from disk to show persistence.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/tty-pt/qmap"
)

func main() {
	os.Remove("example.qmap")

	e := qmap.New()

	hd := e.Open("example.qmap", "people", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)

	names := []string{"ada", "grace", "alan", "linus"}
	for _, name := range names {
		id := e.Put(hd, nil, qmap.EncodeStr(name))
		fmt.Printf("assigned handle %d to %q\n", id, name)
	}

	if v, ok := e.Get(hd, qmap.EncodeU32(1)); ok {
		fmt.Printf("handle 1 => %q\n", qmap.DecodeStr(v))
	}

	mirror := hd + 1
	if v, ok := e.Get(mirror, qmap.EncodeStr("alan")); ok {
		fmt.Printf("%q => handle %d\n", "alan", qmap.DecodeU32(v))
	}

	if err := e.Save(); err != nil {
		log.Fatalf("save failed: %v", err)
	}

	e2 := qmap.New()
	hd2 := e2.Open("example.qmap", "people", qmap.HNDL, qmap.STR, 0, qmap.FlagAutoIndex|qmap.FlagMirror)
	if v, ok := e2.Get(hd2, qmap.EncodeU32(2)); ok {
		fmt.Printf("after reload, handle 2 => %q\n", qmap.DecodeStr(v))
	}
}
