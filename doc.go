/*
Package qmap provides an embeddable associative-container engine for
programs that need several named key/value tables in one process, with
optional on-disk persistence, reverse indexes, and sorted range scans.

An Engine owns every table, cursor, and registered type it creates.
Opening a table returns a small integer handle; Put, Get, Del, and Iter
then operate against that handle. Several tables can share one file,
multiplexed by a logical database name hashed into a 32-bit id.

Basic usage:

	e := qmap.New()
	defer e.Save()

	hd := e.Open("", "", qmap.U32, qmap.STR, 0xFF, 0)
	e.Put(hd, qmap.EncodeU32(1), []byte("one"))

	v, ok := e.Get(hd, qmap.EncodeU32(1))
	if ok {
		fmt.Println(string(v)) // "one"
	}

Features:

  - Fixed- and variable-length key/value types via a small type registry,
    with four built-ins (PTR, HNDL, STR, U32) preregistered in that order
  - Open-addressed hash index with linear probing and allocation reuse on
    update, so a slice returned by Get typically survives a same- or
    smaller-sized overwrite
  - Secondary/mirror tables kept in sync with a primary through
    association callbacks, including automatic bidirectional mirrors
  - Lazily rebuilt sorted index for ordered iteration and range seeks
  - A single cursor primitive serving point, equality, range, and
    whole-table iteration
  - Optional file-backed persistence: several logical databases packed
    into one mmap'd file, loaded on Open and written on Save

Qmap holds all of its state inside one Engine value and performs no
internal locking; it is not safe to call an Engine's methods from more
than one goroutine at a time. Programs needing concurrent access should
either serialize access to a single Engine themselves or create one
Engine per execution context.
*/
package qmap
