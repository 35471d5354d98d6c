package qmap

import "testing"

func TestIDManagerNewReusesFreed(t *testing.T) {
	m := newIDManager()

	a := m.new()
	b := m.new()
	if a != 0 || b != 1 {
		t.Fatalf("expected 0,1 got %d,%d", a, b)
	}

	if moved := m.del(a); moved != 0 {
		t.Fatalf("deleting a non-top id should push to free list, got moved=%d", moved)
	}

	c := m.new()
	if c != a {
		t.Fatalf("expected freed id %d to be reused, got %d", a, c)
	}
}

func TestIDManagerDelShrinksWatermark(t *testing.T) {
	m := newIDManager()
	m.new()
	m.new()
	top := m.new() // 2

	if moved := m.del(top); moved != 1 {
		t.Fatalf("deleting the top id should shrink the watermark, got moved=%d", moved)
	}

	next := m.new()
	if next != top {
		t.Fatalf("watermark should hand back id %d, got %d", top, next)
	}
}

func TestIDManagerPushTo(t *testing.T) {
	m := newIDManager()
	m.new() // 0

	if got := m.pushTo(4); got != 4 {
		t.Fatalf("pushTo(4) = %d, want 4", got)
	}

	seen := map[uint32]bool{}
	for i := 0; i < 3; i++ {
		seen[m.new()] = true
	}
	for _, want := range []uint32{1, 2, 3} {
		if !seen[want] {
			t.Fatalf("expected pushTo to reserve id %d into the free list", want)
		}
	}

	if next := m.new(); next != 5 {
		t.Fatalf("watermark should resume at 5, got %d", next)
	}
}
