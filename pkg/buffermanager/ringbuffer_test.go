// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

import "testing"

// ─── Bounded memory / overwrite-oldest ───────────────────────────────────────

func TestRingBufferOverwriteOldest(t *testing.T) {
	b := newRingBuffer(3)
	for i := 0; i < 10; i++ {
		b.pushBack(record{ts: float64(i), datum: i})
	}
	if b.len() != 3 {
		t.Fatalf("len() = %d, want 3", b.len())
	}
	got := b.snapshot()
	want := []int{7, 8, 9}
	for i, r := range got {
		if r.datum.(int) != want[i] {
			t.Errorf("got[%d] = %v, want %d", i, r.datum, want[i])
		}
	}
}

func TestRingBufferBoundedLenNeverExceedsCap(t *testing.T) {
	b := newRingBuffer(4)
	for i := 0; i < 50; i++ {
		b.pushBack(record{ts: float64(i)})
		if b.len() > b.cap() {
			t.Fatalf("len()=%d > cap()=%d after %d pushes", b.len(), b.cap(), i+1)
		}
	}
}

func TestRingBufferZeroCapacityDropsEverything(t *testing.T) {
	b := newRingBuffer(0)
	b.pushBack(record{ts: 1})
	if b.len() != 0 || !b.empty() {
		t.Fatalf("zero-capacity buffer should stay empty, got len=%d", b.len())
	}
}

// ─── Clear ────────────────────────────────────────────────────────────────

func TestRingBufferClear(t *testing.T) {
	b := newRingBuffer(5)
	for i := 0; i < 3; i++ {
		b.pushBack(record{ts: float64(i)})
	}
	b.clear()
	if !b.empty() || b.len() != 0 {
		t.Fatalf("clear() should empty the buffer, len()=%d", b.len())
	}
	if b.cap() != 5 {
		t.Fatalf("clear() must not change capacity, cap()=%d", b.cap())
	}
}

// ─── Resize / set_capacity ────────────────────────────────────────────────

func TestRingBufferSetCapacityShrinkKeepsNewest(t *testing.T) {
	b := newRingBuffer(5)
	for i := 0; i < 5; i++ {
		b.pushBack(record{ts: float64(i), datum: i})
	}
	b.setCapacity(2)
	got := b.snapshot()
	if len(got) != 2 || got[0].datum.(int) != 3 || got[1].datum.(int) != 4 {
		t.Fatalf("setCapacity(2) kept %+v, want last two records [3 4]", got)
	}
}

func TestRingBufferSetCapacityGrowPreservesOrder(t *testing.T) {
	b := newRingBuffer(2)
	b.pushBack(record{ts: 0, datum: 0})
	b.pushBack(record{ts: 1, datum: 1})
	b.setCapacity(10)
	if b.cap() != 10 {
		t.Fatalf("cap() = %d, want 10", b.cap())
	}
	got := b.snapshot()
	if len(got) != 2 || got[0].datum.(int) != 0 || got[1].datum.(int) != 1 {
		t.Fatalf("growing must preserve existing order, got %+v", got)
	}
}

// ─── Iteration order ──────────────────────────────────────────────────────

func TestRingBufferIterationOldestToNewest(t *testing.T) {
	b := newRingBuffer(4)
	for i := 0; i < 4; i++ {
		b.pushBack(record{ts: float64(i), datum: i})
	}
	// Wrap around once.
	b.pushBack(record{ts: 4, datum: 4})

	var seen []int
	b.forEach(func(r record) { seen = append(seen, r.datum.(int)) })
	want := []int{1, 2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("forEach visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}
