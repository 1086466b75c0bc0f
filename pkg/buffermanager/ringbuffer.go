// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package buffermanager provides ringbuffer.go: a bounded, overwrite-oldest
// FIFO used to hold the most recent samples of a single telemetry channel.
//
// # Overwrite policy
//
// Unlike a growing time-series chain, a ringBuffer never allocates past its
// configured capacity: once full, the oldest record is silently dropped to
// make room for the newest. This keeps per-channel memory use constant
// regardless of how long a control loop runs between flushes.
//
// # Layout
//
//	data:  [_, _, r2, r3, r4, _, _]
//	              ^           ^
//	             head        head+size (mod cap)
//
// head marks the oldest record still stored; appends write at
// (head+size) mod cap and, when full, advance head by one to drop the
// oldest entry.
package buffermanager

// record is one (timestamp, value) sample for a channel.
type record struct {
	ts    float64
	datum any
}

// ringBuffer is a fixed-capacity FIFO of records with overwrite-oldest
// semantics on full. All methods assume the caller holds the owning
// channel's mutex; ringBuffer itself is not safe for concurrent use.
type ringBuffer struct {
	data []record
	head int
	size int
}

// newRingBuffer creates an empty buffer with the given capacity. A capacity
// of zero is valid and silently drops every pushed record.
func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &ringBuffer{data: make([]record, capacity)}
}

// len returns the number of records currently stored.
func (b *ringBuffer) len() int { return b.size }

// cap returns the buffer's capacity.
func (b *ringBuffer) cap() int { return len(b.data) }

// empty reports whether the buffer holds no records.
func (b *ringBuffer) empty() bool { return b.size == 0 }

// full reports whether the buffer is at capacity.
func (b *ringBuffer) full() bool { return b.size == len(b.data) }

// pushBack appends r, discarding the oldest record first if the buffer is
// already full. A zero-capacity buffer drops every record.
func (b *ringBuffer) pushBack(r record) {
	if len(b.data) == 0 {
		return
	}
	if b.full() {
		// Drop the oldest record by advancing head; the slot it occupied is
		// reused for the new record below.
		b.head = (b.head + 1) % len(b.data)
		b.size--
	}
	idx := (b.head + b.size) % len(b.data)
	b.data[idx] = r
	b.size++
}

// clear empties the buffer without changing its capacity.
func (b *ringBuffer) clear() {
	b.head = 0
	b.size = 0
}

// forEach visits every record oldest-to-newest.
func (b *ringBuffer) forEach(f func(record)) {
	for i := 0; i < b.size; i++ {
		f(b.data[(b.head+i)%len(b.data)])
	}
}

// snapshot returns a copy of the stored records, oldest first.
func (b *ringBuffer) snapshot() []record {
	out := make([]record, 0, b.size)
	b.forEach(func(r record) { out = append(out, r) })
	return out
}

// setCapacity changes the capacity to n. If n is smaller than the current
// size, the oldest size-n records are discarded; the most recent
// min(size, n) records are preserved in order. Resize and setCapacity are
// both treated as a capacity change.
func (b *ringBuffer) setCapacity(n int) {
	if n < 0 {
		n = 0
	}
	kept := b.snapshot()
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	b.data = make([]record, n)
	b.head = 0
	b.size = 0
	for _, r := range kept {
		b.pushBack(r)
	}
}
