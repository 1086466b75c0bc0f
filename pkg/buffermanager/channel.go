// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements channel.go: the per-leaf metadata and ring buffer
// pairing that the channel tree stores.
package buffermanager

import (
	"fmt"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// ChannelInfo is the declared, user-facing metadata for one channel. It is
// immutable after AddChannel. The type tag and encoder bound on first push
// live on the channel leaf (see channel below), not in ChannelInfo.
type ChannelInfo struct {
	Name           string   `json:"name"`
	Dimensions     []int    `json:"dimensions"`
	TypeName       string   `json:"type_name,omitempty"`
	ElementsNames  []string `json:"elements_names,omitempty"`
	UnitsOfMeasure []string `json:"units_of_measure,omitempty"`
}

// dimensionsFactorial returns the product of Dimensions, i.e. the number of
// scalar elements in one sample.
func (ci ChannelInfo) dimensionsFactorial() int {
	n := 1
	for _, d := range ci.Dimensions {
		n *= d
	}
	return n
}

// validate checks that dimensions is non-empty and strictly positive.
func (ci ChannelInfo) validate() error {
	if len(ci.Dimensions) == 0 {
		return fmt.Errorf("[BUFFERMGR]> channel %q: dimensions must not be empty: %w", ci.Name, ErrInvalidShape)
	}
	for _, d := range ci.Dimensions {
		if d <= 0 {
			return fmt.Errorf("[BUFFERMGR]> channel %q: dimension %d is not positive: %w", ci.Name, d, ErrInvalidShape)
		}
	}
	return nil
}

// normalize synthesizes elements_names when absent and broadcasts a
// single-entry units_of_measure across all elements. It logs and proceeds
// (does not fail) on a length mismatch.
func (ci *ChannelInfo) normalize() {
	k := ci.dimensionsFactorial()

	if len(ci.ElementsNames) == 0 {
		ci.ElementsNames = make([]string, k)
		for i := range ci.ElementsNames {
			ci.ElementsNames[i] = fmt.Sprintf("element_%d", i)
		}
	} else if len(ci.ElementsNames) != k {
		cclog.Warnf("[BUFFERMGR]> channel %q: elements_names has %d entries, want %d; proceeding as given", ci.Name, len(ci.ElementsNames), k)
	}

	switch len(ci.UnitsOfMeasure) {
	case 0:
		// Left empty; nothing to broadcast.
	case 1:
		broadcast := make([]string, k)
		for i := range broadcast {
			broadcast[i] = ci.UnitsOfMeasure[0]
		}
		ci.UnitsOfMeasure = broadcast
	default:
		if len(ci.UnitsOfMeasure) != k {
			cclog.Warnf("[BUFFERMGR]> channel %q: units_of_measure has %d entries, want 1 or %d; proceeding as given", ci.Name, len(ci.UnitsOfMeasure), k)
		}
	}
}

// channel pairs a ChannelInfo with its ring buffer, per-channel mutex, and
// late-bound encoder. It is the leaf payload of the channel tree.
type channel struct {
	mu sync.Mutex

	info    ChannelInfo
	buf     *ringBuffer
	typeTag elementKind
	encode  encodeFunc // nil until the first successful push
}

func newChannel(info ChannelInfo, capacity int) *channel {
	return &channel{
		info: info,
		buf:  newRingBuffer(capacity),
	}
}

// setCapacity resizes the channel's ring buffer, preserving the most recent
// records.
func (c *channel) setCapacity(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.setCapacity(n)
}

// push appends a timestamped value under the channel lock, binding type_tag
// and encode_fn on the first successful push. Returns ErrShapeMismatch or
// ErrTypeMismatch (logged by the caller) when the value does not match the
// channel's established contract.
func (c *channel) push(ts float64, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kind, count, err := classify(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if count != c.info.dimensionsFactorial() {
		return fmt.Errorf("%w: got %d elements, channel %q wants %d", ErrShapeMismatch, count, c.info.Name, c.info.dimensionsFactorial())
	}

	if c.typeTag == kindUnset {
		c.typeTag = kind
		c.encode = newEncodeFunc(kind, value)
	} else if c.typeTag != kind {
		return fmt.Errorf("%w: channel %q bound to %v, got %v", ErrTypeMismatch, c.info.Name, c.typeTag, kind)
	}

	c.buf.pushBack(record{ts: ts, datum: value})
	return nil
}
