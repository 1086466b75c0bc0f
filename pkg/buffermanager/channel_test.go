// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

import (
	"errors"
	"testing"
)

// ─── ChannelInfo normalization ────────────────────────────────────────────

func TestChannelInfoNormalizeSynthesizesElementNames(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{3}}
	ci.normalize()
	want := []string{"element_0", "element_1", "element_2"}
	if len(ci.ElementsNames) != len(want) {
		t.Fatalf("ElementsNames = %v, want %v", ci.ElementsNames, want)
	}
	for i := range want {
		if ci.ElementsNames[i] != want[i] {
			t.Errorf("ElementsNames[%d] = %q, want %q", i, ci.ElementsNames[i], want[i])
		}
	}
}

func TestChannelInfoNormalizeBroadcastsUnits(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{3}, UnitsOfMeasure: []string{"deg"}}
	ci.normalize()
	if len(ci.UnitsOfMeasure) != 3 {
		t.Fatalf("UnitsOfMeasure = %v, want 3 broadcast entries", ci.UnitsOfMeasure)
	}
	for _, u := range ci.UnitsOfMeasure {
		if u != "deg" {
			t.Errorf("UnitsOfMeasure entry = %q, want %q", u, "deg")
		}
	}
}

func TestChannelInfoValidateRejectsNonPositiveDimension(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{3, 0}}
	if err := ci.validate(); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("validate() = %v, want ErrInvalidShape", err)
	}
}

func TestChannelInfoValidateRejectsEmptyDimensions(t *testing.T) {
	ci := ChannelInfo{Name: "one"}
	if err := ci.validate(); !errors.Is(err, ErrInvalidShape) {
		t.Fatalf("validate() = %v, want ErrInvalidShape", err)
	}
}

// ─── Type-fix on first push ───────────────────────────────────────────────

func TestChannelPushBindsTypeOnFirstPush(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{1}}
	ci.normalize()
	ch := newChannel(ci, 10)

	if err := ch.push(0, 42); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if ch.typeTag != kindNumeric {
		t.Fatalf("typeTag = %v, want kindNumeric", ch.typeTag)
	}
	if err := ch.push(1, 7); err != nil {
		t.Fatalf("second push of same type: %v", err)
	}
}

func TestChannelPushRejectsTypeMismatchAfterBinding(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{1}}
	ci.normalize()
	ch := newChannel(ci, 10)

	if err := ch.push(0, 42); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if err := ch.push(1, map[string]int{"a": 1}); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("push() = %v, want ErrTypeMismatch", err)
	}
	if ch.buf.len() != 1 {
		t.Fatalf("mismatched push must be dropped, len()=%d", ch.buf.len())
	}
}

func TestChannelPushRejectsShapeMismatch(t *testing.T) {
	ci := ChannelInfo{Name: "one", Dimensions: []int{3}}
	ci.normalize()
	ch := newChannel(ci, 10)

	if err := ch.push(0, []float64{1, 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("push() = %v, want ErrShapeMismatch", err)
	}
}
