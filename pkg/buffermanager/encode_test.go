// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

import (
	"testing"

	"github.com/robometry/robometry-go/pkg/buffermanager/matfile"
)

// ─── classify ──────────────────────────────────────────────────────────────

func TestClassifyNumericScalarAndSlice(t *testing.T) {
	if k, n, err := classify(3.14); err != nil || k != kindNumeric || n != 1 {
		t.Fatalf("classify(3.14) = (%v,%d,%v), want (numeric,1,nil)", k, n, err)
	}
	if k, n, err := classify([]float64{1, 2, 3}); err != nil || k != kindNumeric || n != 3 {
		t.Fatalf("classify([]float64{1,2,3}) = (%v,%d,%v), want (numeric,3,nil)", k, n, err)
	}
	if k, n, err := classify([][]float64{{1, 2, 3}, {4, 5, 6}}); err != nil || k != kindNumeric || n != 6 {
		t.Fatalf("classify(2x3 matrix) = (%v,%d,%v), want (numeric,6,nil)", k, n, err)
	}
}

type pose struct {
	X, Y, Theta float64
}

func TestClassifyStructLike(t *testing.T) {
	if k, n, err := classify(pose{}); err != nil || k != kindStruct || n != 3 {
		t.Fatalf("classify(pose{}) = (%v,%d,%v), want (struct,3,nil)", k, n, err)
	}
}

func TestClassifyOpaqueCell(t *testing.T) {
	if k, n, err := classify("hello"); err != nil || k != kindCell || n != 1 {
		t.Fatalf("classify(string) = (%v,%d,%v), want (cell,1,nil)", k, n, err)
	}
}

// ─── Numeric encoding (S1/S2/S3 shape) ────────────────────────────────────

func TestEncodeNumericConcatenatesInstantsAtDimensionsFactorialOffsets(t *testing.T) {
	info := ChannelInfo{Name: "one", Dimensions: []int{1}}
	records := []record{{ts: 0, datum: 0}, {ts: 1, datum: 1}, {ts: 2, datum: 2}}

	v := encodeNumeric("data", info, records)
	arr, ok := v.(matfile.NumericArray)
	if !ok {
		t.Fatalf("encodeNumeric returned %T, want matfile.NumericArray", v)
	}
	want := []float64{0, 1, 2}
	if len(arr.Data) != len(want) {
		t.Fatalf("Data = %v, want %v", arr.Data, want)
	}
	for i := range want {
		if arr.Data[i] != want[i] {
			t.Errorf("Data[%d] = %v, want %v", i, arr.Data[i], want[i])
		}
	}
	if len(arr.Dims) != 2 || arr.Dims[0] != 1 || arr.Dims[1] != 3 {
		t.Errorf("Dims = %v, want [1 3]", arr.Dims)
	}
}

func TestEncodeNumericMatrixChannel(t *testing.T) {
	info := ChannelInfo{Name: "one", Dimensions: []int{2, 3}}
	sample := [][]float64{{1, 2, 3}, {4, 5, 6}}
	records := []record{{ts: 0, datum: sample}}

	v := encodeNumeric("data", info, records)
	arr := v.(matfile.NumericArray)
	if len(arr.Dims) != 3 || arr.Dims[0] != 2 || arr.Dims[1] != 3 || arr.Dims[2] != 1 {
		t.Fatalf("Dims = %v, want [2 3 1]", arr.Dims)
	}
	if len(arr.Data) != 6 {
		t.Fatalf("Data has %d elements, want 6", len(arr.Data))
	}
}

// ─── Struct-like encoding ──────────────────────────────────────────────────

func TestStructEncoderCapturesFieldNamesFromFirstInstant(t *testing.T) {
	enc := newStructEncoder(pose{X: 1, Y: 2, Theta: 3})
	info := ChannelInfo{Name: "pose"}
	records := []record{{ts: 0, datum: pose{X: 1, Y: 2, Theta: 3}}, {ts: 1, datum: pose{X: 4, Y: 5, Theta: 6}}}

	v := enc("data", info, records)
	sa, ok := v.(matfile.StructArray)
	if !ok {
		t.Fatalf("struct encoder returned %T, want matfile.StructArray", v)
	}
	if len(sa.FieldNames) != 3 || len(sa.Elements) != 2 {
		t.Fatalf("StructArray shape = %d fields x %d elements, want 3x2", len(sa.FieldNames), len(sa.Elements))
	}
}
