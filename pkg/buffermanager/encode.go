// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements encode.go: classification of pushed values into one
// of three MATLAB representations, and the per-channel encoder closure
// bound on first push, performing a one-time dispatch keyed on the first
// sample's runtime type.
package buffermanager

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/robometry/robometry-go/pkg/buffermanager/matfile"
)

// elementKind is the three-way classification of a pushed value:
// numeric-concatenable, struct-like, or opaque (falls through to cell).
type elementKind int

const (
	kindUnset elementKind = iota
	kindNumeric
	kindStruct
	kindCell
)

func (k elementKind) String() string {
	switch k {
	case kindNumeric:
		return "numeric"
	case kindStruct:
		return "struct"
	case kindCell:
		return "cell"
	default:
		return "unset"
	}
}

// classify determines a value's element kind and its element count, which
// the caller compares against the channel's dimensions_factorial. Numeric
// scalars and (possibly nested) slices/arrays of numeric primitives are
// numeric-concatenable; structs and string-keyed maps are struct-like,
// counted by field count; everything else is opaque (cell), counted as one.
func classify(value any) (elementKind, int, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return kindUnset, 0, fmt.Errorf("nil value has no shape")
	}
	if n, ok := numericLen(rv); ok {
		return kindNumeric, n, nil
	}
	switch rv.Kind() {
	case reflect.Struct:
		return kindStruct, rv.NumField(), nil
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return kindStruct, rv.Len(), nil
		}
	}
	return kindCell, 1, nil
}

// numericLen recursively counts the scalar numeric leaves of rv, returning
// ok=false if rv (or any nested element) is not a numeric primitive or a
// slice/array of such.
func numericLen(rv reflect.Value) (int, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1, true
	case reflect.Slice, reflect.Array:
		total := 0
		for i := 0; i < rv.Len(); i++ {
			n, ok := numericLen(rv.Index(i))
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true
	default:
		return 0, false
	}
}

func flattenNumeric(rv reflect.Value, out *[]float64) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			flattenNumeric(rv.Index(i), out)
		}
	default:
		*out = append(*out, toFloat64(rv))
	}
}

func toFloat64(rv reflect.Value) float64 {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	default:
		return rv.Float()
	}
}

// encodeFunc concatenates the records currently drained from one channel
// into a single matfile.Variable, bound at the channel's first push.
type encodeFunc func(name string, info ChannelInfo, records []record) matfile.Variable

// newEncodeFunc returns the encoder closure for kind, capturing whatever
// shape information the first sample provides (struct field names for
// kindStruct).
func newEncodeFunc(kind elementKind, sample any) encodeFunc {
	switch kind {
	case kindNumeric:
		return encodeNumeric
	case kindStruct:
		return newStructEncoder(sample)
	default:
		return encodeCellOpaque
	}
}

// encodeNumeric builds a multi-dimensional matfile.NumericArray of shape
// dims ++ [num_instants], laying each instant's flattened elements
// contiguously: instant i starts at offset dimensions_factorial*i.
func encodeNumeric(name string, info ChannelInfo, records []record) matfile.Variable {
	k := info.dimensionsFactorial()
	data := make([]float64, 0, k*len(records))
	for _, r := range records {
		flattenNumeric(reflect.ValueOf(r.datum), &data)
	}
	dims := append(append([]int(nil), info.Dimensions...), len(records))
	return matfile.NumericArray{Name: name, Dims: dims, Data: data}
}

// newStructEncoder captures the field name set from sample (the first
// pushed instant) and returns an encoder that builds a matfile.StructArray,
// requiring every later instant to expose the same fields.
func newStructEncoder(sample any) encodeFunc {
	names := structFieldNames(sample)
	return func(name string, info ChannelInfo, records []record) matfile.Variable {
		elements := make([][]matfile.Variable, len(records))
		for i, r := range records {
			elements[i] = structFieldValues(r.datum, names)
		}
		return matfile.StructArray{Name: name, FieldNames: names, Elements: elements}
	}
}

func structFieldNames(value any) []string {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Struct:
		names := make([]string, rv.NumField())
		for i := range names {
			names[i] = rv.Type().Field(i).Name
		}
		return names
	case reflect.Map:
		names := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			names = append(names, k.String())
		}
		sort.Strings(names)
		return names
	default:
		return nil
	}
}

func structFieldValues(value any, names []string) []matfile.Variable {
	rv := reflect.ValueOf(value)
	out := make([]matfile.Variable, len(names))
	for i, name := range names {
		var fv reflect.Value
		switch rv.Kind() {
		case reflect.Struct:
			fv = rv.FieldByName(name)
		case reflect.Map:
			fv = rv.MapIndex(reflect.ValueOf(name))
		}
		out[i] = scalarVariable(name, fv)
	}
	return out
}

// scalarVariable converts one struct/map field value into a MATLAB leaf
// variable: a 1xN numeric array for numeric fields (1x1 for a scalar), a
// string variable for strings, an empty numeric array for an unset field,
// and a fmt "%v" string variable for any other kind.
func scalarVariable(name string, fv reflect.Value) matfile.Variable {
	if !fv.IsValid() {
		return matfile.NumericArray{Name: name, Dims: []int{0, 0}}
	}
	if fv.Kind() == reflect.Interface {
		fv = fv.Elem()
	}
	if n, ok := numericLen(fv); ok && n >= 0 {
		var data []float64
		flattenNumeric(fv, &data)
		return matfile.NumericArray{Name: name, Dims: []int{1, len(data)}, Data: data}
	}
	if fv.Kind() == reflect.String {
		return matfile.StringVar{Name: name, Value: fv.String()}
	}
	return matfile.StringVar{Name: name, Value: fmt.Sprintf("%v", fv.Interface())}
}

// encodeCellOpaque stores each instant of an otherwise-unclassifiable
// value as one cell, rendered through fmt.Sprintf since no structural
// MATLAB representation applies.
func encodeCellOpaque(name string, info ChannelInfo, records []record) matfile.Variable {
	cells := make([]matfile.Variable, len(records))
	for i, r := range records {
		cells[i] = matfile.StringVar{Name: "", Value: fmt.Sprintf("%v", r.datum)}
	}
	return matfile.CellArray{Name: name, Cells: cells}
}
