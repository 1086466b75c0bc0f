// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package matfile implements a minimal MATLAB level-5 (.mat) file writer:
// just enough of the container format to emit the numeric arrays, struct
// arrays, cell arrays and strings that buffermanager's serializer produces.
// The container layout follows the public MAT-File Format documentation
// directly, the same layout tools like matio and matio-cpp implement.
//
// Only writing is implemented; there is no reader, and no support for
// sparse matrices, N-D cell nesting beyond what buffermanager needs, or
// any MAT version but 5 (v7.3 and v4 are accepted as configuration values
// upstream but downgraded to a v5 container with a logged notice — see
// DESIGN.md).
package matfile

// Variable is the sum type of MATLAB values this writer can emit. Each
// concrete type below implements it.
type Variable interface {
	variableName() string
	isVariable()
}

// NumericArray is a dense numeric array stored column-major, matching
// MATLAB's native element order. Dims gives the shape; Data is the
// flattened column-major buffer of float64 values (MATLAB's default
// double class covers every numeric channel type this library supports).
type NumericArray struct {
	Name string
	Dims []int
	Data []float64
}

func (n NumericArray) variableName() string { return n.Name }
func (NumericArray) isVariable()            {}

// StringVar is a single MATLAB character-array (row-vector string).
type StringVar struct {
	Name  string
	Value string
}

func (s StringVar) variableName() string { return s.Name }
func (StringVar) isVariable()            {}

// StructVar is one MATLAB struct (1x1 struct array), with fields in
// insertion order so field order in the file matches channel-tree
// traversal order.
type StructVar struct {
	Name   string
	Fields []Field
}

// Field is one named member of a StructVar.
type Field struct {
	Name  string
	Value Variable
}

func (s StructVar) variableName() string { return s.Name }
func (StructVar) isVariable()            {}

// StructArray is a 1xN MATLAB struct array. Every element must declare the
// same field names, in the same order: the field set is taken from the
// first instant, and every subsequent instant must match it.
type StructArray struct {
	Name        string
	FieldNames  []string
	Elements    [][]Variable // Elements[i][j] is field FieldNames[j] of element i
}

func (s StructArray) variableName() string { return s.Name }
func (StructArray) isVariable()            {}

// CellArray is a 1xN MATLAB cell array holding arbitrary, possibly
// heterogeneous, variables.
type CellArray struct {
	Name  string
	Cells []Variable
}

func (c CellArray) variableName() string { return c.Name }
func (CellArray) isVariable()            {}
