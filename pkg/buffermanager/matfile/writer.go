// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package matfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/klauspost/compress/zlib"
)

const (
	miInt8       = 1
	miUint32     = 6
	miInt32      = 5
	miDouble     = 9
	miMatrix     = 14
	miCompressed = 15

	mxCellClass   = 1
	mxStructClass = 2
	mxCharClass   = 4
	mxDoubleClass = 6
)

// Writer emits a single .mat file containing the top-level variables
// passed to Write, in call order.
type Writer struct {
	f          *os.File
	compressed bool
}

// Create opens path for writing and emits the 128-byte MAT5 header. The
// caller must call Close. It refuses to overwrite an existing file,
// returning an error rather than silently truncating it.
func Create(path string, compressed bool) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("matfile: create %s: %w", path, err)
	}
	w := &Writer{f: f, compressed: compressed}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeHeader() error {
	var hdr [128]byte
	text := fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: robometry-go, Created on: %s", time.Now().UTC().Format(time.RFC3339))
	copy(hdr[:116], text)
	// Subsystem data offset (bytes 116-123) left zero (unused).
	binary.LittleEndian.PutUint16(hdr[124:126], 0x0100) // version
	hdr[126] = 'I'
	hdr[127] = 'M' // endian indicator: little-endian "IM" byte order
	_, err := w.f.Write(hdr[:])
	return err
}

// Write emits one top-level variable as a data element, optionally
// zlib-compressed per-element when the Writer was created with
// compressed=true (mirroring enable_compression applying per variable,
// matching matio's per-variable compression granularity).
func (w *Writer) Write(v Variable) error {
	var body bytes.Buffer
	if err := encodeMatrix(&body, v); err != nil {
		return err
	}

	if !w.compressed {
		_, err := w.f.Write(body.Bytes())
		return err
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body.Bytes()); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if err := writeTag(w.f, miCompressed, compressed.Len()); err != nil {
		return err
	}
	_, err := w.f.Write(compressed.Bytes())
	if pad := padLen(compressed.Len()); pad > 0 {
		if _, err := w.f.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	return err
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

func padLen(n int) int {
	if r := n % 8; r != 0 {
		return 8 - r
	}
	return 0
}

func writeTag(w io.Writer, dataType, nbytes int) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(dataType))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(nbytes))
	_, err := w.Write(buf[:])
	return err
}

// writeElement writes a complete tag+payload+padding data element.
func writeElement(w io.Writer, dataType int, payload []byte) error {
	if err := writeTag(w, dataType, len(payload)); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if pad := padLen(len(payload)); pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return err
		}
	}
	return nil
}

func int32Payload(values ...int32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], uint32(v))
	}
	return buf
}

// encodeMatrix writes one full miMATRIX data element (tag + subelements)
// for v, dispatching on its concrete type.
func encodeMatrix(w io.Writer, v Variable) error {
	var body bytes.Buffer
	switch t := v.(type) {
	case NumericArray:
		if err := writeArrayFlags(&body, mxDoubleClass, 0); err != nil {
			return err
		}
		if err := writeDimensions(&body, t.Dims); err != nil {
			return err
		}
		if err := writeName(&body, t.Name); err != nil {
			return err
		}
		payload := make([]byte, 8*len(t.Data))
		for i, f := range t.Data {
			binary.LittleEndian.PutUint64(payload[i*8:i*8+8], math.Float64bits(f))
		}
		if err := writeElement(&body, miDouble, payload); err != nil {
			return err
		}
	case StringVar:
		if err := writeArrayFlags(&body, mxCharClass, 0); err != nil {
			return err
		}
		if err := writeDimensions(&body, []int{1, len(t.Value)}); err != nil {
			return err
		}
		if err := writeName(&body, t.Name); err != nil {
			return err
		}
		// miUTF8 (type 16) keeps this simple and matio-compatible for
		// ASCII/UTF-8 description and robot-name strings.
		if err := writeElement(&body, 16, []byte(t.Value)); err != nil {
			return err
		}
	case StructVar:
		if err := encodeStruct(&body, t.Name, structFieldNames(t.Fields), [][]Variable{fieldValues(t.Fields)}); err != nil {
			return err
		}
	case StructArray:
		if err := encodeStruct(&body, t.Name, t.FieldNames, t.Elements); err != nil {
			return err
		}
	case CellArray:
		if err := encodeCell(&body, t.Name, t.Cells); err != nil {
			return err
		}
	default:
		return fmt.Errorf("matfile: unsupported variable type %T", v)
	}
	return writeElement(w, miMatrix, body.Bytes())
}

func structFieldNames(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Name
	}
	return out
}

func fieldValues(fields []Field) []Variable {
	out := make([]Variable, len(fields))
	for i, f := range fields {
		out[i] = f.Value
	}
	return out
}

func writeArrayFlags(w io.Writer, class byte, flags byte) error {
	payload := make([]byte, 8)
	payload[0] = class
	payload[1] = flags
	return writeElement(w, miUint32, payload)
}

func writeDimensions(w io.Writer, dims []int) error {
	vals := make([]int32, len(dims))
	for i, d := range dims {
		vals[i] = int32(d)
	}
	return writeElement(w, miInt32, int32Payload(vals...))
}

func writeName(w io.Writer, name string) error {
	return writeElement(w, miInt8, []byte(name))
}

func encodeStruct(w io.Writer, name string, fieldNames []string, elements [][]Variable) error {
	if err := writeArrayFlags(w, mxStructClass, 0); err != nil {
		return err
	}
	if err := writeDimensions(w, []int{1, len(elements)}); err != nil {
		return err
	}
	if err := writeName(w, name); err != nil {
		return err
	}
	maxLen := 0
	for _, n := range fieldNames {
		if len(n)+1 > maxLen {
			maxLen = len(n) + 1
		}
	}
	if maxLen == 0 {
		maxLen = 1
	}
	if err := writeElement(w, miInt32, int32Payload(int32(maxLen))); err != nil {
		return err
	}
	namesBuf := make([]byte, maxLen*len(fieldNames))
	for i, n := range fieldNames {
		copy(namesBuf[i*maxLen:], n)
	}
	if err := writeElement(w, miInt8, namesBuf); err != nil {
		return err
	}
	for _, row := range elements {
		for _, field := range row {
			if err := encodeMatrix(w, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func encodeCell(w io.Writer, name string, cells []Variable) error {
	if err := writeArrayFlags(w, mxCellClass, 0); err != nil {
		return err
	}
	if err := writeDimensions(w, []int{1, len(cells)}); err != nil {
		return err
	}
	if err := writeName(w, name); err != nil {
		return err
	}
	for _, c := range cells {
		if err := encodeMatrix(w, c); err != nil {
			return err
		}
	}
	return nil
}
