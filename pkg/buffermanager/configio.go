// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements configio.go: a JSON <-> BufferConfig round trip
// validated against configSchema, using internal/config/validate.go's
// compile-validate-decode pipeline.
package buffermanager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/robometry/robometry-go/internal/config"
)

// LoadConfig reads and validates a BufferConfig from a JSON file at path.
func LoadConfig(path string) (BufferConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BufferConfig{}, fmt.Errorf("[BUFFERMGR]> load config %s: %w", path, err)
	}
	return DecodeConfig(raw)
}

// DecodeConfig validates raw against the embedded schema, then decodes it
// into a BufferConfig, rejecting unknown fields.
func DecodeConfig(raw []byte) (BufferConfig, error) {
	if err := config.Validate(configSchema, raw); err != nil {
		return BufferConfig{}, fmt.Errorf("[BUFFERMGR]> invalid configuration: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	cfg := DefaultBufferConfig()
	if err := dec.Decode(&cfg); err != nil {
		return BufferConfig{}, fmt.Errorf("[BUFFERMGR]> decode configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as indented JSON to path, overwriting any existing
// file (this is a configuration artifact, not telemetry output, so the
// output file's collision policy does not apply here).
func SaveConfig(cfg BufferConfig, path string) error {
	raw, err := EncodeConfig(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("[BUFFERMGR]> save config %s: %w", path, err)
	}
	return nil
}

// EncodeConfig renders cfg as indented JSON matching the in-memory field
// names one-to-one.
func EncodeConfig(cfg BufferConfig) ([]byte, error) {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("[BUFFERMGR]> encode configuration: %w", err)
	}
	return raw, nil
}
