// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements config.go: BufferConfig, the in-memory configuration
// struct — a single struct with JSON tags matching the on-disk schema
// one-to-one.
package buffermanager

import "fmt"

// MatFileVersion selects the on-disk MAT container version.
type MatFileVersion int

const (
	MatFileUndefined MatFileVersion = iota
	MatFileV4
	MatFileV5
	MatFileV73
	MatFileDefault
)

var matFileVersionNames = map[MatFileVersion]string{
	MatFileUndefined: "undefined",
	MatFileV4:        "v4",
	MatFileV5:        "v5",
	MatFileV73:       "v7_3",
	MatFileDefault:   "default",
}

var matFileVersionValues = map[string]MatFileVersion{
	"undefined": MatFileUndefined,
	"v4":        MatFileV4,
	"v5":        MatFileV5,
	"v7_3":      MatFileV73,
	"default":   MatFileDefault,
}

func (v MatFileVersion) String() string {
	if s, ok := matFileVersionNames[v]; ok {
		return s
	}
	return "undefined"
}

// MarshalJSON renders MatFileVersion as one of its fixed string tags.
func (v MatFileVersion) MarshalJSON() ([]byte, error) {
	return []byte(`"` + v.String() + `"`), nil
}

// UnmarshalJSON parses one of MatFileVersion's fixed string tags.
func (v *MatFileVersion) UnmarshalJSON(data []byte) error {
	s, err := unquoteJSONString(data)
	if err != nil {
		return err
	}
	val, ok := matFileVersionValues[s]
	if !ok {
		return fmt.Errorf("[BUFFERMGR]> invalid mat_file_version %q", s)
	}
	*v = val
	return nil
}

// unquoteJSONString strips the surrounding quotes from a JSON string
// literal without pulling in encoding/json just for this.
func unquoteJSONString(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("[BUFFERMGR]> expected JSON string, got %s", data)
	}
	return string(data[1 : len(data)-1]), nil
}

// SaveReason tells a registered SaveCallback why a flush happened.
type SaveReason int

const (
	SaveReasonPeriodic SaveReason = iota
	SaveReasonLastCall
)

func (r SaveReason) String() string {
	if r == SaveReasonLastCall {
		return "last_call"
	}
	return "periodic"
}

// SaveCallback is invoked after every successful periodic flush and after
// the final flush in Manager.Close; a direct call to Manager.Save does not
// invoke it. Its bool return is logged but does not affect the manager.
type SaveCallback func(filePath string, reason SaveReason) bool

// ClockFunc returns the current time as seconds since epoch; injectable via
// Manager.SetClock.
type ClockFunc func() float64

// BufferConfig is the full configuration surface of the buffer manager.
// JSON field names match exactly so Load/Save round-trip without
// translation.
type BufferConfig struct {
	FileName          string         `json:"filename"`
	Path              string         `json:"path,omitempty"`
	NSamples          int            `json:"n_samples"`
	SavePeriod        float64        `json:"save_period"`
	DataThreshold     int            `json:"data_threshold"`
	AutoSave          bool           `json:"auto_save"`
	SavePeriodically  bool           `json:"save_periodically"`
	Channels          []ChannelInfo  `json:"channels,omitempty"`
	EnableCompression bool           `json:"enable_compression"`
	FileIndexing      string         `json:"file_indexing"`
	MatFileVersion    MatFileVersion `json:"mat_file_version"`
	RobotName         string         `json:"yarp_robot_name,omitempty"`
	DescriptionList   []string       `json:"description_list,omitempty"`
}

// DefaultBufferConfig returns the zero-value-safe defaults used by New()
// before any Configure call.
func DefaultBufferConfig() BufferConfig {
	return BufferConfig{
		FileIndexing:   "time_since_epoch",
		MatFileVersion: MatFileDefault,
	}
}

// clone returns a deep-enough copy of c for GetConfig, so callers cannot
// mutate the manager's internal config through the returned slices.
func (c BufferConfig) clone() BufferConfig {
	out := c
	out.Channels = append([]ChannelInfo(nil), c.Channels...)
	out.DescriptionList = append([]string(nil), c.DescriptionList...)
	return out
}
