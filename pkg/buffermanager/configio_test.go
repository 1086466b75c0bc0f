// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ─── Round-trip config ─────────────────────────────────────────────────────

func TestConfigRoundTrip(t *testing.T) {
	cfg := BufferConfig{
		FileName:          "robot",
		Path:              "/tmp/robot-logs",
		NSamples:          500,
		SavePeriod:        2.5,
		DataThreshold:     50,
		AutoSave:          true,
		SavePeriodically:  true,
		EnableCompression: true,
		FileIndexing:      "time_since_epoch",
		MatFileVersion:    MatFileV5,
		RobotName:         "icub",
		DescriptionList:   []string{"session A", "calibration run"},
		Channels: []ChannelInfo{
			{Name: "arm::shoulder", Dimensions: []int{3}, ElementsNames: []string{"x", "y", "z"}, UnitsOfMeasure: []string{"deg"}},
		},
	}

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, cfg.FileName, loaded.FileName)
	require.Equal(t, cfg.Path, loaded.Path)
	require.Equal(t, cfg.NSamples, loaded.NSamples)
	require.Equal(t, cfg.SavePeriod, loaded.SavePeriod)
	require.Equal(t, cfg.DataThreshold, loaded.DataThreshold)
	require.Equal(t, cfg.AutoSave, loaded.AutoSave)
	require.Equal(t, cfg.SavePeriodically, loaded.SavePeriodically)
	require.Equal(t, cfg.EnableCompression, loaded.EnableCompression)
	require.Equal(t, cfg.FileIndexing, loaded.FileIndexing)
	require.Equal(t, cfg.MatFileVersion, loaded.MatFileVersion)
	require.Equal(t, cfg.RobotName, loaded.RobotName)
	require.Equal(t, cfg.DescriptionList, loaded.DescriptionList)
	require.Equal(t, cfg.Channels, loaded.Channels)
}

func TestConfigRejectsUnknownFields(t *testing.T) {
	raw := []byte(`{"filename":"x","bogus_field":true}`)
	_, err := DecodeConfig(raw)
	require.Error(t, err)
}

func TestConfigRejectsMissingFilename(t *testing.T) {
	raw := []byte(`{"n_samples":10}`)
	_, err := DecodeConfig(raw)
	require.Error(t, err)
}

func TestConfigMatFileVersionStringTags(t *testing.T) {
	for _, tc := range []struct {
		v    MatFileVersion
		want string
	}{
		{MatFileUndefined, `"undefined"`},
		{MatFileV4, `"v4"`},
		{MatFileV5, `"v5"`},
		{MatFileV73, `"v7_3"`},
		{MatFileDefault, `"default"`},
	} {
		got, err := tc.v.MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, tc.want, string(got))
	}
}
