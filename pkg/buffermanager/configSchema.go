// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

const configSchema = `{
  "type": "object",
  "description": "Configuration for a robot-telemetry buffer manager instance.",
  "properties": {
    "filename": {
      "description": "Base name of output files; required when flushing.",
      "type": "string"
    },
    "path": {
      "description": "Directory to write output files into. Created once at configure-time if missing.",
      "type": "string"
    },
    "n_samples": {
      "description": "Ring-buffer capacity applied to every channel.",
      "type": "integer",
      "minimum": 0
    },
    "save_period": {
      "description": "Seconds between background flushes.",
      "type": "number",
      "minimum": 0
    },
    "data_threshold": {
      "description": "Per-channel minimum sample count required to include a channel in a non-forced flush.",
      "type": "integer",
      "minimum": 0
    },
    "auto_save": {
      "description": "Perform one final flush at teardown.",
      "type": "boolean"
    },
    "save_periodically": {
      "description": "Start the background flusher on configure.",
      "type": "boolean"
    },
    "channels": {
      "description": "Channel metadata to register at configure time.",
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": { "type": "string" },
          "dimensions": {
            "type": "array",
            "items": { "type": "integer", "minimum": 1 }
          },
          "type_name": { "type": "string" },
          "elements_names": {
            "type": "array",
            "items": { "type": "string" }
          },
          "units_of_measure": {
            "type": "array",
            "items": { "type": "string" }
          }
        },
        "required": ["name", "dimensions"]
      }
    },
    "enable_compression": {
      "description": "Whether the MAT writer uses zlib compression.",
      "type": "boolean"
    },
    "file_indexing": {
      "description": "Either 'time_since_epoch' or a strftime-style pattern evaluated against local time.",
      "type": "string"
    },
    "mat_file_version": {
      "description": "On-disk MAT container version.",
      "type": "string",
      "enum": ["undefined", "v4", "v5", "v7_3", "default"]
    },
    "yarp_robot_name": {
      "description": "String stamped into each output file.",
      "type": "string"
    },
    "description_list": {
      "description": "Human-readable description strings stamped into each file as a cell array.",
      "type": "array",
      "items": { "type": "string" }
    }
  },
  "required": ["filename"]
}`
