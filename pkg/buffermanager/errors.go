// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of robometry-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package buffermanager

import "errors"

// Sentinel errors returned by the public API. Library code never panics
// except the documented debug-fatal path of MustNewFromConfig.
var (
	// ErrUnknownChannel is returned by PushWithTimestamp when the channel
	// path was never registered. This is treated as a programming error:
	// callers that cannot guarantee registration should check with
	// HasChannel first.
	ErrUnknownChannel = errors.New("[BUFFERMGR]> unknown channel")

	// ErrInvalidShape is returned by AddChannel when dimensions is empty or
	// contains a non-positive entry.
	ErrInvalidShape = errors.New("[BUFFERMGR]> invalid channel shape")

	// ErrTypeMismatch is returned by PushWithTimestamp when a value's
	// element type differs from the channel's already-bound type_tag.
	ErrTypeMismatch = errors.New("[BUFFERMGR]> push type mismatch")

	// ErrShapeMismatch is returned by PushWithTimestamp when a value's
	// element count differs from the channel's dimensions_factorial.
	ErrShapeMismatch = errors.New("[BUFFERMGR]> push shape mismatch")

	// ErrEmptyFilename is returned by Configure when config.FileName is
	// empty.
	ErrEmptyFilename = errors.New("[BUFFERMGR]> configuration requires a non-empty filename")

	// ErrNothingToWrite is returned by Save when no channel is eligible for
	// the flush; the periodic flusher treats this as a no-op, not a failure.
	ErrNothingToWrite = errors.New("[BUFFERMGR]> nothing to write")

	// ErrFileExists is returned by Save when the computed output path
	// already exists on disk. With time_since_epoch indexing it is returned
	// only if the path retried with a random suffix also exists.
	ErrFileExists = errors.New("[BUFFERMGR]> output file already exists")
)
