// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package database

import (
	"errors"
)

// ErrStore marks persistence failures. All errors returned by this package
// satisfy errors.Is(err, ErrStore) so callers can classify them without
// depending on driver error types.
var ErrStore = errors.New("store error")
