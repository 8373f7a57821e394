// Clipstream - Zoom Clips Sync and Knowledge Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipstream

package zoom

import (
	"errors"
	"fmt"
)

// ErrAuth marks token acquisition failures: bad credentials, a non-2xx token
// endpoint response, or an empty access token.
var ErrAuth = errors.New("zoom auth error")

// ErrFetch marks clip retrieval failures after a token was acquired.
var ErrFetch = errors.New("zoom fetch error")

// ErrPageLimit is returned when pagination exceeds the configured page cap
// without the API reporting an empty next_page_token. It satisfies
// errors.Is(err, ErrFetch) so callers that only classify fetch failures keep
// working.
var ErrPageLimit = fmt.Errorf("%w: page limit exceeded", ErrFetch)
