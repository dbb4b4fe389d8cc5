package domain

import "errors"

// ErrStoreUnavailable marks failures of a backing store (connection loss,
// timeout, unexpected driver error). Callers surface it as an internal error.
var ErrStoreUnavailable = errors.New("store unavailable")
