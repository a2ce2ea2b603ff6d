package domain

import "errors"

// ErrNotFound is returned by stores and caches when no record exists for
// the requested key.
var ErrNotFound = errors.New("not found")
