package storage

import "errors"

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// ErrClosed is returned by a backend used after Close.
var ErrClosed = errors.New("storage closed")
