package storage

import "errors"

var ErrNotFound = errors.New("item not found in storage")
var ErrAlreadyExists = errors.New("item already exists")

// ErrStaleState is returned by conditional writes whose guard matched no row.
var ErrStaleState = errors.New("item changed concurrently")
