package model

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by typed reads when the key disappeared after it was scanned
var ErrKeyNotFound = errors.New("key not found")

// KeyIterator walks a keyspace lazily, one SCAN page at a time
type KeyIterator interface {
	Next(ctx context.Context) bool
	Val() string
	Err() error
}
