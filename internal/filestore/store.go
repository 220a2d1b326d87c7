// Package filestore provides the file store collaborator: read, write and
// delete primitives over pluggable backends (local disk, MinIO).
package filestore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the named file does not exist. Backends
// translate their own absence signals to this sentinel.
var ErrNotFound = errors.New("file not found")

// Store is the file store contract. Names are slash-separated paths
// relative to the store root; backends reject traversal outside it.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}
