// Package snapshot persists the serialized aggregate to a single named
// slot. Implementations deal in raw bytes; (de)serialization stays with
// the caller.
package snapshot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the slot has never been written.
var ErrNotFound = errors.New("snapshot not found")

type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}
