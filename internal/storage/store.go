package storage

import (
	"context"
)

// Store persists opaque serialized slots under string keys.
// Get returns domain.ErrNotFound when the key has never been written.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
