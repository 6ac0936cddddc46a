// Package store provides the small key-value contract the portfolio
// ledger persists through: Get/Set of opaque documents under well-known
// keys. Redis, file, and in-memory backends satisfy the same interface.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a minimal persistent key-value interface.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
