// Package kv holds the small keyed stores that checkout state is persisted in:
// the Go counterpart of browser local storage, with memory, file and Postgres
// backends that the checkout logic cannot tell apart.
package kv

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kv: key not found")
	// ErrStorageUnavailable wraps failures of the underlying medium.
	ErrStorageUnavailable = errors.New("kv: storage unavailable")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
