package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KeyValueStore is durable string-keyed storage for the serialized cart
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Closer is implemented by backends holding a connection
type Closer interface {
	Close() error
}
