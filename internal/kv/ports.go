// Package kv defines the durable key-value medium the persistence layer
// writes store state to.
package kv

import "context"

// Store is a single namespace of string keys.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes every entry or none of them.
	Put(ctx context.Context, entries map[string]string) error
	// Clear removes every key of the namespace.
	Clear(ctx context.Context) error
	Close() error
}
