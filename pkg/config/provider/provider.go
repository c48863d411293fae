// Package provider supplies raw configuration bytes from a backing source.
package provider

import "context"

// Type identifies a provider implementation.
type Type string

const (
	TypeFile Type = "file"
)

// Provider loads raw configuration bytes and optionally watches for changes.
type Provider interface {
	Type() Type

	Load(ctx context.Context) ([]byte, error)

	// Watch returns a channel that receives a value when the source changes.
	Watch(ctx context.Context) (<-chan struct{}, error)

	Close() error
}
