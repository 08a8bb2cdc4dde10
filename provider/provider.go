package provider

import "context"

// Provider is the base interface of every pluggable backend.
type Provider interface {
	// Name returns the registered name.
	Name() string
	// IsAvailable reports whether the backend can serve requests now.
	IsAvailable(ctx context.Context) bool
}

// Factory creates a provider from deps.
type Factory[T Provider, D any] func(deps D) (T, error)
