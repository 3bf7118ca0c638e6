package types

import "context"

// SizeEstimator approximates the in-memory byte size of a value.
// Implementations may fail; the cache falls back to a fixed
// conservative size on error.
type SizeEstimator interface {
	Estimate(value interface{}) (int64, error)
}

// Loader produces a value for a key during cache warming. A per-key
// failure skips that key only.
type Loader interface {
	Load(ctx context.Context, key string) (interface{}, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, key string) (interface{}, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, key string) (interface{}, error) {
	return f(ctx, key)
}

// MemoryWatcher exposes current heap usage and delivers pressure
// classifications on change.
type MemoryWatcher interface {
	Stats() MemoryStats
	Pressure() PressureLevel
	Subscribe() <-chan PressureLevel
}
