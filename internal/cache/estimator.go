package cache

import (
	"encoding/json"
	"fmt"
	"unsafe"
)

// fallbackEntrySize is the conservative size assumed when estimation
// fails or no estimator is configured.
const fallbackEntrySize = 1024

// DefaultSizeEstimator approximates the in-memory size of common
// value shapes: byte slices and strings by length, Stringers by their
// rendered length, and everything else by its JSON encoding.
type DefaultSizeEstimator struct{}

// Estimate implements types.SizeEstimator.
func (DefaultSizeEstimator) Estimate(value interface{}) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, fmt.Errorf("cannot estimate size of nil value")
	case []byte:
		return int64(len(v)), nil
	case string:
		return int64(len(v)), nil
	case bool, int8, uint8:
		return 1, nil
	case int16, uint16:
		return 2, nil
	case int32, uint32, float32:
		return 4, nil
	case int, uint, int64, uint64, float64:
		return int64(unsafe.Sizeof(int64(0))), nil
	case fmt.Stringer:
		return int64(len(v.String())), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return 0, fmt.Errorf("size estimation failed: %w", err)
		}
		return int64(len(data)), nil
	}
}
