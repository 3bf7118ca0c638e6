package types

import "time"

// CacheStats represents cache performance statistics for a single
// tier or for the cache as a whole.
type CacheStats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Size        int64   `json:"size"`
	Capacity    int64   `json:"capacity"`
	EntryCount  int     `json:"entry_count"`
	HitRate     float64 `json:"hit_rate"`
	Utilization float64 `json:"utilization"`
}

// Priority controls initial tier placement and promotion eligibility.
// The zero value is "unspecified"; the cache treats it as medium.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the string representation of the priority
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// PressureLevel classifies system memory scarcity. Delivered by the
// memory monitor on change and consulted by the adaptive-sizing loop.
type PressureLevel int

const (
	PressureLow PressureLevel = iota
	PressureMedium
	PressureHigh
	PressureCritical
)

// String returns the string representation of the pressure level
func (p PressureLevel) String() string {
	switch p {
	case PressureLow:
		return "low"
	case PressureMedium:
		return "medium"
	case PressureHigh:
		return "high"
	case PressureCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MemoryStats is a point-in-time view of process heap usage as
// reported by the memory monitor.
type MemoryStats struct {
	Timestamp    time.Time `json:"timestamp"`
	HeapAlloc    uint64    `json:"heap_alloc"`
	HeapSys      uint64    `json:"heap_sys"`
	HeapFree     uint64    `json:"heap_free"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
}

// AccessStats summarizes the tracked access pattern for one key,
// independent of which tier (if any) currently holds it.
type AccessStats struct {
	Key        string        `json:"key"`
	Frequency  int64         `json:"frequency"`
	LastAccess time.Time     `json:"last_access"`
	AvgLatency time.Duration `json:"avg_latency"`
}
