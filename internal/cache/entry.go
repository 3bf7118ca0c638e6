package cache

import (
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// Entry is a single cached value together with the bookkeeping the
// tiers and policies need. The value is owned by the entry and moves
// with it between tiers; it is never duplicated across tiers.
type Entry struct {
	key         string
	value       interface{}
	size        int64
	createdAt   time.Time
	accessedAt  time.Time
	accessCount int64
	ttl         time.Duration
	priority    types.Priority

	// cost is the caller-supplied recreation cost hint. It is recorded
	// on every entry but no built-in eviction comparator consults it.
	cost float64
}

// expired reports whether the entry's TTL has elapsed at now.
func (e *Entry) expired(now time.Time) bool {
	if e.ttl <= 0 {
		return false
	}
	return now.Sub(e.createdAt) > e.ttl
}

// touch updates the access bookkeeping for a hit.
func (e *Entry) touch(now time.Time) {
	e.accessedAt = now
	e.accessCount++
}

// accessRate is the entry's accesses per second since insertion,
// measured over whole elapsed seconds. An entry younger than one
// second has no meaningful rate yet and reports zero.
func (e *Entry) accessRate(now time.Time) float64 {
	age := int64(now.Sub(e.createdAt).Seconds())
	if age <= 0 {
		return 0
	}
	return float64(e.accessCount) / float64(age)
}
