package cache

import (
	"fmt"
	"strings"
	"time"
)

// Policy identifies the eviction policy a tier uses to pick victims.
type Policy string

const (
	// PolicyLRU evicts the entry with the oldest last access.
	PolicyLRU Policy = "lru"
	// PolicyLFU evicts the entry with the smallest access count.
	PolicyLFU Policy = "lfu"
	// PolicyTLRU evicts the entry maximizing idle-time over access
	// count, penalizing entries that are both old and rarely used.
	PolicyTLRU Policy = "tlru"
	// PolicyARC is a simplified approximation of Adaptive Replacement
	// Cache that delegates to LRU. Ghost lists are not implemented;
	// the tag is kept so a full ARC can be substituted later without
	// touching the Manager.
	PolicyARC Policy = "arc"
)

// ParsePolicy parses a policy name
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(s)) {
	case PolicyLRU:
		return PolicyLRU, nil
	case PolicyLFU:
		return PolicyLFU, nil
	case PolicyTLRU:
		return PolicyTLRU, nil
	case PolicyARC:
		return PolicyARC, nil
	default:
		return "", fmt.Errorf("unknown eviction policy: %s", s)
	}
}

// evictsBefore reports whether a is a better eviction victim than b
// under the policy at time now.
func (p Policy) evictsBefore(a, b *Entry, now time.Time) bool {
	switch p {
	case PolicyLFU:
		if a.accessCount != b.accessCount {
			return a.accessCount < b.accessCount
		}
		return a.accessedAt.Before(b.accessedAt)
	case PolicyTLRU:
		return p.tlruScore(a, now) > p.tlruScore(b, now)
	default: // PolicyLRU and PolicyARC
		return a.accessedAt.Before(b.accessedAt)
	}
}

// tlruScore is the recency-over-frequency eviction score.
func (p Policy) tlruScore(e *Entry, now time.Time) float64 {
	count := e.accessCount
	if count < 1 {
		count = 1
	}
	return now.Sub(e.accessedAt).Seconds() / float64(count)
}
