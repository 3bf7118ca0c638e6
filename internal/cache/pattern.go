package cache

import (
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// latencyRingSize bounds the per-key ring of recent access latencies.
const latencyRingSize = 10

// accessPattern is the rolling per-key statistic the Manager uses for
// placement, promotion, and rebalancing. It exists independently of
// tier residency: a pattern survives eviction until compaction drops
// it.
type accessPattern struct {
	frequency  int64
	lastAccess time.Time
	latencies  []time.Duration
}

// record notes one access and its observed latency.
func (p *accessPattern) record(now time.Time, latency time.Duration) {
	p.frequency++
	p.lastAccess = now
	p.latencies = append(p.latencies, latency)
	if len(p.latencies) > latencyRingSize {
		p.latencies = p.latencies[1:]
	}
}

// avgLatency is the mean of the retained latency samples.
func (p *accessPattern) avgLatency() time.Duration {
	if len(p.latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range p.latencies {
		total += l
	}
	return total / time.Duration(len(p.latencies))
}

// patternTracker owns the access-pattern table. Like the tiers it is
// serialized by the Manager's lock.
type patternTracker struct {
	patterns map[string]*accessPattern
}

func newPatternTracker() *patternTracker {
	return &patternTracker{patterns: make(map[string]*accessPattern)}
}

// observe records an access for key, creating the pattern on first
// sight.
func (pt *patternTracker) observe(key string, now time.Time, latency time.Duration) {
	p, exists := pt.patterns[key]
	if !exists {
		p = &accessPattern{}
		pt.patterns[key] = p
	}
	p.record(now, latency)
}

// touch ensures a pattern exists for key without counting an access.
// Used by Set, which creates the record but does not inflate the
// access frequency.
func (pt *patternTracker) touch(key string, now time.Time) {
	if _, exists := pt.patterns[key]; !exists {
		pt.patterns[key] = &accessPattern{lastAccess: now}
	}
}

// frequency returns the tracked access frequency for key, zero if
// the key has never been seen.
func (pt *patternTracker) frequency(key string) int64 {
	if p, exists := pt.patterns[key]; exists {
		return p.frequency
	}
	return 0
}

// get returns the pattern for key, nil if untracked.
func (pt *patternTracker) get(key string) *accessPattern {
	return pt.patterns[key]
}

// compact drops patterns for keys that resident reports absent.
// Returns the number of records dropped.
func (pt *patternTracker) compact(resident func(key string) bool) int {
	dropped := 0
	for key := range pt.patterns {
		if !resident(key) {
			delete(pt.patterns, key)
			dropped++
		}
	}
	return dropped
}

// remove drops the pattern for key.
func (pt *patternTracker) remove(key string) {
	delete(pt.patterns, key)
}

// stats returns a snapshot of every tracked pattern.
func (pt *patternTracker) stats() []types.AccessStats {
	out := make([]types.AccessStats, 0, len(pt.patterns))
	for key, p := range pt.patterns {
		out = append(out, types.AccessStats{
			Key:        key,
			Frequency:  p.frequency,
			LastAccess: p.lastAccess,
			AvgLatency: p.avgLatency(),
		})
	}
	return out
}
