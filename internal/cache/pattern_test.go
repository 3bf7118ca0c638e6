package cache

import (
	"testing"
	"time"
)

func TestPatternTracker_Observe(t *testing.T) {
	pt := newPatternTracker()
	now := time.Now()

	pt.observe("key", now, 5*time.Millisecond)
	pt.observe("key", now.Add(time.Second), 15*time.Millisecond)

	if got := pt.frequency("key"); got != 2 {
		t.Errorf("expected frequency 2, got %d", got)
	}
	if got := pt.frequency("unknown"); got != 0 {
		t.Errorf("expected frequency 0 for unknown key, got %d", got)
	}

	p := pt.get("key")
	if p == nil {
		t.Fatal("expected pattern for observed key")
	}
	if got := p.avgLatency(); got != 10*time.Millisecond {
		t.Errorf("expected average latency 10ms, got %v", got)
	}
}

// TestPatternTracker_Touch verifies that touch creates the record
// without counting an access.
func TestPatternTracker_Touch(t *testing.T) {
	pt := newPatternTracker()
	now := time.Now()

	pt.touch("key", now)
	if pt.get("key") == nil {
		t.Fatal("expected pattern after touch")
	}
	if got := pt.frequency("key"); got != 0 {
		t.Errorf("touch must not count an access, got frequency %d", got)
	}

	// Touching an observed key must not reset its history.
	pt.observe("key", now, time.Millisecond)
	pt.touch("key", now.Add(time.Second))
	if got := pt.frequency("key"); got != 1 {
		t.Errorf("expected frequency 1 after observe, got %d", got)
	}
}

func TestPatternTracker_LatencyRingBounded(t *testing.T) {
	pt := newPatternTracker()
	now := time.Now()

	for i := 0; i < latencyRingSize*3; i++ {
		pt.observe("key", now, time.Duration(i)*time.Millisecond)
	}

	p := pt.get("key")
	if len(p.latencies) != latencyRingSize {
		t.Errorf("expected %d retained samples, got %d", latencyRingSize, len(p.latencies))
	}
}

func TestPatternTracker_Compact(t *testing.T) {
	pt := newPatternTracker()
	now := time.Now()

	pt.observe("keep", now, time.Millisecond)
	pt.observe("drop1", now, time.Millisecond)
	pt.observe("drop2", now, time.Millisecond)

	dropped := pt.compact(func(key string) bool { return key == "keep" })
	if dropped != 2 {
		t.Errorf("expected 2 dropped patterns, got %d", dropped)
	}
	if pt.get("keep") == nil {
		t.Error("resident key's pattern must survive compaction")
	}
	if pt.get("drop1") != nil {
		t.Error("non-resident key's pattern must be dropped")
	}
}

func TestPatternTracker_Stats(t *testing.T) {
	pt := newPatternTracker()
	now := time.Now()

	pt.observe("a", now, time.Millisecond)
	pt.observe("b", now, 2*time.Millisecond)
	pt.observe("b", now, 4*time.Millisecond)

	stats := pt.stats()
	if len(stats) != 2 {
		t.Fatalf("expected 2 pattern snapshots, got %d", len(stats))
	}
	for _, s := range stats {
		if s.Key == "b" {
			if s.Frequency != 2 {
				t.Errorf("expected frequency 2 for b, got %d", s.Frequency)
			}
			if s.AvgLatency != 3*time.Millisecond {
				t.Errorf("expected 3ms average latency for b, got %v", s.AvgLatency)
			}
		}
	}
}
