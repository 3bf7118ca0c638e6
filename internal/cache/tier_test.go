package cache

import (
	"testing"
	"time"
)

func makeEntry(key string, size int64, accessedAt time.Time, accessCount int64) *Entry {
	return &Entry{
		key:         key,
		value:       key,
		size:        size,
		createdAt:   accessedAt,
		accessedAt:  accessedAt,
		accessCount: accessCount,
		ttl:         time.Hour,
	}
}

// TestTier_InsertRemove tests size and count bookkeeping
func TestTier_InsertRemove(t *testing.T) {
	tr := newTier(TierL1, 1000, PolicyLRU)
	now := time.Now()

	tr.insert(makeEntry("a", 100, now, 1))
	tr.insert(makeEntry("b", 200, now, 1))

	if tr.size != 300 {
		t.Errorf("expected size 300, got %d", tr.size)
	}
	if len(tr.entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(tr.entries))
	}

	if !tr.remove("a") {
		t.Error("remove should report the key was found")
	}
	if tr.remove("a") {
		t.Error("second remove should report the key was absent")
	}
	if tr.size != 200 {
		t.Errorf("expected size 200 after remove, got %d", tr.size)
	}
}

// TestTier_InsertReplace tests that re-inserting a key adjusts size
func TestTier_InsertReplace(t *testing.T) {
	tr := newTier(TierL2, 1000, PolicyLRU)
	now := time.Now()

	tr.insert(makeEntry("a", 100, now, 1))
	tr.insert(makeEntry("a", 400, now, 1))

	if tr.size != 400 {
		t.Errorf("expected size 400 after replace, got %d", tr.size)
	}
	if len(tr.entries) != 1 {
		t.Errorf("expected 1 entry after replace, got %d", len(tr.entries))
	}
}

// TestTier_Victim tests victim selection under each policy
func TestTier_Victim(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		policy  Policy
		entries []*Entry
		want    string
	}{
		{
			name:   "lru picks oldest access",
			policy: PolicyLRU,
			entries: []*Entry{
				makeEntry("old", 10, now.Add(-time.Hour), 100),
				makeEntry("new", 10, now.Add(-time.Minute), 1),
			},
			want: "old",
		},
		{
			name:   "arc delegates to lru",
			policy: PolicyARC,
			entries: []*Entry{
				makeEntry("old", 10, now.Add(-time.Hour), 100),
				makeEntry("new", 10, now.Add(-time.Minute), 1),
			},
			want: "old",
		},
		{
			name:   "lfu picks fewest accesses",
			policy: PolicyLFU,
			entries: []*Entry{
				makeEntry("popular", 10, now.Add(-time.Hour), 50),
				makeEntry("rare", 10, now.Add(-time.Second), 2),
			},
			want: "rare",
		},
		{
			name:   "tlru penalizes old and rarely used",
			policy: PolicyTLRU,
			entries: []*Entry{
				// old but popular: score = 3600/100 = 36
				makeEntry("old-popular", 10, now.Add(-time.Hour), 100),
				// newer but barely used: score = 1800/1 = 1800
				makeEntry("new-unused", 10, now.Add(-30*time.Minute), 1),
			},
			want: "new-unused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTier(TierL3, 1000, tt.policy)
			for _, e := range tt.entries {
				tr.insert(e)
			}
			victim := tr.victim(now)
			if victim == nil {
				t.Fatal("victim returned nil for non-empty tier")
			}
			if victim.key != tt.want {
				t.Errorf("expected victim %q, got %q", tt.want, victim.key)
			}
		})
	}
}

// TestTier_VictimEmpty tests that an empty tier has no victim
func TestTier_VictimEmpty(t *testing.T) {
	tr := newTier(TierL1, 1000, PolicyLRU)
	if victim := tr.victim(time.Now()); victim != nil {
		t.Errorf("expected nil victim for empty tier, got %q", victim.key)
	}
}

// TestTier_Stats tests the derived statistics snapshot
func TestTier_Stats(t *testing.T) {
	tr := newTier(TierL1, 1000, PolicyLRU)
	now := time.Now()

	tr.insert(makeEntry("a", 250, now, 1))
	tr.hits = 3
	tr.misses = 1

	s := tr.stats()
	if s.Size != 250 {
		t.Errorf("expected size 250, got %d", s.Size)
	}
	if s.EntryCount != 1 {
		t.Errorf("expected entry count 1, got %d", s.EntryCount)
	}
	if s.HitRate != 0.75 {
		t.Errorf("expected hit rate 0.75, got %f", s.HitRate)
	}
	if s.Utilization != 0.25 {
		t.Errorf("expected utilization 0.25, got %f", s.Utilization)
	}
}

// TestTier_Clear tests that clear resets entries and statistics
func TestTier_Clear(t *testing.T) {
	tr := newTier(TierL3, 1000, PolicyLRU)
	now := time.Now()

	tr.insert(makeEntry("a", 100, now, 1))
	tr.hits = 5
	tr.evictions = 2

	tr.clear()

	if len(tr.entries) != 0 || tr.size != 0 {
		t.Error("clear should drop all entries")
	}
	if tr.hits != 0 || tr.evictions != 0 {
		t.Error("clear should reset statistics")
	}
}
