package cache

import (
	"fmt"
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// Rebalancing thresholds: the tier a tracked pattern "deserves".
const (
	rebalanceHotFrequency   = 20
	rebalanceHotIdleWindow  = 60 * time.Second
	rebalanceWarmFrequency  = 5
	rebalanceWarmIdleWindow = 300 * time.Second
)

// OptimizeReport summarizes one Optimize pass.
type OptimizeReport struct {
	ActionsTaken []string `json:"actions_taken"`
	BytesFreed   int64    `json:"bytes_freed"`
	HitRateDelta float64  `json:"hit_rate_delta"`
}

// Optimize runs the maintenance pass: eager TTL expiry across all
// tiers, rebalancing of misplaced entries toward their optimal tier,
// one adaptive-sizing pass, and compaction of access patterns whose
// keys are no longer resident anywhere.
func (m *Manager) Optimize() OptimizeReport {
	var level types.PressureLevel
	var mem types.MemoryStats
	if m.watcher != nil {
		level = m.watcher.Pressure()
		mem = m.watcher.Stats()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	report := OptimizeReport{}

	// 1. Eager TTL sweep.
	expired := 0
	for _, t := range m.tiers {
		for key, e := range t.entries {
			if e.expired(now) {
				t.remove(key)
				expired++
				report.BytesFreed += e.size
				if m.metrics != nil {
					m.metrics.RecordExpiry()
				}
			}
		}
	}
	if expired > 0 {
		report.ActionsTaken = append(report.ActionsTaken,
			fmt.Sprintf("expired %d entries", expired))
	}

	// 2. Rebalance resident entries toward their optimal tier.
	moved := 0
	for key, p := range m.patterns.patterns {
		current := m.findTier(key)
		if current < 0 {
			continue
		}
		want := optimalTier(p, now)
		if want == current {
			continue
		}
		e := m.tiers[current].entries[key]
		if !m.tiers[want].hasRoom(e.size) {
			continue
		}
		m.tiers[current].remove(key)
		m.tiers[want].insert(e)
		moved++
		m.logger.Debug("entry rebalanced", map[string]interface{}{
			"key": key, "from": m.tiers[current].name, "to": m.tiers[want].name,
		})
	}
	if moved > 0 {
		report.ActionsTaken = append(report.ActionsTaken,
			fmt.Sprintf("rebalanced %d entries", moved))
	}

	// 3. One adaptive-sizing pass.
	if m.adaptiveResizeLocked(level, mem, now) {
		report.ActionsTaken = append(report.ActionsTaken, "resized tier capacities")
	}

	// 4. Compact patterns for keys resident nowhere.
	droppedPatterns := m.patterns.compact(func(key string) bool {
		return m.findTier(key) >= 0
	})
	if droppedPatterns > 0 {
		report.ActionsTaken = append(report.ActionsTaken,
			fmt.Sprintf("compacted %d access patterns", droppedPatterns))
	}

	current := m.globalHitRateLocked()
	if m.hasOptimized {
		report.HitRateDelta = current - m.lastOptimizeHitRate
	}
	m.lastOptimizeHitRate = current
	m.hasOptimized = true

	if m.metrics != nil {
		m.publishTierMetrics()
	}
	m.logger.Info("optimize pass complete", map[string]interface{}{
		"actions":     len(report.ActionsTaken),
		"bytes_freed": report.BytesFreed,
	})
	return report
}

// optimalTier maps a tracked access pattern onto the tier it should
// occupy.
func optimalTier(p *accessPattern, now time.Time) int {
	idle := now.Sub(p.lastAccess)
	switch {
	case p.frequency > rebalanceHotFrequency && idle < rebalanceHotIdleWindow:
		return 0
	case p.frequency > rebalanceWarmFrequency && idle < rebalanceWarmIdleWindow:
		return 1
	default:
		return 2
	}
}
