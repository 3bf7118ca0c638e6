package cache

import (
	"fmt"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// Report is the full statistics view returned by GetStats.
type Report struct {
	Global     types.CacheStats            `json:"global"`
	Tiers      map[string]types.CacheStats `json:"tiers"`
	Efficiency EfficiencyStats             `json:"efficiency"`
}

// EfficiencyStats are the derived health indicators.
type EfficiencyStats struct {
	MemoryUtilization float64 `json:"memory_utilization"`
	AvgEntrySize      float64 `json:"avg_entry_size"`
	HotDataRatio      float64 `json:"hot_data_ratio"`
	Promotions        uint64  `json:"promotions"`
	Demotions         uint64  `json:"demotions"`
}

// GetStats returns global and per-tier statistics plus derived
// efficiency indicators. Global resident bytes and entry count are
// the sums over the tiers.
func (m *Manager) GetStats() Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := Report{
		Global: types.CacheStats{
			Hits:      m.globalHits,
			Misses:    m.globalMisses,
			Evictions: m.globalEvictions,
		},
		Tiers: make(map[string]types.CacheStats, len(m.tiers)),
	}

	for _, t := range m.tiers {
		s := t.stats()
		report.Tiers[t.name] = s
		report.Global.Size += s.Size
		report.Global.Capacity += s.Capacity
		report.Global.EntryCount += s.EntryCount
	}

	if total := report.Global.Hits + report.Global.Misses; total > 0 {
		report.Global.HitRate = float64(report.Global.Hits) / float64(total)
	}
	if report.Global.Capacity > 0 {
		report.Global.Utilization = float64(report.Global.Size) / float64(report.Global.Capacity)
	}

	report.Efficiency = EfficiencyStats{
		MemoryUtilization: report.Global.Utilization,
		Promotions:        m.promotions,
		Demotions:         m.demotions,
	}
	if report.Global.EntryCount > 0 {
		report.Efficiency.AvgEntrySize = float64(report.Global.Size) / float64(report.Global.EntryCount)
		report.Efficiency.HotDataRatio = float64(report.Tiers[TierL1].EntryCount) / float64(report.Global.EntryCount)
	}

	return report
}

// AccessPatterns returns a snapshot of every tracked access pattern.
func (m *Manager) AccessPatterns() []types.AccessStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patterns.stats()
}

// Recommendations derives rule-based tuning advice from the current
// statistics.
func (m *Manager) Recommendations() []string {
	report := m.GetStats()

	var recs []string
	if report.Efficiency.MemoryUtilization > 0.9 {
		recs = append(recs, fmt.Sprintf(
			"memory utilization at %.0f%%: consider increasing the total budget",
			report.Efficiency.MemoryUtilization*100))
	}
	if report.Global.EntryCount > 0 && report.Efficiency.HotDataRatio < 0.1 {
		recs = append(recs, fmt.Sprintf(
			"hot-data ratio at %.1f%%: few entries reach L1, review promotion thresholds",
			report.Efficiency.HotDataRatio*100))
	}
	if total := report.Global.Hits + report.Global.Misses; total > 0 {
		if report.Global.HitRate < 0.7 {
			recs = append(recs, fmt.Sprintf(
				"global hit rate at %.0f%%: consider warming frequently used keys",
				report.Global.HitRate*100))
		}
		l1 := report.Tiers[TierL1]
		if l1.Hits+l1.Misses > 0 && l1.HitRate < 0.8 {
			recs = append(recs, fmt.Sprintf(
				"L1 hit rate at %.0f%%: hot entries may be placed too cold",
				l1.HitRate*100))
		}
	}
	return recs
}
