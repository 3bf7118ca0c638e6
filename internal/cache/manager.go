package cache

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/internal/metrics"
	"github.com/tachyon-beep/mnemosyne-sub011/pkg/errors"
	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
	"github.com/tachyon-beep/mnemosyne-sub011/pkg/utils"
)

// Tier names, hottest first.
const (
	TierL1 = "L1"
	TierL2 = "L2"
	TierL3 = "L3"
)

// Placement, promotion, and adaptive-sizing thresholds.
const (
	// placementFreqThreshold promotes a key's initial placement to L1
	// once its tracked access frequency exceeds this.
	placementFreqThreshold = 10

	// promoteAccessCount and promoteRecencyWindow gate the
	// count-plus-recency promotion rule.
	promoteAccessCount   = 10
	promoteRecencyWindow = 60 * time.Second
	l3PromoteRatePerSec  = 0.01
	l2PromoteRatePerSec  = 0.1
	shrinkFactor         = 0.8
	growFactor           = 1.2
	expandHitRateCeiling = 0.8
	freeMemoryShare      = 0.5
)

// Config configures the cache manager.
type Config struct {
	L1Capacity int64
	L2Capacity int64
	L3Capacity int64

	L1Policy Policy
	L2Policy Policy
	L3Policy Policy

	DefaultTTL       time.Duration
	AdaptiveSizing   bool
	AdaptiveInterval time.Duration
	WarmingEnabled   bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		L1Capacity:       64 * 1024 * 1024,
		L2Capacity:       160 * 1024 * 1024,
		L3Capacity:       288 * 1024 * 1024,
		L1Policy:         PolicyLRU,
		L2Policy:         PolicyLFU,
		L3Policy:         PolicyTLRU,
		DefaultTTL:       time.Hour,
		AdaptiveSizing:   true,
		AdaptiveInterval: 60 * time.Second,
		WarmingEnabled:   true,
	}
}

// Dependencies are the collaborators a Manager consumes. Any nil
// field is replaced with a default (or disabled, for the optional
// watcher and metrics).
type Dependencies struct {
	Estimator types.SizeEstimator
	Watcher   types.MemoryWatcher
	Metrics   *metrics.Collector
	Logger    *utils.StructuredLogger
}

// SetOptions carries the per-entry hints accepted by Set.
type SetOptions struct {
	TTL      time.Duration
	Priority types.Priority
	Cost     float64
	Size     int64
}

// Manager orchestrates the three cache tiers: get/set/delete/clear,
// placement, promotion and demotion, TTL expiry, adaptive resizing,
// pressure cleanup, warming, and reporting. All tier tables, the
// access-pattern table, and statistics are owned by the Manager and
// guarded by a single mutex; no operation exposes intermediate state.
type Manager struct {
	mu       sync.Mutex
	config   *Config
	tiers    [3]*tier
	patterns *patternTracker

	estimator types.SizeEstimator
	watcher   types.MemoryWatcher
	metrics   *metrics.Collector
	logger    *utils.StructuredLogger

	globalHits      uint64
	globalMisses    uint64
	globalEvictions uint64
	promotions      uint64
	demotions       uint64

	lastOptimizeHitRate float64
	hasOptimized        bool

	stopCh chan struct{}
	wg     sync.WaitGroup
	active int32
}

// NewManager creates a cache manager
func NewManager(config *Config, deps *Dependencies) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if deps == nil {
		deps = &Dependencies{}
	}
	if deps.Estimator == nil {
		deps.Estimator = DefaultSizeEstimator{}
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewStructuredLogger(nil)
	}

	m := &Manager{
		config:    config,
		patterns:  newPatternTracker(),
		estimator: deps.Estimator,
		watcher:   deps.Watcher,
		metrics:   deps.Metrics,
		logger:    deps.Logger.WithComponent("cache"),
		stopCh:    make(chan struct{}),
	}
	m.tiers[0] = newTier(TierL1, config.L1Capacity, config.L1Policy)
	m.tiers[1] = newTier(TierL2, config.L2Capacity, config.L2Policy)
	m.tiers[2] = newTier(TierL3, config.L3Capacity, config.L3Policy)
	return m
}

// Start begins the adaptive-sizing loop and the pressure-notification
// consumer. Safe to skip for callers that only want the synchronous
// API.
func (m *Manager) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&m.active, 0, 1) {
		return errors.NewError(errors.ErrCodeAlreadyStarted, "manager already running").
			WithComponent("cache")
	}

	m.logger.Info("starting cache manager", map[string]interface{}{
		"adaptive_sizing": m.config.AdaptiveSizing,
		"l1_capacity":     utils.FormatBytes(m.config.L1Capacity),
		"l2_capacity":     utils.FormatBytes(m.config.L2Capacity),
		"l3_capacity":     utils.FormatBytes(m.config.L3Capacity),
	})

	if m.watcher != nil {
		pressureCh := m.watcher.Subscribe()
		m.wg.Add(1)
		go m.pressureLoop(ctx, pressureCh)
	}

	if m.config.AdaptiveSizing {
		m.wg.Add(1)
		go m.adaptiveLoop(ctx)
	}

	return nil
}

// Stop stops the background loops. No future adaptive runs are
// scheduled; an in-flight run completes.
func (m *Manager) Stop() error {
	if !atomic.CompareAndSwapInt32(&m.active, 1, 0) {
		return nil // Already stopped
	}
	close(m.stopCh)
	m.wg.Wait()
	return nil
}

// Get returns the cached value for key, or false on a miss. An entry
// whose TTL has elapsed is removed and reported as a miss.
func (m *Manager) Get(key string) (interface{}, bool) {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	now := start
	for i, t := range m.tiers {
		e, exists := t.entries[key]
		if !exists {
			continue
		}

		if e.expired(now) {
			// Lazy expiry: part of the miss path, not an eviction.
			t.remove(key)
			if m.metrics != nil {
				m.metrics.RecordExpiry()
			}
			m.logger.Debug("entry expired", map[string]interface{}{
				"key": key, "tier": t.name,
			})
			break
		}

		prevAccess := e.accessedAt
		e.touch(now)
		m.maybePromote(e, i, now, prevAccess)

		t.hits++
		m.globalHits++
		m.patterns.observe(key, now, time.Since(start))

		if m.metrics != nil {
			m.metrics.RecordHit(t.name)
			m.metrics.ObserveOperation("get", time.Since(start))
			m.publishTierMetrics()
		}
		return e.value, true
	}

	// Miss: every tier was consulted without a usable entry.
	for _, t := range m.tiers {
		t.misses++
		if m.metrics != nil {
			m.metrics.RecordMiss(t.name)
		}
	}
	m.globalMisses++
	m.patterns.observe(key, now, time.Since(start))
	if m.metrics != nil {
		m.metrics.ObserveOperation("get", time.Since(start))
		m.publishTierMetrics()
	}
	return nil, false
}

// Set stores value under key. Placement follows priority and the
// key's tracked access frequency; any prior copy of the key is
// removed from every other tier in the same operation.
func (m *Manager) Set(key string, value interface{}, opts *SetOptions) {
	start := time.Now()

	var o SetOptions
	if opts != nil {
		o = *opts
	}

	size := o.Size
	if size <= 0 {
		estimated, err := m.estimator.Estimate(value)
		if err != nil || estimated <= 0 {
			size = fallbackEntrySize
			if err != nil {
				m.logger.Warn("size estimation failed, using fallback", map[string]interface{}{
					"key": key, "fallback": fallbackEntrySize, "error": err.Error(),
				})
			}
		} else {
			size = estimated
		}
	}

	ttl := o.TTL
	if ttl <= 0 {
		ttl = m.config.DefaultTTL
	}
	priority := o.Priority
	if priority == 0 {
		priority = types.PriorityMedium
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry := &Entry{
		key:        key,
		value:      value,
		size:       size,
		createdAt:  now,
		accessedAt: now,
		ttl:        ttl,
		priority:   priority,
		cost:       o.Cost,
	}

	// A key lives in exactly one tier: drop prior copies first so the
	// capacity check in the target tier sees the true occupancy.
	for _, t := range m.tiers {
		t.remove(key)
	}

	target := m.placementTier(key, priority)
	m.ensureCapacity(target, size, now)
	m.tiers[target].insert(entry)
	m.patterns.touch(key, now)

	m.logger.Debug("entry placed", map[string]interface{}{
		"key": key, "tier": m.tiers[target].name,
		"size": size, "priority": priority.String(),
	})
	if m.metrics != nil {
		m.metrics.ObserveOperation("set", time.Since(start))
		m.publishTierMetrics()
	}
}

// Delete removes key from whichever tier holds it and reports whether
// it was resident.
func (m *Manager) Delete(key string) bool {
	start := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, t := range m.tiers {
		if t.remove(key) {
			found = true
			break
		}
	}
	if m.metrics != nil {
		m.metrics.ObserveOperation("delete", time.Since(start))
		m.publishTierMetrics()
	}
	return found
}

// Clear empties all tiers, resets statistics, and drops every tracked
// access pattern.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tiers {
		t.clear()
	}
	m.patterns = newPatternTracker()
	m.globalHits = 0
	m.globalMisses = 0
	m.globalEvictions = 0
	m.promotions = 0
	m.demotions = 0
	if m.metrics != nil {
		m.publishTierMetrics()
	}
}

// Contains reports whether key is resident (and unexpired) in any
// tier, without touching statistics or access patterns.
func (m *Manager) Contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for _, t := range m.tiers {
		if e, exists := t.entries[key]; exists {
			return !e.expired(now)
		}
	}
	return false
}

// placementTier selects the initial tier for a new entry.
func (m *Manager) placementTier(key string, priority types.Priority) int {
	switch {
	case priority >= types.PriorityHigh:
		return 0
	case m.patterns.frequency(key) > placementFreqThreshold:
		return 0
	case priority == types.PriorityLow:
		return 2
	default:
		return 1
	}
}

// ensureCapacity frees space in tier idx until size more bytes fit or
// the tier is empty. A single entry larger than the tier's capacity
// therefore drains the tier and is inserted anyway, leaving the tier
// knowingly over capacity.
func (m *Manager) ensureCapacity(idx int, size int64, now time.Time) {
	t := m.tiers[idx]
	for t.size+size > t.capacity && len(t.entries) > 0 {
		victim := t.victim(now)
		if victim == nil {
			return
		}
		m.demoteOrEvict(victim, idx, now)
	}
}

// demoteOrEvict relocates the victim to the next colder tier when it
// has room, and discards it otherwise. Demotion is a silent
// relocation: neither an eviction nor a miss.
func (m *Manager) demoteOrEvict(victim *Entry, idx int, now time.Time) {
	t := m.tiers[idx]

	if idx+1 < len(m.tiers) {
		lower := m.tiers[idx+1]
		if lower.hasRoom(victim.size) {
			t.remove(victim.key)
			lower.insert(victim)
			m.demotions++
			m.logger.Debug("entry demoted", map[string]interface{}{
				"key": victim.key, "from": t.name, "to": lower.name,
			})
			if m.metrics != nil {
				m.metrics.RecordDemotion(lower.name)
			}
			return
		}
	}

	t.remove(victim.key)
	t.evictions++
	m.globalEvictions++
	m.logger.Debug("entry evicted", map[string]interface{}{
		"key": victim.key, "tier": t.name, "size": victim.size,
	})
	if m.metrics != nil {
		m.metrics.RecordEviction(t.name)
	}
}

// maybePromote moves an entry one tier hotter when it qualifies.
// prevAccess is the entry's last-access time before the current hit.
func (m *Manager) maybePromote(e *Entry, idx int, now time.Time, prevAccess time.Time) {
	if idx == 0 {
		return
	}

	promote := false
	switch {
	case e.accessCount > promoteAccessCount && now.Sub(prevAccess) < promoteRecencyWindow:
		promote = true
	case e.priority == types.PriorityCritical:
		promote = true
	case idx == 2 && e.accessRate(now) > l3PromoteRatePerSec:
		promote = true
	case idx == 1 && e.accessRate(now) > l2PromoteRatePerSec:
		promote = true
	}
	if !promote {
		return
	}

	target := idx - 1
	m.ensureCapacity(target, e.size, now)
	m.tiers[idx].remove(e.key)
	m.tiers[target].insert(e)
	m.promotions++
	m.logger.Debug("entry promoted", map[string]interface{}{
		"key": e.key, "from": m.tiers[idx].name, "to": m.tiers[target].name,
	})
	if m.metrics != nil {
		m.metrics.RecordPromotion(m.tiers[target].name)
	}
}

// findTier returns the index of the tier holding key, -1 if absent.
func (m *Manager) findTier(key string) int {
	for i, t := range m.tiers {
		if _, exists := t.entries[key]; exists {
			return i
		}
	}
	return -1
}

// pressureLoop consumes pressure notifications until stopped.
func (m *Manager) pressureLoop(ctx context.Context, ch <-chan types.PressureLevel) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case level := <-ch:
			m.handlePressure(level)
		}
	}
}

// handlePressure reacts to a delivered pressure notification: high or
// critical clears L3; critical additionally keeps only the
// more-recently-accessed half of L2. L1 is never touched.
func (m *Manager) handlePressure(level types.PressureLevel) {
	if level < types.PressureHigh {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l3 := m.tiers[2]
	dropped := len(l3.entries)
	freed := l3.size
	l3.clear()

	if level == types.PressureCritical {
		l2 := m.tiers[1]
		entries := make([]*Entry, 0, len(l2.entries))
		for _, e := range l2.entries {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].accessedAt.After(entries[j].accessedAt)
		})
		for _, e := range entries[len(entries)-len(entries)/2:] {
			l2.remove(e.key)
			l2.evictions++
			m.globalEvictions++
			dropped++
			freed += e.size
			if m.metrics != nil {
				m.metrics.RecordEviction(l2.name)
			}
		}
	}

	m.logger.Info("pressure cleanup", map[string]interface{}{
		"level":   level.String(),
		"dropped": dropped,
		"freed":   utils.FormatBytes(freed),
	})
	if m.metrics != nil {
		m.publishTierMetrics()
	}
}

// adaptiveLoop runs adaptive sizing on a fixed interval until stopped.
func (m *Manager) adaptiveLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.AdaptiveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.RunAdaptiveSizing()
		}
	}
}

// RunAdaptiveSizing performs one adaptive-sizing pass against the
// memory watcher's current view. Exposed for Optimize and tests; the
// periodic loop calls it on its interval.
func (m *Manager) RunAdaptiveSizing() bool {
	var level types.PressureLevel
	var mem types.MemoryStats
	if m.watcher != nil {
		level = m.watcher.Pressure()
		mem = m.watcher.Stats()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.adaptiveResizeLocked(level, mem, time.Now())
}

// adaptiveResizeLocked shrinks all tiers under high pressure and
// grows them when pressure is low and the hit rate is poor. Growth is
// capped so the total budget never exceeds half of free memory.
func (m *Manager) adaptiveResizeLocked(level types.PressureLevel, mem types.MemoryStats, now time.Time) bool {
	switch {
	case level >= types.PressureHigh:
		for _, t := range m.tiers {
			t.resize(int64(float64(t.capacity) * shrinkFactor))
		}
		// L1 trims first so its demotions land before colder tiers
		// are trimmed in turn.
		for i := range m.tiers {
			m.ensureCapacity(i, 0, now)
		}
		m.logger.Info("shrank tier capacities under pressure", map[string]interface{}{
			"level": level.String(), "factor": shrinkFactor,
		})
		if m.metrics != nil {
			m.publishTierMetrics()
		}
		return true

	case level == types.PressureLow:
		total := m.globalHits + m.globalMisses
		if total == 0 {
			return false
		}
		hitRate := float64(m.globalHits) / float64(total)
		if hitRate >= expandHitRateCeiling {
			return false
		}
		if mem.HeapFree == 0 {
			// No memory view; growing blind would defeat the budget cap.
			return false
		}

		var budget int64
		for _, t := range m.tiers {
			budget += t.capacity
		}
		maxBudget := int64(float64(mem.HeapFree) * freeMemoryShare)
		factor := growFactor
		if int64(float64(budget)*factor) > maxBudget {
			if budget >= maxBudget {
				return false
			}
			factor = float64(maxBudget) / float64(budget)
		}

		for _, t := range m.tiers {
			t.resize(int64(float64(t.capacity) * factor))
		}
		m.logger.Info("expanded tier capacities", map[string]interface{}{
			"hit_rate": hitRate, "factor": factor,
		})
		if m.metrics != nil {
			m.publishTierMetrics()
		}
		return true

	default:
		return false
	}
}

// globalHitRateLocked computes the aggregate hit rate.
func (m *Manager) globalHitRateLocked() float64 {
	total := m.globalHits + m.globalMisses
	if total == 0 {
		return 0
	}
	return float64(m.globalHits) / float64(total)
}

// publishTierMetrics pushes per-tier gauges to the collector. Caller
// holds the lock.
func (m *Manager) publishTierMetrics() {
	for _, t := range m.tiers {
		m.metrics.UpdateTier(t.name, t.size, t.capacity, len(t.entries))
	}
}
