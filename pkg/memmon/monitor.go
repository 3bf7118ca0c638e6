// Package memmon provides heap monitoring and memory-pressure
// classification for the Mnemosyne cache.
package memmon

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/errors"
	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
	"github.com/tachyon-beep/mnemosyne-sub011/pkg/utils"
)

// MonitorConfig configures memory monitoring behavior
type MonitorConfig struct {
	// SampleInterval is how often to collect memory stats
	SampleInterval time.Duration

	// HeapLimit is the heap size against which pressure is classified.
	// Zero means classify against HeapSys.
	HeapLimit uint64

	// Thresholds are the heap-usage fractions at which pressure moves
	// to medium, high, and critical.
	MediumThreshold   float64
	HighThreshold     float64
	CriticalThreshold float64

	// Logger for monitoring events
	Logger *utils.StructuredLogger
}

// DefaultMonitorConfig returns sensible defaults
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		SampleInterval:    30 * time.Second,
		MediumThreshold:   0.6,
		HighThreshold:     0.75,
		CriticalThreshold: 0.9,
	}
}

// Monitor samples the Go heap and classifies memory pressure. It
// implements types.MemoryWatcher. Subscribers receive a pressure
// level whenever the classification changes.
type Monitor struct {
	config MonitorConfig
	logger *utils.StructuredLogger

	mu          sync.RWMutex
	current     types.MemoryStats
	pressure    types.PressureLevel
	subscribers []chan types.PressureLevel

	stopCh chan struct{}
	wg     sync.WaitGroup
	active int32
}

// NewMonitor creates a new memory monitor
func NewMonitor(config MonitorConfig) *Monitor {
	if config.SampleInterval <= 0 {
		config.SampleInterval = DefaultMonitorConfig().SampleInterval
	}
	if config.MediumThreshold <= 0 {
		config.MediumThreshold = 0.6
	}
	if config.HighThreshold <= 0 {
		config.HighThreshold = 0.75
	}
	if config.CriticalThreshold <= 0 {
		config.CriticalThreshold = 0.9
	}
	if config.Logger == nil {
		config.Logger = utils.NewStructuredLogger(nil)
	}

	m := &Monitor{
		config:   config,
		logger:   config.Logger.WithComponent("memmon"),
		pressure: types.PressureLow,
		stopCh:   make(chan struct{}),
	}
	m.sample()
	return m
}

// Start begins memory monitoring
func (m *Monitor) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&m.active, 0, 1) {
		return errors.NewError(errors.ErrCodeAlreadyStarted, "monitor already running").
			WithComponent("memmon")
	}

	m.logger.Info("starting memory monitor", map[string]interface{}{
		"sample_interval": m.config.SampleInterval,
	})

	m.wg.Add(1)
	go m.monitorLoop(ctx)

	return nil
}

// Stop stops memory monitoring
func (m *Monitor) Stop() error {
	if !atomic.CompareAndSwapInt32(&m.active, 1, 0) {
		return nil // Already stopped
	}

	close(m.stopCh)
	m.wg.Wait()
	return nil
}

// monitorLoop runs the monitoring loop
func (m *Monitor) monitorLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample collects a memory sample and reclassifies pressure
func (m *Monitor) sample() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := types.MemoryStats{
		Timestamp:    time.Now(),
		HeapAlloc:    memStats.HeapAlloc,
		HeapSys:      memStats.HeapSys,
		NumGC:        memStats.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
	if memStats.HeapSys > memStats.HeapAlloc {
		stats.HeapFree = memStats.HeapSys - memStats.HeapAlloc
	}

	level := m.classify(stats)

	m.mu.Lock()
	m.current = stats
	changed := level != m.pressure
	m.pressure = level
	var subs []chan types.PressureLevel
	if changed {
		subs = make([]chan types.PressureLevel, len(m.subscribers))
		copy(subs, m.subscribers)
	}
	m.mu.Unlock()

	if changed {
		m.logger.Info("memory pressure changed", map[string]interface{}{
			"level":      level.String(),
			"heap_alloc": utils.FormatBytes(int64(stats.HeapAlloc)),
		})
		for _, ch := range subs {
			// Drop the notification rather than block the sampler.
			select {
			case ch <- level:
			default:
			}
		}
	}
}

// classify maps heap usage onto a pressure level
func (m *Monitor) classify(stats types.MemoryStats) types.PressureLevel {
	limit := m.config.HeapLimit
	if limit == 0 {
		limit = stats.HeapSys
	}
	if limit == 0 {
		return types.PressureLow
	}

	usage := float64(stats.HeapAlloc) / float64(limit)
	switch {
	case usage >= m.config.CriticalThreshold:
		return types.PressureCritical
	case usage >= m.config.HighThreshold:
		return types.PressureHigh
	case usage >= m.config.MediumThreshold:
		return types.PressureMedium
	default:
		return types.PressureLow
	}
}

// Stats returns the most recent memory sample
func (m *Monitor) Stats() types.MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Pressure returns the current pressure classification
func (m *Monitor) Pressure() types.PressureLevel {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pressure
}

// Subscribe registers for pressure-change notifications. The channel
// is buffered; notifications are dropped if the subscriber lags.
func (m *Monitor) Subscribe() <-chan types.PressureLevel {
	ch := make(chan types.PressureLevel, 4)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// Refresh forces an immediate sample outside the periodic loop
func (m *Monitor) Refresh() {
	m.sample()
}
