package cache

import (
	"context"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// warmedEntryCost is the recreation-cost hint recorded on entries
// populated by warming, marking them as expensive to regenerate.
const warmedEntryCost = 10.0

// WarmingStrategy names a batch of keys to preload through a loader.
type WarmingStrategy struct {
	Keys     []string
	Loader   types.Loader
	Priority types.Priority
}

// Warm populates the cache from the given strategies. Keys already
// resident are skipped. A loader failure skips that key only and
// never aborts the batch. Returns the number of entries loaded.
func (m *Manager) Warm(ctx context.Context, strategies []WarmingStrategy) int {
	if !m.config.WarmingEnabled {
		m.logger.Debug("warming disabled, skipping", nil)
		return 0
	}

	loaded := 0
	for _, strategy := range strategies {
		if strategy.Loader == nil {
			m.logger.Warn("warming strategy has no loader, skipping", map[string]interface{}{
				"keys": len(strategy.Keys),
			})
			continue
		}

		for _, key := range strategy.Keys {
			if ctx.Err() != nil {
				m.logger.Warn("warming interrupted", map[string]interface{}{
					"error": ctx.Err().Error(),
				})
				return loaded
			}
			if m.Contains(key) {
				continue
			}

			value, err := strategy.Loader.Load(ctx, key)
			if err != nil {
				m.logger.Warn("warming loader failed", map[string]interface{}{
					"key": key, "error": err.Error(),
				})
				continue
			}

			m.Set(key, value, &SetOptions{
				Priority: strategy.Priority,
				Cost:     warmedEntryCost,
			})
			loaded++
		}
	}

	if loaded > 0 {
		m.logger.Info("cache warmed", map[string]interface{}{"entries": loaded})
	}
	return loaded
}
