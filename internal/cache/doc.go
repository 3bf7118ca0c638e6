// Package cache implements the Mnemosyne multi-tier adaptive cache.
//
// The cache holds expensive-to-recompute results (query results,
// derived analytics, generated embeddings) in three bounded tiers:
// L1 (hot), L2 (warm), and L3 (cold). Each tier has its own capacity
// and eviction policy; a key is resident in at most one tier at any
// instant. The Manager orchestrates placement, promotion, demotion,
// TTL expiry, pressure-triggered cleanup, adaptive capacity tuning,
// warming, and reporting.
//
// # Tiers and policies
//
// Victims are selected by a per-tier policy comparator: LRU (oldest
// access), LFU (fewest accesses), TLRU (highest age-over-frequency
// score), or ARC. The ARC policy is a simplified approximation that
// delegates to LRU; ghost lists are not implemented.
//
// # Placement and movement
//
// New entries land in a tier chosen from their priority and tracked
// access frequency. Hot entries are promoted one tier at a time on
// access; eviction victims are demoted to the next colder tier when
// it has room, and discarded otherwise. An adaptive background loop
// shrinks all tiers under memory pressure and grows them when
// pressure is low and the hit rate is poor.
//
// # Concurrency
//
// All tier tables, the access-pattern table, and statistics are owned
// by the Manager and guarded by a single mutex. Every mutating
// operation runs to completion under the lock, so a reader never
// observes a half-promoted or half-evicted entry. Warming loaders run
// outside the lock.
//
// # Error handling
//
// Cache operations are best effort: Get, Set, and Delete never return
// errors. Size-estimation failures fall back to a fixed conservative
// size, and warming-loader failures skip the affected key only. The
// only externally visible failure mode is a miss.
package cache
