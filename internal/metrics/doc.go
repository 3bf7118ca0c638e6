// Package metrics exposes cache activity as Prometheus metrics:
// per-tier hit/miss/eviction counters, promotion and demotion
// counters, resident-size and entry-count gauges, and an operation
// duration histogram. An optional HTTP endpoint serves the registry.
package metrics
