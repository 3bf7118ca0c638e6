package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements cache metrics collection
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	// Prometheus metrics
	hitCounter        *prometheus.CounterVec
	missCounter       *prometheus.CounterVec
	evictionCounter   *prometheus.CounterVec
	promotionCounter  *prometheus.CounterVec
	demotionCounter   *prometheus.CounterVec
	expiryCounter     prometheus.Counter
	sizeGauge         *prometheus.GaugeVec
	entryGauge        *prometheus.GaugeVec
	capacityGauge     *prometheus.GaugeVec
	operationDuration *prometheus.HistogramVec

	// HTTP server for metrics endpoint
	server *http.Server
}

// Config represents metrics configuration
type Config struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// NewCollector creates a new metrics collector
func NewCollector(config *Config) (*Collector, error) {
	if config == nil {
		config = &Config{
			Enabled:   true,
			Port:      9091,
			Path:      "/metrics",
			Namespace: "mnemosyne",
		}
	}

	if !config.Enabled {
		return &Collector{config: config}, nil
	}

	collector := &Collector{
		config:   config,
		registry: prometheus.NewRegistry(),
	}

	if err := collector.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return collector, nil
}

// initMetrics creates and registers the Prometheus metrics
func (c *Collector) initMetrics() error {
	ns := c.config.Namespace

	c.hitCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache hits by tier",
	}, []string{"tier"})

	c.missCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache misses by tier",
	}, []string{"tier"})

	c.evictionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Entries evicted by tier",
	}, []string{"tier"})

	c.promotionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "promotions_total",
		Help:      "Entries promoted into a tier",
	}, []string{"tier"})

	c.demotionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "demotions_total",
		Help:      "Entries demoted into a tier",
	}, []string{"tier"})

	c.expiryCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "expirations_total",
		Help:      "Entries removed after TTL expiry",
	})

	c.sizeGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "resident_bytes",
		Help:      "Resident bytes by tier",
	}, []string{"tier"})

	c.entryGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Resident entry count by tier",
	}, []string{"tier"})

	c.capacityGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "capacity_bytes",
		Help:      "Configured capacity by tier",
	}, []string{"tier"})

	c.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Subsystem: "cache",
		Name:      "operation_duration_seconds",
		Help:      "Duration of cache operations",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
	}, []string{"operation"})

	collectors := []prometheus.Collector{
		c.hitCounter, c.missCounter, c.evictionCounter,
		c.promotionCounter, c.demotionCounter, c.expiryCounter,
		c.sizeGauge, c.entryGauge, c.capacityGauge,
		c.operationDuration,
	}
	for _, collector := range collectors {
		if err := c.registry.Register(collector); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return nil
}

// Start starts the metrics HTTP endpoint
func (c *Collector) Start(ctx context.Context) error {
	if !c.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(c.config.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	c.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", c.config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Metrics are best effort; a port clash must not take the cache down.
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the metrics HTTP endpoint
func (c *Collector) Stop(ctx context.Context) error {
	if c.server == nil {
		return nil
	}
	return c.server.Shutdown(ctx)
}

// Registry returns the underlying Prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordHit records a cache hit on a tier
func (c *Collector) RecordHit(tier string) {
	if !c.config.Enabled {
		return
	}
	c.hitCounter.WithLabelValues(tier).Inc()
}

// RecordMiss records a cache miss on a tier
func (c *Collector) RecordMiss(tier string) {
	if !c.config.Enabled {
		return
	}
	c.missCounter.WithLabelValues(tier).Inc()
}

// RecordEviction records an eviction from a tier
func (c *Collector) RecordEviction(tier string) {
	if !c.config.Enabled {
		return
	}
	c.evictionCounter.WithLabelValues(tier).Inc()
}

// RecordPromotion records a promotion into a tier
func (c *Collector) RecordPromotion(tier string) {
	if !c.config.Enabled {
		return
	}
	c.promotionCounter.WithLabelValues(tier).Inc()
}

// RecordDemotion records a demotion into a tier
func (c *Collector) RecordDemotion(tier string) {
	if !c.config.Enabled {
		return
	}
	c.demotionCounter.WithLabelValues(tier).Inc()
}

// RecordExpiry records a TTL expiry removal
func (c *Collector) RecordExpiry() {
	if !c.config.Enabled {
		return
	}
	c.expiryCounter.Inc()
}

// UpdateTier updates the per-tier gauges
func (c *Collector) UpdateTier(tier string, size, capacity int64, entries int) {
	if !c.config.Enabled {
		return
	}
	c.sizeGauge.WithLabelValues(tier).Set(float64(size))
	c.capacityGauge.WithLabelValues(tier).Set(float64(capacity))
	c.entryGauge.WithLabelValues(tier).Set(float64(entries))
}

// ObserveOperation records the duration of a cache operation
func (c *Collector) ObserveOperation(operation string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
