package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

const namespace = "lms"

// Metrics owns a private prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	aggregateOps       *prometheus.CounterVec
	aggregateLatency   *prometheus.HistogramVec
	aggregateConflicts *prometheus.CounterVec
	aggregateRetries   *prometheus.CounterVec

	orderEvents *prometheus.CounterVec

	auditRuns       *prometheus.CounterVec
	auditViolations *prometheus.CounterVec
	auditRepaired   *prometheus.CounterVec

	redisUp   prometheus.Gauge
	redisPing prometheus.Gauge
}

// Init returns nil when metrics are disabled.
func Init(enabled bool, log *logger.Logger) *Metrics {
	if !enabled {
		return nil
	}
	m := New()
	if log != nil {
		log.Info("metrics enabled", "namespace", namespace)
	}
	return m
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "api_requests_total",
			Help: "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds",
			Help:    "API request latency in seconds by method/route/status.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_inflight_requests",
			Help: "In-flight API requests.",
		}),
		aggregateOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_operations_total",
			Help: "Aggregate write operations by name/status.",
		}, []string{"operation", "status"}),
		aggregateLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "aggregate_operation_duration_seconds",
			Help:    "Aggregate write latency in seconds by name/status.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"operation", "status"}),
		aggregateConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_conflicts_total",
			Help: "Aggregate writes that ended in a conflict.",
		}, []string{"operation"}),
		aggregateRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "aggregate_retries_total",
			Help: "Aggregate writes that lost a race and were eligible for retry.",
		}, []string{"operation"}),
		orderEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_events_total",
			Help: "Order-change events by resource/result.",
		}, []string{"resource", "result"}),
		auditRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_audit_runs_total",
			Help: "Order audit runs by resource/status.",
		}, []string{"resource", "status"}),
		auditViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_audit_violations_total",
			Help: "Groups found with non-dense ordering.",
		}, []string{"resource"}),
		auditRepaired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_audit_repaired_total",
			Help: "Groups renumbered by the order audit.",
		}, []string{"resource"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_up",
			Help: "1 when the last redis ping succeeded.",
		}),
		redisPing: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_ping_seconds",
			Help: "Latency of the last successful redis ping.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.orderEvents,
		m.auditRuns, m.auditViolations, m.auditRepaired,
		m.redisUp, m.redisPing,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the prometheus exposition format. Disabled metrics answer 503.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	name = orUnknown(name)
	status = orUnknown(status)
	m.aggregateOps.WithLabelValues(name, status).Inc()
	m.aggregateLatency.WithLabelValues(name, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.WithLabelValues(orUnknown(name)).Inc()
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.WithLabelValues(orUnknown(name)).Inc()
}

func (m *Metrics) IncOrderEvent(resource, result string) {
	if m == nil {
		return
	}
	m.orderEvents.WithLabelValues(orUnknown(resource), orUnknown(result)).Inc()
}

func (m *Metrics) ObserveAuditRun(resource, status string, violations, repaired int) {
	if m == nil {
		return
	}
	resource = orUnknown(resource)
	m.auditRuns.WithLabelValues(resource, orUnknown(status)).Inc()
	if violations > 0 {
		m.auditViolations.WithLabelValues(resource).Add(float64(violations))
	}
	if repaired > 0 {
		m.auditRepaired.WithLabelValues(resource).Add(float64(repaired))
	}
}

// RegisterDBStats exports database/sql pool stats for db.
func (m *Metrics) RegisterDBStats(db *gorm.DB, dbName string) error {
	if m == nil || db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return m.registry.Register(collectors.NewDBStatsCollector(sqlDB, orUnknown(dbName)))
}

// StartRedisCollector pings rdb every interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}
