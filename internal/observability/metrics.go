package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	quizSubmissions *CounterVec
	quizScores      *HistogramVec
	quizDenied      *CounterVec
	certTransitions *CounterVec

	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	eventsPublished *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
	collectors     []collector
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide registry once. It returns nil when metrics are disabled,
// and every Metrics method is a no-op on a nil receiver.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New returns an unshared registry.
func New() *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("aw_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"aw_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("aw_api_inflight_requests", "In-flight API requests."),

		quizSubmissions: NewCounterVec("aw_quiz_submissions_total", "Quiz submissions by outcome.", []string{"outcome"}),
		quizScores: NewHistogramVec(
			"aw_quiz_score_percent",
			"Distribution of quiz scores.",
			[]string{"outcome"},
			[]float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		),
		quizDenied:      NewCounterVec("aw_quiz_eligibility_denied_total", "Quiz requests refused by the eligibility gate.", []string{"stage"}),
		certTransitions: NewCounterVec("aw_certification_transitions_total", "Certification state changes by target state.", []string{"to"}),

		aggregateOps: NewCounterVec("aw_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"aw_aggregate_operation_duration_seconds",
			"Aggregate write latency by operation/status.",
			[]string{"operation", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		aggregateConflicts: NewCounterVec("aw_aggregate_conflicts_total", "Aggregate writes that hit a conflict.", []string{"operation"}),
		aggregateRetries:   NewCounterVec("aw_aggregate_retryable_total", "Aggregate writes that failed with a retryable error.", []string{"operation"}),

		eventsPublished: NewCounterVec("aw_events_published_total", "Certification events by type/status.", []string{"type", "status"}),

		pgStats:   NewGaugeVec("aw_postgres_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:   NewGauge("aw_redis_up", "1 when the last redis ping succeeded."),
		redisPing: NewGauge("aw_redis_ping_seconds", "Latency of the last redis ping."),

		scrapeInterval: 10 * time.Second,
	}
	m.collectors = []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.quizSubmissions, m.quizScores, m.quizDenied, m.certTransitions,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.eventsPublished,
		m.pgStats, m.redisUp, m.redisPing,
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range m.collectors {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ObserveAPIStatus(method, route string, status int, dur time.Duration) {
	m.ObserveAPI(method, route, strconv.Itoa(status), dur)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ObserveQuizSubmission records one graded submission.
func (m *Metrics) ObserveQuizSubmission(passed bool, score float64) {
	if m == nil {
		return
	}
	outcome := "failed"
	to := "in_training"
	if passed {
		outcome = "passed"
		to = "certified"
	}
	m.quizSubmissions.Inc(outcome)
	m.quizScores.Observe(score, outcome)
	m.certTransitions.Inc(to)
}

func (m *Metrics) IncQuizRejected(reason string) {
	if m == nil {
		return
	}
	m.quizSubmissions.Inc(reason)
}

func (m *Metrics) IncEligibilityDenied(stage string) {
	if m == nil {
		return
	}
	m.quizDenied.Inc(stage)
}

func (m *Metrics) IncCertificationReset() {
	if m == nil {
		return
	}
	m.certTransitions.Inc("in_training")
}

func (m *Metrics) ObserveAggregateOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(name, status)
	if dur > 0 {
		m.aggregateLatency.Observe(dur.Seconds(), name, status)
	}
}

func (m *Metrics) IncAggregateConflict(name string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(name)
}

func (m *Metrics) IncAggregateRetry(name string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(name)
}

func (m *Metrics) IncEventPublished(eventType, status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(eventType, status)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: postgres stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings the shared client; it does not own or close it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client) {
	if m == nil || rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
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

// SetScrapeInterval changes the collector tick; non-positive values are ignored.
func (m *Metrics) SetScrapeInterval(d time.Duration) {
	if m == nil || d <= 0 {
		return
	}
	m.scrapeInterval = d
}
