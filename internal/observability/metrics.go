package observability

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Metrics is the process-wide instrument set. A nil *Metrics is valid and
// records nothing, which is what callers get while metrics are disabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	attemptsGraded        *CounterVec
	attemptAccuracy       *HistogramVec
	attemptsRejected      *CounterVec
	eligibilityChecks     *CounterVec
	recommendationRefresh *CounterVec
	eventPublishFailures  *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("toeic_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"toeic_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight:    NewGauge("toeic_api_inflight_requests", "In-flight API requests."),
		attemptsGraded: NewCounterVec("toeic_attempts_graded_total", "Graded attempts by kind/level.", []string{"kind", "level"}),
		attemptAccuracy: NewHistogramVec(
			"toeic_attempt_accuracy",
			"Overall accuracy of graded attempts by kind.",
			[]string{"kind"},
			[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.55, 0.6, 0.7, 0.85, 1},
		),
		attemptsRejected:      NewCounterVec("toeic_attempts_rejected_total", "Submissions rejected by kind/code.", []string{"kind", "code"}),
		eligibilityChecks:     NewCounterVec("toeic_eligibility_checks_total", "Progress eligibility answers by reason.", []string{"reason"}),
		recommendationRefresh: NewCounterVec("toeic_recommendation_refresh_total", "Recommendation snapshots written by trigger.", []string{"trigger"}),
		eventPublishFailures:  NewCounterVec("toeic_event_publish_failures_total", "Event bus publish failures by event type.", []string{"event"}),
	}
}

// Init enables the process-wide instruments when enabled is true and
// returns them. Later calls return the first result.
func Init(enabled bool) *Metrics {
	initOnce.Do(func() {
		if enabled {
			instance = newMetrics()
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
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

func (m *Metrics) ObserveAPI(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(d.Seconds(), method, route)
}

func (m *Metrics) ObserveAttempt(kind string, level int, acc float64) {
	if m == nil {
		return
	}
	m.attemptsGraded.Inc(kind, strconv.Itoa(level))
	m.attemptAccuracy.Observe(acc, kind)
}

func (m *Metrics) IncAttemptRejected(kind, code string) {
	if m == nil {
		return
	}
	m.attemptsRejected.Inc(kind, code)
}

func (m *Metrics) IncEligibility(reason string) {
	if m == nil {
		return
	}
	m.eligibilityChecks.Inc(reason)
}

func (m *Metrics) AddRecommendationRefresh(trigger string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recommendationRefresh.Add(float64(n), trigger)
}

func (m *Metrics) IncEventPublishFailure(event string) {
	if m == nil {
		return
	}
	m.eventPublishFailures.Inc(event)
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
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.attemptsGraded,
		m.attemptAccuracy,
		m.attemptsRejected,
		m.eligibilityChecks,
		m.recommendationRefresh,
		m.eventPublishFailures,
	}
	for _, iw := range writers {
		if err := iw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
