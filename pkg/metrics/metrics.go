package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaveops_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leaveops_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaveops_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	membersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leaveops_members_created_total",
		Help: "Company members created by role and source",
	}, []string{"role", "source"})

	assignmentsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leaveops_shift_assignments_generated_total",
		Help: "Shift assignments inserted by the generator",
	})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "leaveops_shift_generation_duration_seconds",
		Help:    "Duration of shift assignment generation runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt; result is success, invalid or inactive.
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveMemberCreated counts a new member; source is signup or import.
func ObserveMemberCreated(role, source string) {
	membersCreated.WithLabelValues(role, source).Inc()
}

// ObserveGeneration records one generator run and how many rows it inserted.
func ObserveGeneration(result string, inserted int64, duration time.Duration) {
	if inserted > 0 {
		assignmentsGenerated.Add(float64(inserted))
	}
	generationDuration.WithLabelValues(result).Observe(duration.Seconds())
}
