package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	CounterRequests          *prometheus.CounterVec
	CounterWorkoutsLogged    *prometheus.CounterVec
	CounterCaloriesLogged    prometheus.Counter
	CounterAuthFailures      *prometheus.CounterVec
	CounterRateLimited       prometheus.Counter
	GaugeDashboardStreams    prometheus.Gauge
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fittrack", "test", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)
	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled HTTP requests",
		}, []string{"method", "status"}),
		CounterWorkoutsLogged: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts_logged_total",
			Help:      "The total number of logged workouts",
		}, []string{"level", "muscle_group"}),
		CounterCaloriesLogged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "calories_logged_total",
			Help:      "Sum of calories over all logged workouts",
		}),
		CounterAuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "auth_failures_total",
			Help:      "Rejected sign-in and sign-up attempts",
		}, []string{"reason"}),
		CounterRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		GaugeDashboardStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dashboard_streams",
			Help:      "Open dashboard live streams",
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}
