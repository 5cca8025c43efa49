package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog HTTP requests",
		},
		[]string{"method", "path"},
	)

	CatalogRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_requests_in_flight",
			Help: "Number of catalog requests currently being processed",
		},
	)

	CatalogRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AlbumOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "album_operations_total",
			Help: "Album mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total number of registered users",
		},
	)

	UserOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_operations_total",
			Help: "User account mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	SessionsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_issued_total",
			Help: "Total number of session cookies issued",
		},
	)

	SessionValidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_validations_total",
			Help: "Total number of session cookie validations",
		},
	)

	SessionValidationsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_validations_failed_total",
			Help: "Total number of rejected session cookies",
		},
	)
)
