package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_created_total",
		Help: "Total number of reservations created",
	})

	ReservationsCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_cancelled_total",
		Help: "Total number of cancelled reservations",
	}, []string{"cancelled_by"})

	ReservationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservations_failed_total",
		Help: "Total number of failed reservation attempts",
	}, []string{"reason"})

	ReservationsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_duplicate_requests_total",
		Help: "Total number of reservation requests that matched an existing active reservation",
	})

	SeatHoldLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "seat_hold_latency_seconds",
		Help:    "Latency of seat hold operations",
		Buckets: prometheus.DefBuckets,
	})

	SeatHoldsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seat_holds_failed_total",
		Help: "Total number of failed seat holds",
	}, []string{"reason"})

	ReconcileRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_runs_total",
		Help: "Total number of reconciliation runs",
	}, []string{"mode", "decision"})

	ReconcileAnomaliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_anomalies_total",
		Help: "Total number of consistency anomalies detected",
	}, []string{"kind"})

	ReconcileCancellationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reconcile_cancellations_total",
		Help: "Total number of duplicate reservations cancelled by the resolver",
	})

	SweepChecksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sweep_checks_total",
		Help: "Total number of pair checks run by the sweep worker",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
