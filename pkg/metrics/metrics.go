// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_transfers_initiated_total",
		Help: "Transfer initiations by outcome",
	}, []string{"outcome"})

	TransfersConfirmed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_transfers_confirmed_total",
		Help: "Transfer confirmations by outcome",
	}, []string{"outcome"})

	CodeDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_code_deliveries_total",
		Help: "Confirmation code deliveries by channel and outcome",
	}, []string{"channel", "outcome"})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "otp_settlement_duration_seconds",
		Help:    "Latency of the atomic settlement write",
		Buckets: prometheus.DefBuckets,
	})

	PendingTransfersSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otp_pending_transfers_swept_total",
		Help: "Expired pending transfers removed by the sweeper",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otp_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "otp_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
