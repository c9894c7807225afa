// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pos_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	DocumentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_documents_created_total",
		Help: "Estimates and orders created, by kind.",
	}, []string{"kind"})

	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_estimate_conversions_total",
		Help: "Estimate to order conversions by outcome.",
	}, []string{"outcome"})

	SequenceFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sequence_fallbacks_total",
		Help: "Sequence numbers issued from the timestamp fallback.",
	}, []string{"sequence"})

	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_broadcasts_dropped_total",
		Help: "Notification events dropped because the hub queue was full.",
	})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pos_websocket_clients",
		Help: "Currently connected notification clients.",
	})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_messages_sent_total",
		Help: "Outbound gateway calls by channel and outcome.",
	}, []string{"channel", "outcome"})
)
