package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts bridge requests created, by destination chain
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_requests_total",
			Help: "Total number of bridge requests created",
		},
		[]string{"destination_chain"},
	)

	// SignaturesTotal counts operator signatures by decision
	SignaturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_signatures_total",
			Help: "Total number of operator signatures cast",
		},
		[]string{"decision"},
	)

	// ExecutionsTotal counts execution attempts by result
	ExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_executions_total",
			Help: "Total number of bridge execution attempts",
		},
		[]string{"result"},
	)

	// RecoveriesTotal counts recovery operations by action
	RecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_recoveries_total",
			Help: "Total number of bridge recovery operations",
		},
		[]string{"action"},
	)

	// PendingRequests tracks the number of live (non-terminal) requests
	PendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bridge_pending_requests",
			Help: "Number of non-terminal bridge requests",
		},
	)

	// ExpiredRequests counts requests that passed their timeout unexecuted
	ExpiredRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_expired_requests_total",
			Help: "Total number of bridge requests that expired",
		},
	)

	// GasEstimate tracks advisory gas estimates returned to callers
	GasEstimate = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bridge_gas_estimate",
			Help:    "Advisory gas estimates for bridge operations",
			Buckets: []float64{100000, 200000, 300000, 500000, 750000, 1000000},
		},
		[]string{"destination_chain"},
	)

	// ErrorsTotal counts errors by component and category
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "category"},
	)
)
