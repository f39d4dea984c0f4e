package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	BillsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "billing",
			Name:      "bills_created_total",
			Help:      "Total number of bills created by service type",
		},
		[]string{"service_type"},
	)
	BillTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "billing",
			Name:      "bill_transitions_total",
			Help:      "Bill workflow transitions (approved, cancelled, deleted)",
		},
		[]string{"action"},
	)
	BillPayments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "billing",
			Name:      "bill_payments_total",
			Help:      "Payments recorded by resulting payment status",
		},
		[]string{"payment_status"},
	)
	ServiceApprovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "agency",
			Subsystem: "services",
			Name:      "payment_approvals_total",
			Help:      "Service payment approvals by service kind and level",
		},
		[]string{"service", "level"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "agency",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics(log *logrus.Logger) {
	for _, c := range []prometheus.Collector{BillsCreated, BillTransitions, BillPayments, ServiceApprovals, HTTPRequestDuration} {
		if err := prometheus.Register(c); err != nil {
			log.WithError(err).Error("failed to register metric")
		}
	}
}
