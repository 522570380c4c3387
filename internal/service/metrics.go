package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	contentWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_content_writes_total",
			Help: "Content writes by operation",
		},
		[]string{"operation"},
	)

	webhookDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cms_webhook_deliveries_total",
			Help: "Webhook deliveries by event and result",
		},
		[]string{"event", "result"},
	)

	webhookDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cms_webhook_delivery_duration_seconds",
			Help:    "Webhook delivery duration including retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)
)
