package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	GiftItemsAdded     prometheus.Counter
	GiftItemsRemoved   prometheus.Counter
	PurchasesCompleted prometheus.Counter
	PurchaseConflicts  prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates all metrics and registers them on the given registerer.
// Passing prometheus.NewRegistry() keeps tests isolated from the default
// registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GiftItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftlist_items_added_total",
			Help: "Total number of gift item add operations (creates and increments).",
		}),
		GiftItemsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftlist_items_removed_total",
			Help: "Total number of gift item remove operations.",
		}),
		PurchasesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftlist_purchases_total",
			Help: "Total number of completed purchases.",
		}),
		PurchaseConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giftlist_purchase_conflicts_total",
			Help: "Purchase attempts rejected because item capacity was exhausted.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "giftlist_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(
		m.GiftItemsAdded,
		m.GiftItemsRemoved,
		m.PurchasesCompleted,
		m.PurchaseConflicts,
		m.RequestDuration,
	)
	return m
}
