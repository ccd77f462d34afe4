package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported on the metrics port.
type Metrics struct {
	registry *prometheus.Registry

	OrdersPlaced        *prometheus.CounterVec
	OrdersCompleted     prometheus.Counter
	BillsArchived       prometheus.Counter
	ReservationsExpired prometheus.Counter
	TablesOpen          prometheus.Gauge
	PendingOrders       *prometheus.GaugeVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		OrdersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tableside_orders_placed_total",
			Help: "Orders placed, by kitchen queue type.",
		}, []string{"queue_type"}),
		OrdersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tableside_orders_completed_total",
			Help: "Orders marked completed by kitchen staff.",
		}),
		BillsArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tableside_bills_archived_total",
			Help: "Bills archived on table close.",
		}),
		ReservationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tableside_reservations_expired_total",
			Help: "Reservations auto-expired by the background sweep.",
		}),
		TablesOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tableside_tables_open",
			Help: "Tables currently in an open dining session.",
		}),
		PendingOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tableside_pending_orders",
			Help: "Pending orders, by kitchen queue type.",
		}, []string{"queue_type"}),
	}

	registry.MustRegister(
		m.OrdersPlaced,
		m.OrdersCompleted,
		m.BillsArchived,
		m.ReservationsExpired,
		m.TablesOpen,
		m.PendingOrders,
	)

	return m
}

// Handler returns the scrape endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
