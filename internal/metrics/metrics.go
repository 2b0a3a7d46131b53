package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the shop's Prometheus collectors.
type Metrics struct {
	ordersSubmitted prometheus.Counter
	ordersConfirmed prometheus.Counter
	ordersRejected  prometheus.Counter
	ordersCancelled prometheus.Counter
	stockConflicts  prometheus.Counter

	notificationAttempts prometheus.Counter
	notificationFailures prometheus.Counter

	httpDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

func New() *Metrics {
	return newWithRegistry(prometheus.NewRegistry())
}

func newWithRegistry(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_submitted_total",
			Help: "Total number of orders submitted at checkout",
		}),
		ordersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_confirmed_total",
			Help: "Total number of orders confirmed by an admin",
		}),
		ordersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_rejected_total",
			Help: "Total number of orders rejected by an admin",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_orders_cancelled_total",
			Help: "Total number of confirmed orders cancelled",
		}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_stock_conflicts_total",
			Help: "Total number of confirmations aborted because stock ran out",
		}),
		notificationAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_notification_attempts_total",
			Help: "Total number of order notification attempts",
		}),
		notificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_notification_failures_total",
			Help: "Total number of order notifications that never went out",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		registry: registry,
	}

	registry.MustRegister(
		m.ordersSubmitted,
		m.ordersConfirmed,
		m.ordersRejected,
		m.ordersCancelled,
		m.stockConflicts,
		m.notificationAttempts,
		m.notificationFailures,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) OrderSubmitted()       { m.ordersSubmitted.Inc() }
func (m *Metrics) OrderConfirmed()       { m.ordersConfirmed.Inc() }
func (m *Metrics) OrderRejected()        { m.ordersRejected.Inc() }
func (m *Metrics) OrderCancelled()       { m.ordersCancelled.Inc() }
func (m *Metrics) StockConflict()        { m.stockConflicts.Inc() }
func (m *Metrics) NotificationAttempt()  { m.notificationAttempts.Inc() }
func (m *Metrics) NotificationFailure()  { m.notificationFailures.Inc() }

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request durations per method and path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		m.httpDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}
