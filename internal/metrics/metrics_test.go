package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := newWithRegistry(prometheus.NewRegistry())

	m.OrderSubmitted()
	m.OrderSubmitted()
	m.OrderConfirmed()
	m.OrderRejected()
	m.OrderCancelled()
	m.StockConflict()
	m.NotificationAttempt()
	m.NotificationFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ordersSubmitted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ordersConfirmed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ordersRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ordersCancelled))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.stockConflicts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notificationAttempts))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.notificationFailures))
}

func TestHandler(t *testing.T) {
	m := newWithRegistry(prometheus.NewRegistry())
	m.OrderSubmitted()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "shop_orders_submitted_total 1"))
}

func TestMiddleware(t *testing.T) {
	m := newWithRegistry(prometheus.NewRegistry())

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}
