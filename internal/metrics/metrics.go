// Package metrics defines the Prometheus metrics of the hierarchy service
// and the bus subscriber that feeds them from org events.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/salesdesk/internal/core/events"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesdesk"

// OrgOperationsTotal counts committed hierarchy changes.
// Label:
//   - event_type: the org event published for the change (e.g. "org.user.moved")
var OrgOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "org_operations_total",
		Help:      "Total number of committed org hierarchy changes, by event type.",
	},
	[]string{"event_type"},
)

// OrgMovesRejectedTotal counts reparent attempts refused because they would
// create a reporting cycle.
var OrgMovesRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "org_moves_rejected_total",
		Help:      "Total number of hierarchy moves rejected as cycles.",
	},
)

// HTTPRequestsTotal counts served requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route pattern and status code.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// Subscribe wires the org event counters to the bus.
func Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(events.OrgEventTypes, func(_ context.Context, event events.Event) error {
		if event.EventType() == events.EventTypeOrgMoveBlocked {
			OrgMovesRejectedTotal.Inc()
			return nil
		}
		OrgOperationsTotal.WithLabelValues(event.EventType()).Inc()
		return nil
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
