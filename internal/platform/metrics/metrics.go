// Package metrics define las métricas Prometheus del registro.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vetregistry_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	VisitMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vetregistry_visit_mutations_total",
			Help: "Committed visit mutations by operation",
		},
		[]string{"operation"},
	)

	DuplicateNumbers = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vetregistry_duplicate_number_total",
			Help: "Visit inserts rejected because the record number already existed",
		},
	)

	AuditAppendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vetregistry_audit_append_failures_total",
			Help: "Best-effort audit appends that failed",
		},
	)
)

// Registry propio: los tests pueden crear routers sin chocar con el registry global.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(RequestDuration, VisitMutations, DuplicateNumbers, AuditAppendFailures)
}

// Handler expone /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware mide duración por patrón de ruta chi (no por URL cruda, para acotar cardinalidad).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		RequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(time.Since(start).Seconds())
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
