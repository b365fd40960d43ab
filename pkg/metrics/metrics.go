package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is valid
// and records nothing, which keeps services usable without a registry.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	stockMovements *prometheus.CounterVec
	stockRejected  *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	emails         *prometheus.CounterVec
}

// New registers the application collectors plus the Go runtime collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_total",
			Help: "Ledger transactions recorded by type.",
		}, []string{"type"}),
		stockRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_movements_rejected_total",
			Help: "Ledger transactions rejected by reason.",
		}, []string{"reason"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "excel_import_rows_total",
			Help: "Excel import rows by result.",
		}, []string{"result"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "purchase_order_emails_total",
			Help: "Purchase order emails by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.stockMovements,
		m.stockRejected,
		m.importRows,
		m.emails,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Metrics) IncStockMovement(txType string) {
	if m == nil || m.stockMovements == nil {
		return
	}
	m.stockMovements.WithLabelValues(normalizeLabel(txType)).Inc()
}

func (m *Metrics) IncStockRejected(reason string) {
	if m == nil || m.stockRejected == nil {
		return
	}
	m.stockRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *Metrics) AddImportRows(success, failed int) {
	if m == nil || m.importRows == nil {
		return
	}
	m.importRows.WithLabelValues("success").Add(float64(success))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) IncEmail(result string) {
	if m == nil || m.emails == nil {
		return
	}
	m.emails.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "unknown"
	}
	return v
}
