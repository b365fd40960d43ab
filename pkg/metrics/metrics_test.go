package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecordValues(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncStockMovement("in")
	m.IncStockMovement("in")
	m.IncStockMovement("out")
	m.IncStockRejected("insufficient_stock")
	m.AddImportRows(4, 1)
	m.IncEmail("sent")
	m.ObserveRequest(http.MethodGet, "/api/items", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.stockMovements.WithLabelValues("in")); got != 2 {
		t.Fatalf("expected 2 inbound movements, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockMovements.WithLabelValues("out")); got != 1 {
		t.Fatalf("expected 1 outbound movement, got %v", got)
	}
	if got := testutil.ToFloat64(m.importRows.WithLabelValues("failed")); got != 1 {
		t.Fatalf("expected 1 failed row, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/items", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}
	if got := testutil.ToFloat64(m.stockRejected.WithLabelValues("insufficient_stock")); got != 1 {
		t.Fatalf("expected 1 rejection, got %v", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.IncStockMovement("in")
	m.AddImportRows(1, 1)
	m.IncEmail("failed")
	m.ObserveRequest(http.MethodGet, "", 500, time.Second)

	empty := New(nil)
	empty.IncStockMovement("in")
}
