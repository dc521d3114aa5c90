package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReconciliationMetricsCountOutcomes(t *testing.T) {
	m := newReconciliationMetrics(prometheus.NewRegistry(), Config{ServiceName: "ispbilling", Environment: "test"})

	m.ObserveOutcome(OutcomeMatched)
	m.ObserveOutcome(OutcomeMatched)
	m.ObserveOutcome(OutcomeDuplicate)
	m.AddApplied(25000)
	m.AddApplied(-1)
	m.AddOverdue(3)

	if got := testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeMatched)); got != 2 {
		t.Fatalf("matched count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.outcomes.WithLabelValues(OutcomeDuplicate)); got != 1 {
		t.Fatalf("duplicate count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.appliedUnits); got != 25000 {
		t.Fatalf("applied units = %v, want 25000", got)
	}
	if got := testutil.ToFloat64(m.overdueBills); got != 3 {
		t.Fatalf("overdue bills = %v, want 3", got)
	}
}

func TestReconciliationMetricsNilReceiverIsSafe(t *testing.T) {
	var m *ReconciliationMetrics
	m.ObserveOutcome(OutcomeFailed)
	m.AddApplied(100)
	m.AddOverdue(1)
}

func TestHTTPMiddlewareObservesRequests(t *testing.T) {
	m := NewHTTPMetrics(prometheus.NewRegistry(), Config{ServiceName: "ispbilling", Environment: "test"})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/bills/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/bills/42", nil))
	}

	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Fatalf("in-flight gauge = %v, want 0 after requests finish", got)
	}
	// Route template, not the raw path, keys the histogram.
	count := testutil.CollectAndCount(m.requestDuration, "ispbilling_http_request_duration_ms")
	if count != 1 {
		t.Fatalf("expected 1 labelled series, got %d", count)
	}
}

func TestConstLabelsDefaultWhenUnset(t *testing.T) {
	labels := constLabelsFor(Config{})
	if labels["service"] != "ispbilling" || labels["env"] != "unknown" {
		t.Fatalf("unexpected default labels: %v", labels)
	}
}
