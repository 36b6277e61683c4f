package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"review_sentiment/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()
	if reg != observability.InitRegistry() {
		t.Fatalf("expected InitRegistry to return the same registry")
	}

	// record one sample so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "reviews_http_requests_total") {
		t.Fatalf("expected reviews_http_requests_total in output")
	}
}

func TestObserveAnnotated(t *testing.T) {
	before := testutil.ToFloat64(observability.AnnotatedRows.WithLabelValues("Positive"))
	observability.ObserveAnnotated("Positive")
	observability.ObserveAnnotated("Positive")
	after := testutil.ToFloat64(observability.AnnotatedRows.WithLabelValues("Positive"))
	if after-before != 2 {
		t.Fatalf("expected +2 annotated rows, got %v", after-before)
	}
}
