package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUploadCounters(t *testing.T) {
	before := testutil.ToFloat64(uploadFailedTotal.WithLabelValues("network"))
	IncUploadFailed("network")
	after := testutil.ToFloat64(uploadFailedTotal.WithLabelValues("network"))
	if after-before != 1 {
		t.Fatalf("expected network failures to grow by 1, got %v", after-before)
	}

	beforeUnknown := testutil.ToFloat64(uploadFailedTotal.WithLabelValues("unknown"))
	IncUploadFailed("")
	if got := testutil.ToFloat64(uploadFailedTotal.WithLabelValues("unknown")) - beforeUnknown; got != 1 {
		t.Fatalf("expected empty category to count as unknown, got %v", got)
	}
}

func TestHandlerExposesRouteCounter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/v1/subjects/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/subjects/abc", nil))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `route="/api/v1/subjects/:id"`) {
		t.Fatalf("expected templated route label, got %s", body)
	}
	if strings.Contains(body, "/api/v1/subjects/abc") {
		t.Fatalf("raw path leaked into labels")
	}
}
