package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	uploadStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studymate_upload_started_total",
		Help: "Total document uploads started",
	})
	uploadCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studymate_upload_completed_total",
		Help: "Total document uploads that produced a document record",
	})
	uploadFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studymate_upload_failed_total",
		Help: "Total document uploads that failed, by failure category",
	}, []string{"category"})

	uploadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studymate_upload_duration_seconds",
		Help:    "Upload pipeline duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studymate_http_requests_total",
		Help: "Total HTTP requests handled by the API",
	}, []string{"method", "route", "status"})
)

// IncUploadStarted increments the started counter.
func IncUploadStarted() {
	uploadStartedTotal.Inc()
}

// IncUploadCompleted increments the completed counter.
func IncUploadCompleted() {
	uploadCompletedTotal.Inc()
}

// IncUploadFailed increments the failed counter for a failure category.
func IncUploadFailed(category string) {
	if category == "" {
		category = "unknown"
	}
	uploadFailedTotal.WithLabelValues(category).Inc()
}

// ObserveUploadDuration records how long an upload pipeline ran.
func ObserveUploadDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	uploadDuration.Observe(d.Seconds())
}

// Middleware counts requests by route template so ids do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
