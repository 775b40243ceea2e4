package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "vqa"

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	imagePreprocessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_preprocess_total",
			Help:      "Number of preprocessed images",
		},
		[]string{"status", "format"},
	)

	imagePreprocessDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_preprocess_duration_seconds",
			Help:      "Image preprocessing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status", "format"},
	)

	answersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Number of answers served, by source",
		},
		[]string{"source"},
	)
)

const (
	SourceCache = "cache"
	SourceModel = "model"
)

func HttpRequestsTotal(method, path, code string) {
	httpRequestsTotal.With(prometheus.Labels{
		"method": method,
		"path":   path,
		"code":   code,
	}).Inc()
}

func HttpRequestDuration(method, path string, duration time.Duration) {
	httpRequestDuration.With(prometheus.Labels{
		"method": method,
		"path":   path,
	}).Observe(duration.Seconds())
}

func ImagePreprocessTotal(status, format string) {
	imagePreprocessTotal.With(prometheus.Labels{
		"status": status,
		"format": format,
	}).Inc()
}

func ImagePreprocessDuration(status, format string, duration time.Duration) {
	imagePreprocessDuration.With(prometheus.Labels{
		"status": status,
		"format": format,
	}).Observe(duration.Seconds())
}

func AnswersTotal(source string) {
	answersTotal.WithLabelValues(source).Inc()
}

// Middleware records request count and latency. Paths are reported as the
// matched chi route pattern so that label cardinality stays bounded.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		HttpRequestsTotal(r.Method, path, strconv.Itoa(status))
		HttpRequestDuration(r.Method, path, time.Since(start))
	})
}
