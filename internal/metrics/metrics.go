// Package metrics provides Prometheus metrics for the Pokido backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pokido_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Vision (Gemini) Metrics
	VisionRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokido_vision_requests_total",
			Help: "Total number of vision extraction calls sent upstream",
		},
	)

	VisionCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokido_vision_cache_hits_total",
			Help: "Vision extractions served from the image hash cache",
		},
	)

	VisionAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokido_vision_api_latency_seconds",
			Help:    "Vision API call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10},
		},
	)

	VisionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_vision_errors_total",
			Help: "Vision extraction errors by type",
		},
		[]string{"type"}, // "network", "read", "api", "parse", "empty", "unparsable"
	)

	// Catalog Metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_catalog_requests_total",
			Help: "Outbound catalog requests by endpoint",
		},
		[]string{"endpoint"}, // "search", "detail", "image_fallback"
	)

	CatalogErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_catalog_errors_total",
			Help: "Outbound catalog errors by endpoint",
		},
		[]string{"endpoint"},
	)

	CatalogCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pokido_catalog_cache_hits_total",
			Help: "Card detail lookups served from cache",
		},
	)

	// Resolution Metrics
	ResolutionBranchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_resolution_branch_total",
			Help: "Which selection branch the resolver took",
		},
		[]string{"branch"}, // "first", "exact", "near", "fallback", "set_size", "set_size_fallback"
	)

	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_scans_total",
			Help: "Scan and lookup requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pokido_scan_duration_seconds",
			Help:    "End-to-end time of a scan or lookup",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
	)

	// Album Metrics
	// Album keys come from clients, so this is not labelled by album
	AlbumCardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pokido_album_cards_total",
			Help: "Number of distinct cards in the most recently written album",
		},
	)

	AlbumWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pokido_album_writes_total",
			Help: "Album mutations by operation",
		},
		[]string{"operation"}, // "add", "rescan", "import"
	)
)

// GinMiddleware records request count and latency per route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
