// Package metrics defines the Prometheus collectors exported by every service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by service, route, method and status."},
		[]string{"service", "route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"service", "route", "method"},
	)
	UploadFilesSaved = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "upload_files_saved_total", Help: "Uploaded files written to disk."},
	)
	UploadFilesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "upload_files_removed_total", Help: "Uploaded files removed after a failed request."},
	)
	UploadRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "upload_rejected_total", Help: "Upload requests rejected, by reason."},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPLatency, UploadFilesSaved, UploadFilesRemoved, UploadRejected)
}

// Handler exposes the default registry
func Handler() http.Handler { return promhttp.Handler() }
