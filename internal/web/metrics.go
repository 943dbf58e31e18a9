package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retromgr_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retromgr_uploads_total",
		Help: "Uploaded files by kind (bios, rom) and outcome (stored, rejected)",
	}, []string{"kind", "outcome"})

	uploadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retromgr_upload_bytes_total",
		Help: "Bytes stored by uploads, by kind",
	}, []string{"kind"})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
