package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Source search metrics
var (
	SourceSearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submatch_source_searches_total",
			Help: "Total number of searches run against a subtitle source, by outcome.",
		},
		[]string{"source", "status"},
	)

	SourceResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submatch_source_results_total",
			Help: "Total number of subtitle results parsed from a source.",
		},
		[]string{"source"},
	)

	SourceSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "submatch_source_search_duration_seconds",
			Help:    "Time spent searching a single source.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 45, 90},
		},
		[]string{"source"},
	)
)

// HTTP metrics
var (
	FetchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submatch_fetch_requests_total",
			Help: "Total number of HTTP fetches, by host and outcome.",
		},
		[]string{"host", "status"},
	)
)

// Subtitle download metrics
var (
	SubtitleDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_downloads_total",
			Help: "Total number of subtitle downloads.",
		},
		[]string{"status"},
	)
)

// Status label values.
const (
	StatusSuccess   = "success"
	StatusNoResults = "no_results"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusCached    = "cached"
)

func init() {
	prometheus.MustRegister(
		SourceSearchesTotal,
		SourceResultsTotal,
		SourceSearchDuration,
		FetchRequestsTotal,
		SubtitleDownloadsTotal,
	)
}
