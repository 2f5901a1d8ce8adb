// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 5c6d7e8f-9a0b-1c2d-3e4f-5a6b7c8d9e0f

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	parseStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cratestats",
		Name:      "parse_jobs_started_total",
		Help:      "Total number of library parse jobs started",
	})
	parseCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cratestats",
		Name:      "parse_jobs_completed_total",
		Help:      "Total number of library parse jobs completed successfully",
	})
	parseFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cratestats",
		Name:      "parse_jobs_failed_total",
		Help:      "Total number of library parse jobs failed by error kind",
	}, []string{"kind"})
	parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "cratestats",
		Name:      "parse_duration_seconds",
		Help:      "Histogram of parse job durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10), // ~50ms up to a couple of minutes
	})

	tracksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cratestats",
		Name:      "library_tracks_total",
		Help:      "Number of tracks in the most recently parsed library",
	})
	playlistsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cratestats",
		Name:      "library_playlists_total",
		Help:      "Number of playlist nodes in the most recently parsed library",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(parseStarted, parseCompleted, parseFailed, parseDuration,
			tracksGauge, playlistsGauge)
	})
}

// Parse job lifecycle helpers
func IncParseStarted()           { parseStarted.Inc() }
func IncParseCompleted()         { parseCompleted.Inc() }
func IncParseFailed(kind string) { parseFailed.WithLabelValues(kind).Inc() }
func ObserveParseDuration(d time.Duration) {
	parseDuration.Observe(d.Seconds())
}

// Gauges
func SetTracks(n int)    { tracksGauge.Set(float64(n)) }
func SetPlaylists(n int) { playlistsGauge.Set(float64(n)) }
