package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	captures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "captures_total",
			Help:      "Number of capture operations by result.",
		}, []string{"result"},
	)
	restores = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "restores_total",
			Help:      "Number of restore operations by result.",
		}, []string{"result"},
	)
	captureEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "capture_entries_total",
			Help:      "Per-application capture outcomes.",
		}, []string{"outcome"},
	)
	restoreEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "restore_entries_total",
			Help:      "Per-application restore outcomes.",
		}, []string{"outcome"},
	)
	captureDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "capture_duration_seconds",
			Help:      "Wall time of whole capture operations.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	restoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "restore_duration_seconds",
			Help:      "Wall time of whole restore operations.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	readinessWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "restage",
			Subsystem: "workspace",
			Name:      "readiness_wait_seconds",
			Help:      "Time spent waiting for launched applications to accept automation.",
			Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32},
		},
	)
)

// Register registers all collectors on r. Already-registered
// collectors are tolerated so embedding callers can share a registry.
func Register(r prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		captures, restores, captureEntries, restoreEntries,
		captureDuration, restoreDuration, readinessWait,
	}
	for _, c := range collectors {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Registered reports whether Register completed at least once.
func Registered() bool { return regOK.Load() }

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler { return promhttp.Handler() }

func ObserveCapture(result string, took time.Duration) {
	captures.WithLabelValues(result).Inc()
	captureDuration.Observe(took.Seconds())
}

func ObserveRestore(result string, took time.Duration) {
	restores.WithLabelValues(result).Inc()
	restoreDuration.Observe(took.Seconds())
}

func ObserveCaptureEntry(outcome string) { captureEntries.WithLabelValues(outcome).Inc() }

func ObserveRestoreEntry(outcome string) { restoreEntries.WithLabelValues(outcome).Inc() }

func ObserveReadinessWait(d time.Duration) { readinessWait.Observe(d.Seconds()) }
