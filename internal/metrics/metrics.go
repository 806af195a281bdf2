// Package metrics exposes playback, render and recording metrics for
// Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pitchperfect"

// Status constants for metric labels.
const (
	statusSuccess = "success"
	statusError   = "error"
	statusCached  = "cached"
)

var (
	// playsTotal counts play requests that started a cycle, by effect.
	playsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plays_total",
			Help:      "Total number of playback cycles started",
		},
		[]string{"effect"},
	)

	// stopsTotal counts cycles ended by an explicit stop.
	stopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stops_total",
			Help:      "Total number of playback cycles stopped by the user",
		},
	)

	// completionsTotal counts cycles that finished naturally.
	completionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Total number of playback cycles that played to the end",
		},
	)

	// errorsTotal counts playback failures by kind.
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of playback errors",
		},
		[]string{"kind"}, // kind: file, graph, engine
	)

	// completionDelay is a histogram of armed completion delays.
	completionDelay = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "completion_delay_seconds",
			Help:      "Delay between render completion and audible completion",
			Buckets:   []float64{0, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// chainLength is the number of stages in the live graph.
	chainLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of stages in the most recently started playback graph",
		},
	)

	// rendersTotal counts offline renders.
	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Total number of offline renders",
		},
		[]string{"status"}, // status: success, error, cached
	)

	// renderDuration is a histogram of offline render time.
	renderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Histogram of offline render duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// recordingsTotal counts finished recordings.
	recordingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_total",
			Help:      "Total number of recordings",
		},
		[]string{"status"},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		playsTotal,
		stopsTotal,
		completionsTotal,
		errorsTotal,
		completionDelay,
		chainLength,
		rendersTotal,
		renderDuration,
		recordingsTotal,
	}
)

// RecordPlay records a started cycle.
func RecordPlay(effect string, stages int) {
	playsTotal.WithLabelValues(effect).Inc()
	chainLength.Set(float64(stages))
}

// RecordStop records an explicit stop.
func RecordStop() {
	stopsTotal.Inc()
}

// RecordCompletion records a cycle that played to the end.
func RecordCompletion() {
	completionsTotal.Inc()
}

// RecordError records a playback failure.
func RecordError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCompletionDelay records an armed completion delay.
func RecordCompletionDelay(seconds float64) {
	completionDelay.Observe(seconds)
}

// RecordRender records an offline render.
func RecordRender(err error, cached bool, seconds float64) {
	switch {
	case err != nil:
		rendersTotal.WithLabelValues(statusError).Inc()
	case cached:
		rendersTotal.WithLabelValues(statusCached).Inc()
	default:
		rendersTotal.WithLabelValues(statusSuccess).Inc()
		renderDuration.Observe(seconds)
	}
}

// RecordRecording records a finished or failed recording.
func RecordRecording(err error) {
	if err != nil {
		recordingsTotal.WithLabelValues(statusError).Inc()
		return
	}
	recordingsTotal.WithLabelValues(statusSuccess).Inc()
}
