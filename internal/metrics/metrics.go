package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FiguresComputed counts derived figures by figure (elapsed/totals) and outcome kind.
	FiguresComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_quality_figures_computed_total",
			Help: "Number of time-in-state figures computed, by figure and outcome.",
		},
		[]string{"figure", "outcome"},
	)

	// SkippedEvents counts timeline events dropped for an unparseable timestamp.
	SkippedEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vehicle_quality_skipped_events_total",
			Help: "Timeline events skipped during accumulation because of a malformed timestamp.",
		},
	)

	// EventsRecorded counts timeline events by source (http/mqtt) and result.
	EventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vehicle_quality_events_recorded_total",
			Help: "Timeline events received, by source and result.",
		},
		[]string{"source", "result"},
	)

	// HTTPRequestDuration observes API latency by route template.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vehicle_quality_http_request_duration_seconds",
			Help:    "Latency of API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "code"},
	)
)

func init() {
	prometheus.MustRegister(FiguresComputed)
	prometheus.MustRegister(SkippedEvents)
	prometheus.MustRegister(EventsRecorded)
	prometheus.MustRegister(HTTPRequestDuration)
}
