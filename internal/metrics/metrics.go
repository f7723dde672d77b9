package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var BracketsGenerated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "federation_brackets_generated_total",
	Help: "Number of brackets generated, regenerations included",
})

var ByesResolved = promauto.NewCounter(prometheus.CounterOpts{
	Name: "federation_byes_resolved_total",
	Help: "Number of matches resolved automatically as byes",
})

var MatchCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "federation_match_completions_total",
	Help: "Match completion attempts by outcome",
}, []string{"outcome"})

var MedalsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "federation_medals_awarded_total",
	Help: "Medals credited to athletes by colour",
}, []string{"medal"})

var ResultsProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "federation_results_processing_duration_seconds",
	Help:    "Duration of competition results processing",
	Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "federation_http_request_duration_seconds",
	Help: "Duration of HTTP requests by route pattern",
}, []string{"method", "route", "status"})
