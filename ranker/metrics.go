package ranker

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK         = "ok"
	outcomeSuperseded = "superseded"
	outcomeFailed     = "failed"
)

var (
	scoringPasses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tootmux",
		Subsystem: "ranker",
		Name:      "scoring_passes_total",
		Help:      "Scoring passes by outcome.",
	}, []string{"feed_wide", "outcome"})

	scoringPassSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tootmux",
		Subsystem: "ranker",
		Name:      "scoring_pass_seconds",
		Help:      "Duration of completed scoring passes.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"feed_wide"})

	scoredToots = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tootmux",
		Subsystem: "ranker",
		Name:      "scored_toots_total",
		Help:      "Toots scored by completed passes.",
	})
)

func init() {
	prometheus.MustRegister(scoringPasses, scoringPassSeconds, scoredToots)
}

func feedWideLabel(isFeedWide bool) string {
	if isFeedWide {
		return "true"
	}
	return "false"
}
