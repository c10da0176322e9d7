package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelayOutcomes counts relay calls by outcome: ok, unconfigured, failed, empty.
	RelayOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitmind",
		Name:      "relay_calls_total",
		Help:      "AI relay calls by outcome.",
	}, []string{"outcome"})

	Topics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitmind",
		Name:      "chat_topics_total",
		Help:      "Single-turn chat messages by classified topic.",
	}, []string{"topic"})

	ChatJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitmind",
		Name:      "chat_jobs_total",
		Help:      "Async reply jobs by final status.",
	}, []string{"status"})
)
