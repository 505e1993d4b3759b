// Package telemetry holds the Prometheus metrics of a node.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	EnvelopesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rumor",
			Name:      "envelopes_received_total",
			Help:      "Envelopes received, by body type.",
		},
		[]string{"type"},
	)

	EnvelopesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rumor",
			Name:      "envelopes_sent_total",
			Help:      "Envelopes sent, by body type.",
		},
		[]string{"type"},
	)

	GossipValuesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rumor",
			Name:      "gossip_values_sent_total",
			Help:      "Values pushed to neighbors, retransmissions included.",
		},
	)

	AcceptedValues = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rumor",
			Name:      "accepted_values",
			Help:      "Number of distinct values accepted by this node.",
		},
	)

	Neighbors = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rumor",
			Name:      "neighbors",
			Help:      "Number of direct neighbors in the topology.",
		},
	)

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rumor",
			Name:      "build_info",
			Help:      "Build info (constant 1, labeled by version).",
		},
		[]string{"version"},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "rumor",
			Name:      "uptime_seconds",
			Help:      "Process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(EnvelopesReceived, EnvelopesSent, GossipValuesSent,
		AcceptedValues, Neighbors, buildInfo, uptime)
}

// MetricsHandler exposes /metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// SetBuildInfo should be called once at startup.
func SetBuildInfo(version string) {
	buildInfo.WithLabelValues(version).Set(1)
}
