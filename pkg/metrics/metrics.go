package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bulletin", Name: "mutations_total", Help: "Number of applied board mutations by action."},
		[]string{"action"},
	)
	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bulletin", Name: "broadcasts_total", Help: "Number of realtime broadcasts by topic."},
		[]string{"topic"},
	)
	StatAppendsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "bulletin", Name: "stat_appends_total", Help: "Number of records appended to the stat log."},
	)
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "bulletin", Name: "connected_clients", Help: "Currently connected realtime clients."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bulletin", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bulletin", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(MutationsTotal)
	reg.MustRegister(BroadcastsTotal)
	reg.MustRegister(StatAppendsTotal)
	reg.MustRegister(ConnectedClients)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
