package recommendation

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendationsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Count of recommendation lists served by strategy.",
		},
		[]string{"strategy"},
	)
)

func init() {
	prometheus.MustRegister(RecommendationsServedTotal)
}
