package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	clients       prometheus.Gauge
	volumeChanges prometheus.Counter
	rejected      *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "volctl_relay_clients",
			Help: "Number of connected sync agents",
		}),
		volumeChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "volctl_relay_volume_changes_total",
			Help: "Total number of relayed volume changes",
		}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "volctl_relay_rejected_total",
			Help: "Total number of rejected client messages",
		}, []string{"reason"}),
	}
}
