package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ObservationsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fadescalps_observations_total",
			Help: "Price observations accepted into the engine (by symbol).",
		},
		[]string{"symbol"},
	)

	ObservationsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fadescalps_observations_rejected_total",
			Help: "Price observations rejected before any state change (by cause).",
		},
		[]string{"cause"},
	)

	TradesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fadescalps_trades_total",
			Help: "Trades emitted by the engine (by reason).",
		},
		[]string{"reason"},
	)

	PositionGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fadescalps_position_shares",
			Help: "Current signed position per symbol.",
		},
		[]string{"symbol"},
	)

	CapClamps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fadescalps_cap_clamps_total",
			Help: "Expansion targets clamped to the position cap.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		ObservationsProcessed,
		ObservationsRejected,
		TradesEmitted,
		PositionGauge,
		CapClamps,
	)
}
