package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(leaderGauge, leaseTransitionsTotal, telegramCommandsReceivedTotal)
}

var (
	leaderGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "leader_lease_held",
			Help: "1 while this instance holds the leader lease, 0 otherwise.",
		},
	)

	leaseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leader_lease_transitions_total",
			Help: "Lease acquisitions and losses.",
		},
		[]string{"event"}, // 'acquired', 'lost', 'released'
	)

	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands and callbacks from users.",
		},
		[]string{"command"},
	)
)

func SetLeader(held bool) {
	if held {
		leaderGauge.Set(1)
		return
	}
	leaderGauge.Set(0)
}

func IncLeaseTransition(event string) { leaseTransitionsTotal.WithLabelValues(event).Inc() }
func IncCommand(command string)       { telegramCommandsReceivedTotal.WithLabelValues(command).Inc() }
