package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(usersRegisteredTotal) }

var usersRegisteredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "users_registered_total",
		Help: "Total number of new users registered.",
	},
)

func IncUsersRegistered() {
	usersRegisteredTotal.Inc()
}
