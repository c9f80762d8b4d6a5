package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		remindersSentTotal,
		reminderSendFailuresTotal,
		usersDeactivatedTotal,
		completionsTotal,
		snoozesScheduledTotal,
	)
}

var (
	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Reminders delivered, labeled by kind.",
		},
		[]string{"kind"}, // 'daily', 'sunset', 'snooze'
	)

	reminderSendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_send_failures_total",
			Help: "Reminder deliveries that failed, labeled by kind.",
		},
		[]string{"kind"},
	)

	usersDeactivatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "users_deactivated_total",
			Help: "Users deactivated after blocking the bot.",
		},
	)

	completionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tefillin_completions_total",
			Help: "Total tefillin_done confirmations.",
		},
	)

	snoozesScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snoozes_scheduled_total",
			Help: "Total snooze jobs scheduled.",
		},
	)
)

func IncReminderSent(kind string)    { remindersSentTotal.WithLabelValues(kind).Inc() }
func IncReminderFailure(kind string) { reminderSendFailuresTotal.WithLabelValues(kind).Inc() }
func IncUserDeactivated()            { usersDeactivatedTotal.Inc() }
func IncCompletion()                 { completionsTotal.Inc() }
func IncSnoozeScheduled()            { snoozesScheduledTotal.Inc() }
