package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	remindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_reminders_total",
			Help: "Reminder deliveries attempted by the sweep, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	register(remindersTotal)
}

func IncReminder(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	remindersTotal.WithLabelValues(result).Inc()
}
