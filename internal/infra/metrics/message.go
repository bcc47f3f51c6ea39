package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	messageHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_messages_handled_total",
			Help: "Inbound WhatsApp messages handled, by resulting action.",
		},
		[]string{"action"},
	)
)

func init() {
	register(messageHandledTotal)
}

// IncMessageHandled counts one handled inbound message under the given action
// (events_created, query_answered, unrecognized, rate_limited, ...).
func IncMessageHandled(action string) {
	messageHandledTotal.WithLabelValues(norm(action)).Inc()
}
