// Package metrics exposes Prometheus collectors for bot-level moderation
// events. HTTP traffic metrics live in the gateway middleware; the counters
// here track what the moderation engine actually did with each message.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// MessagesProcessed counts every inbound message handed to the engine,
	// commands and free text alike.
	MessagesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kootbot_messages_processed_total",
		Help: "Total inbound chat messages processed by the moderation engine.",
	})

	// CommandsHandled counts recognized commands by name.
	CommandsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kootbot_commands_handled_total",
		Help: "Total recognized bot commands executed.",
	}, []string{"command"})

	// TermsDetected counts vocabulary matches by term, tracked users only.
	TermsDetected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kootbot_terms_detected_total",
		Help: "Total vocabulary term matches recorded against tracked users.",
	}, []string{"term"})

	// WarningsSent counts warning replies that passed the cooldown gate.
	WarningsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kootbot_warnings_sent_total",
		Help: "Total warning replies emitted.",
	})

	// WarningsThrottled counts warnings suppressed by the cooldown gate.
	WarningsThrottled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kootbot_warnings_throttled_total",
		Help: "Total warning replies suppressed by the cooldown gate.",
	})
)

func init() {
	prometheus.MustRegister(
		MessagesProcessed,
		CommandsHandled,
		TermsDetected,
		WarningsSent,
		WarningsThrottled,
	)
}
