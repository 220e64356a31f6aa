// Package metrics collects and exposes Prometheus metrics for the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records dispatch activity. It satisfies standup.Metrics.
type Collector struct {
	events          prometheus.Counter
	commands        *prometheus.CounterVec
	denied          *prometheus.CounterVec
	outbound        prometheus.Counter
	failures        *prometheus.CounterVec
	dispatchLatency prometheus.Histogram
}

// NewCollector registers the bot's metrics on the given registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fetchbot_events_total",
			Help: "Incoming message events received.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fetchbot_commands_total",
			Help: "Parsed commands by kind.",
		}, []string{"kind"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fetchbot_commands_denied_total",
			Help: "Commands rejected by the authorization policy, by kind.",
		}, []string{"kind"}),
		outbound: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fetchbot_outbound_messages_total",
			Help: "Messages posted back to Slack.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fetchbot_collaborator_failures_total",
			Help: "Storage or notifier failures by operation.",
		}, []string{"op"}),
		dispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fetchbot_dispatch_latency_seconds",
			Help:    "Time to process one incoming message.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.events, c.commands, c.denied, c.outbound, c.failures, c.dispatchLatency)
	return c
}

func (c *Collector) RecordEvent() {
	c.events.Inc()
}

func (c *Collector) RecordCommand(kind string) {
	c.commands.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordDenied(kind string) {
	c.denied.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordOutbound() {
	c.outbound.Inc()
}

func (c *Collector) RecordFailure(op string) {
	c.failures.WithLabelValues(op).Inc()
}

func (c *Collector) RecordDispatchLatency(d time.Duration) {
	c.dispatchLatency.Observe(d.Seconds())
}
