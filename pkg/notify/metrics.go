package notify

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics belong to one Center. They are only exported when a registerer
// is supplied.
type metrics struct {
	entries     *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	acks        *prometheus.CounterVec
	plays       *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "notify",
				Subsystem: "center",
				Name:      "entries",
				Help:      "Entries currently held by the center, per table",
			},
			[]string{"table"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify",
				Subsystem: "center",
				Name:      "transitions_total",
				Help:      "Reconciliation transitions applied",
			},
			[]string{"transition"},
		),
		acks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify",
				Subsystem: "handler",
				Name:      "acks_total",
				Help:      "Acknowledgements reported by handlers",
			},
			[]string{"target", "ack"},
		),
		plays: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notify",
				Subsystem: "effects",
				Name:      "plays_total",
				Help:      "Effect playbacks granted to a consumer",
			},
			[]string{"consumer"},
		),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	var errs []error
	for _, c := range []prometheus.Collector{m.entries, m.transitions, m.acks, m.plays} {
		if err := r.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *metrics) setEntries(active, pending int) {
	m.entries.WithLabelValues("active").Set(float64(active))
	m.entries.WithLabelValues("pending").Set(float64(pending))
}

func (m *metrics) transition(t transition) {
	m.transitions.WithLabelValues(t.String()).Inc()
}

func (m *metrics) ack(t Target, ack string) {
	m.acks.WithLabelValues(t.String(), ack).Inc()
}

func (m *metrics) play(consumer Target) {
	m.plays.WithLabelValues(consumer.String()).Inc()
}
