package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics bundles the Prometheus instruments one WorldSimulation
// reports through FPSMonitor and the tick loop, registered via
// promauto so construction and registration can't drift apart.
type metrics struct {
	tickDuration   prometheus.Histogram
	observedFPS    prometheus.Gauge
	entityCount    prometheus.Gauge
	outboundQueued prometheus.Gauge
	outboundDropped prometheus.Counter
	phaseTransitions prometheus.Counter
	damageEvents   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, zx, zy int32) *metrics {
	labels := prometheus.Labels{"zone": gridLabel(zx, zy)}
	factory := promauto.With(reg)
	return &metrics{
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "actionserver_tick_duration_seconds",
			Help:        "Wall-clock duration of one simulation tick.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}),
		observedFPS: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "actionserver_observed_tick_rate",
			Help:        "FPSMonitor's rolling observed tick rate.",
			ConstLabels: labels,
		}),
		entityCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "actionserver_entity_count",
			Help:        "Live entity count in this zone's EntityStore.",
			ConstLabels: labels,
		}),
		outboundQueued: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "actionserver_outbound_queue_depth",
			Help:        "Pending fire-and-forget outbound RPC jobs.",
			ConstLabels: labels,
		}),
		outboundDropped: factory.NewCounter(prometheus.CounterOpts{
			Name:        "actionserver_outbound_dropped_total",
			Help:        "Outbound RPC jobs dropped because the dispatcher queue was full.",
			ConstLabels: labels,
		}),
		phaseTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name:        "actionserver_phase_transitions_total",
			Help:        "Count of GamePhase transitions.",
			ConstLabels: labels,
		}),
		damageEvents: factory.NewCounter(prometheus.CounterOpts{
			Name:        "actionserver_damage_events_total",
			Help:        "Count of DamageEvent entries appended to the ledger.",
			ConstLabels: labels,
		}),
	}
}

func gridLabel(zx, zy int32) string {
	return itoa(zx) + "," + itoa(zy)
}

func itoa(v int32) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [12]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
