package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/voltbus/curtaild/core/metrics"
)

// PromSink records curtailment events in Prometheus metrics.
type PromSink struct {
	profiles *prometheus.CounterVec
	rate     *prometheus.GaugeVec
	cycles   prometheus.Counter
	duration prometheus.Histogram
	skipped  prometheus.Counter
}

// NewPromSink registers curtailment metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	profiles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "curtail_profiles_total",
		Help: "Total number of charge profiles dispatched",
	}, []string{"charger_id", "connector_id", "source"})
	rate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "curtail_charge_rate_kw",
		Help: "Last dispatched charge rate per connector in kW",
	}, []string{"charger_id", "connector_id"})
	cycles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curtail_cycles_total",
		Help: "Total number of completed recalculation cycles",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "curtail_cycle_duration_seconds",
		Help:    "Duration of a recalculation cycle",
		Buckets: prometheus.DefBuckets,
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "curtail_sessions_skipped_total",
		Help: "Total number of sessions skipped across all cycles",
	})

	collectors := []prometheus.Collector{profiles, rate, cycles, duration, skipped}
	for i, col := range collectors {
		if err := reg.Register(col); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
				continue
			}
			return nil, err
		}
	}

	return &PromSink{
		profiles: collectors[0].(*prometheus.CounterVec),
		rate:     collectors[1].(*prometheus.GaugeVec),
		cycles:   collectors[2].(prometheus.Counter),
		duration: collectors[3].(prometheus.Histogram),
		skipped:  collectors[4].(prometheus.Counter),
	}, nil
}

// RecordProfile counts the dispatched profile and tracks its rate.
func (s *PromSink) RecordProfile(ev coremetrics.ProfileEvent) error {
	conn := strconv.Itoa(ev.ConnectorID)
	s.profiles.WithLabelValues(ev.ChargerID, conn, string(ev.Source)).Inc()
	s.rate.WithLabelValues(ev.ChargerID, conn).Set(ev.RateKW)
	return nil
}

// RecordCycle counts the cycle and observes its duration.
func (s *PromSink) RecordCycle(ev coremetrics.CycleEvent) error {
	s.cycles.Inc()
	s.duration.Observe(ev.Duration.Seconds())
	s.skipped.Add(float64(ev.Skipped))
	return nil
}
