package metrics

import coremetrics "github.com/voltbus/curtaild/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordProfile forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordProfile(ev coremetrics.ProfileEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordProfile(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCycle forwards the event to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordCycle(ev coremetrics.CycleEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordCycle(ev); err != nil {
			return err
		}
	}
	return nil
}
