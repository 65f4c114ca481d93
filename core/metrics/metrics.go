package metrics

import "time"

// ProfileSource identifies how a dispatched charge rate was obtained.
type ProfileSource string

const (
	// SourceComputed means the rate was derived from live SoC telemetry.
	SourceComputed ProfileSource = "computed"
	// SourceHistory means the last known-good rate was re-issued because the
	// SoC could not be read.
	SourceHistory ProfileSource = "history"
	// SourceDefault means the configured fallback rate was issued.
	SourceDefault ProfileSource = "default"
)

// ProfileEvent is one dispatched charge profile to be recorded.
type ProfileEvent struct {
	ChargerID   string
	ConnectorID int
	RateKW      float64
	Source      ProfileSource
	Time        time.Time
}

// CycleEvent summarises one recalculation cycle.
type CycleEvent struct {
	Chargers   int
	Dispatched int
	Skipped    int
	Duration   time.Duration
	Time       time.Time
}

// Sink records curtailment events for observability purposes.
type Sink interface {
	RecordProfile(ev ProfileEvent) error
	RecordCycle(ev CycleEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordProfile(ProfileEvent) error { return nil }
func (NopSink) RecordCycle(CycleEvent) error     { return nil }
