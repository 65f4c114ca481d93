package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	coremetrics "github.com/voltbus/curtaild/core/metrics"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() == name {
			return fam
		}
	}
	return nil
}

func TestPromSinkRecordProfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}

	ev := coremetrics.ProfileEvent{
		ChargerID:   "CHG1",
		ConnectorID: 1,
		RateKW:      17.5,
		Source:      coremetrics.SourceComputed,
		Time:        time.Now(),
	}
	if err := sink.RecordProfile(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordProfile(ev); err != nil {
		t.Fatalf("record: %v", err)
	}

	fam := gather(t, reg, "curtail_profiles_total")
	if fam == nil {
		t.Fatalf("counter not registered")
	}
	if got := fam.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("profiles counter = %v, want 2", got)
	}

	fam = gather(t, reg, "curtail_charge_rate_kw")
	if fam == nil {
		t.Fatalf("gauge not registered")
	}
	if got := fam.GetMetric()[0].GetGauge().GetValue(); got != 17.5 {
		t.Fatalf("rate gauge = %v, want 17.5", got)
	}
}

func TestPromSinkRecordCycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := sink.RecordCycle(coremetrics.CycleEvent{Chargers: 3, Dispatched: 5, Skipped: 1, Duration: time.Second}); err != nil {
		t.Fatalf("record: %v", err)
	}

	if fam := gather(t, reg, "curtail_cycles_total"); fam == nil || fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("cycle counter not incremented")
	}
	if fam := gather(t, reg, "curtail_sessions_skipped_total"); fam == nil || fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("skipped counter not incremented")
	}
}

func TestPromSinkDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second register must reuse collectors: %v", err)
	}
}

func TestMultiSinkFanout(t *testing.T) {
	reg := prometheus.NewRegistry()
	prom, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	multi := NewMultiSink(coremetrics.NopSink{}, prom)
	if err := multi.RecordProfile(coremetrics.ProfileEvent{ChargerID: "CHG1", ConnectorID: 1, RateKW: 10}); err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if fam := gather(t, reg, "curtail_profiles_total"); fam == nil || fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("prom sink did not receive fanned-out event")
	}
}

func TestFactoryNop(t *testing.T) {
	sink, err := NewSink(coremetrics.Config{})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink with nothing enabled, got %T", sink)
	}
}
