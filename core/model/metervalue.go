package model

import (
	"strconv"
	"time"
)

// SampledValue is one measurement inside a meter value report.
type SampledValue struct {
	Measurand string `json:"measurand"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
}

// MeterValue is the latest telemetry snapshot for one connector.
type MeterValue struct {
	ConnectorID   int            `json:"connector_id"`
	ChargerID     string         `json:"charger_id"`
	TransactionID int            `json:"transaction_id"`
	Timestamp     time.Time      `json:"time_stamp"`
	SampledValues []SampledValue `json:"sampled_value"`
}

// SoC extracts the state-of-charge percentage from the sampled values.
// The second return value is false when no parseable SoC measurand is present.
func (m MeterValue) SoC() (float64, bool) {
	for _, sv := range m.SampledValues {
		if sv.Measurand != "SoC" {
			continue
		}
		v, err := strconv.ParseFloat(sv.Value, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}
