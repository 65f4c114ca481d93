package model

import "time"

// Transaction is a charging transaction as reported by the charger hub.
type Transaction struct {
	ConnectorID    int        `json:"connector_id"`
	IDTag          string     `json:"id_tag"`
	MeterStart     int        `json:"meter_start"`
	TimestampStart time.Time  `json:"timestamp_start"`
	TransactionID  *int       `json:"transaction_id,omitempty"`
	MeterStop      *int       `json:"meter_stop,omitempty"`
	TimestampStop  *time.Time `json:"timestamp_stop,omitempty"`
	StopReason     *string    `json:"stop_reason,omitempty"`
	Voided         *bool      `json:"voided,omitempty"`
	ChargerID      *string    `json:"charger_id,omitempty"`
}

// Active reports whether the transaction is still open. A voided transaction
// is inactive regardless of its stop reason.
func (t Transaction) Active() bool {
	if t.Voided != nil && *t.Voided {
		return false
	}
	return t.StopReason == nil
}
