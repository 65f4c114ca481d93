package model

import "time"

// ProfilePurpose tags every profile issued by the controller. The hub maps it
// onto the OCPP charging profile purpose of the same name.
const ProfilePurpose = "TxDefaultProfile"

// ChargeProfile is a charge-rate command for a single connector. Profiles are
// immutable once created.
type ChargeProfile struct {
	ConnectorID   int       `json:"connector_id"`
	StartPeriods  []int     `json:"start_periods"`
	StackLevel    int       `json:"stack_level"`
	ChargeRates   []float64 `json:"charge_rates"`
	Purpose       string    `json:"purpose"`
	StartSchedule time.Time `json:"start_schedule"`
}

// NewChargeProfile builds a single-rate profile starting now.
func NewChargeProfile(connectorID int, rateKW float64, now time.Time) ChargeProfile {
	return ChargeProfile{
		ConnectorID:   connectorID,
		StartPeriods:  []int{0},
		StackLevel:    0,
		ChargeRates:   []float64{rateKW},
		Purpose:       ProfilePurpose,
		StartSchedule: now.UTC(),
	}
}

// Rate returns the first scheduled charge rate in kW, or 0 for an empty profile.
func (p ChargeProfile) Rate() float64 {
	if len(p.ChargeRates) == 0 {
		return 0
	}
	return p.ChargeRates[0]
}
