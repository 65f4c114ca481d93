package curtail

import "time"

// Bounds is the configured legal charge-rate range in kW.
type Bounds struct {
	LowerKW float64 `json:"clamp_lower_kw"`
	UpperKW float64 `json:"clamp_upper_kw"`
}

// Clamp forces the rate into [LowerKW, UpperKW].
func (b Bounds) Clamp(rateKW float64) float64 {
	if rateKW < b.LowerKW {
		return b.LowerKW
	}
	if rateKW > b.UpperKW {
		return b.UpperKW
	}
	return rateKW
}

// RequiredRate returns the average power in kW needed to deliver the missing
// energy evenly across the remaining time:
//
//	rate = (deficit% / 100) * capacityKWh / remaining hours
//
// The hours term is whole hours plus a fractional minutes component, matching
// how the hub expresses schedule durations. A non-positive deficit yields 0.
func RequiredRate(remaining time.Duration, socDeficitPct, capacityKWh float64) float64 {
	if socDeficitPct <= 0 {
		return 0
	}
	if remaining < minRemaining {
		remaining = minRemaining
	}
	hours := float64(int(remaining.Hours())) + float64(int(remaining.Minutes())%60)/60
	if hours <= 0 {
		hours = minRemaining.Minutes() / 60
	}
	return socDeficitPct / 100 * capacityKWh / hours
}
