package curtail

import "time"

// minRemaining floors the time left before the window closes so that rate
// computations never divide by a zero or negative duration.
const minRemaining = time.Minute

// Window is the nightly curtailment period. Start and Stop are wall-clock
// instants in the local timezone of the reference time used to build it.
type Window struct {
	Start time.Time
	Stop  time.Time
}

// NewWindow builds the window for the night of the given reference time.
// Start is today at startHour:00:00. Stop is today at stopHour:00:00, pushed
// forward a day until it follows both now and Start. That handles windows
// crossing midnight (e.g. 19:00 to 05:00) and construction between midnight
// and the stop hour, where today's stop instant would precede tonight's start.
func NewWindow(now time.Time, startHour, stopHour int) Window {
	y, m, d := now.Date()
	start := time.Date(y, m, d, startHour, 0, 0, 0, now.Location())
	stop := time.Date(y, m, d, stopHour, 0, 0, 0, now.Location())
	if !stop.After(now) {
		stop = stop.AddDate(0, 0, 1)
	}
	if !stop.After(start) {
		stop = stop.AddDate(0, 0, 1)
	}
	return Window{Start: start, Stop: stop}
}

// Stale reports whether the window has receded at least a full day behind
// now and must be rebuilt for tonight.
func (w Window) Stale(now time.Time) bool {
	return now.Sub(w.Start) >= 24*time.Hour
}

// Open reports whether curtailment may run at the given instant.
func (w Window) Open(now time.Time) bool {
	return !now.Before(w.Start)
}

// Remaining returns the time left until Stop, floored at one minute.
func (w Window) Remaining(now time.Time) time.Duration {
	rem := w.Stop.Sub(now)
	if rem < minRemaining {
		return minRemaining
	}
	return rem
}
