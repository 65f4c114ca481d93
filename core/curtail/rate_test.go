package curtail

import (
	"math"
	"testing"
	"time"
)

func TestRequiredRateExample(t *testing.T) {
	// 300 kWh battery, 20% deficit, 2h30m left -> 0.20 * 300 / 2.5 = 24 kW.
	got := RequiredRate(2*time.Hour+30*time.Minute, 20, 300)
	if math.Abs(got-24) > 1e-9 {
		t.Fatalf("rate = %v, want 24", got)
	}
}

func TestRequiredRateZeroDeficit(t *testing.T) {
	if got := RequiredRate(3*time.Hour, 0, 300); got != 0 {
		t.Fatalf("rate = %v, want 0", got)
	}
	if got := RequiredRate(3*time.Hour, -5, 300); got != 0 {
		t.Fatalf("negative deficit rate = %v, want 0", got)
	}
}

func TestRequiredRateGuardsRemaining(t *testing.T) {
	got := RequiredRate(-time.Hour, 20, 300)
	if got <= 0 || math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("rate with elapsed window = %v, want finite positive", got)
	}
}

func TestRequiredRateMonotonic(t *testing.T) {
	prev := 0.0
	for deficit := 0.0; deficit <= 100; deficit += 5 {
		r := RequiredRate(4*time.Hour, deficit, 250)
		if r < prev {
			t.Fatalf("rate not non-decreasing in deficit: %v < %v at %v", r, prev, deficit)
		}
		prev = r
	}
	prevRate := math.Inf(1)
	for hours := 1; hours <= 10; hours++ {
		r := RequiredRate(time.Duration(hours)*time.Hour, 40, 250)
		if r > prevRate {
			t.Fatalf("rate not non-increasing in remaining time: %v > %v at %dh", r, prevRate, hours)
		}
		prevRate = r
	}
}

func TestClamp(t *testing.T) {
	b := Bounds{LowerKW: 10, UpperKW: 20}
	cases := []struct{ in, want float64 }{
		{5, 10},
		{10, 10},
		{15, 15},
		{20, 20},
		{24, 20},
		{-3, 10},
	}
	for _, c := range cases {
		if got := b.Clamp(c.in); got != c.want {
			t.Fatalf("clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampIdempotent(t *testing.T) {
	b := Bounds{LowerKW: 10, UpperKW: 20}
	for _, v := range []float64{-100, 0, 10, 13.7, 20, 99} {
		once := b.Clamp(v)
		if once < b.LowerKW || once > b.UpperKW {
			t.Fatalf("clamp(%v) = %v outside bounds", v, once)
		}
		if twice := b.Clamp(once); twice != once {
			t.Fatalf("clamp not idempotent for %v: %v != %v", v, twice, once)
		}
	}
}
