package model

import "testing"

func TestTransactionLiveness(t *testing.T) {
	reason := "EVDisconnected"
	yes, no := true, false
	cases := []struct {
		name   string
		tx     Transaction
		active bool
	}{
		{"open", Transaction{}, true},
		{"voided false", Transaction{Voided: &no}, true},
		{"stopped", Transaction{StopReason: &reason}, false},
		{"voided", Transaction{Voided: &yes}, false},
		{"voided overrides open stop reason", Transaction{Voided: &yes, StopReason: nil}, false},
		{"stopped and voided false", Transaction{StopReason: &reason, Voided: &no}, false},
	}
	for _, c := range cases {
		if got := c.tx.Active(); got != c.active {
			t.Fatalf("%s: Active() = %v, want %v", c.name, got, c.active)
		}
	}
}

func TestChargerAtLocation(t *testing.T) {
	loc := 7
	if (Charger{}).AtLocation(7) {
		t.Fatalf("charger without location must not match")
	}
	if !(Charger{LocationID: &loc}).AtLocation(7) {
		t.Fatalf("charger at location must match")
	}
	if (Charger{LocationID: &loc}).AtLocation(8) {
		t.Fatalf("charger at other location must not match")
	}
}
