package attendance

import (
	"testing"
	"time"

	"github.com/bouncearound/daycare/core"
)

func TestLateFeePolicyAssess(t *testing.T) {
	policy := LateFeePolicy{
		Cutoff:       18 * time.Hour, // 18:00
		Grace:        15 * time.Minute,
		FeePerMinute: 1.00,
	}

	clock := func(s string) time.Duration {
		d, err := core.ParseClockTime(s)
		if err != nil {
			t.Fatalf("ParseClockTime(%s) failed: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name        string
		checkOut    string
		wantLate    bool
		wantMinutes int
		wantFee     float64
	}{
		{name: "well before cutoff", checkOut: "16:30"},
		{name: "just before cutoff", checkOut: "17:59"},
		{name: "at cutoff", checkOut: "18:00"},
		{name: "within grace", checkOut: "18:10"},
		{name: "at grace boundary", checkOut: "18:15"},
		{name: "past grace", checkOut: "18:20", wantLate: true, wantMinutes: 5, wantFee: 5.00},
		{name: "an hour late", checkOut: "19:00", wantLate: true, wantMinutes: 45, wantFee: 45.00},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Assess(clock(tt.checkOut))
			if got.IsLate != tt.wantLate {
				t.Errorf("Assess(%s).IsLate = %v, want %v", tt.checkOut, got.IsLate, tt.wantLate)
			}
			if got.Minutes != tt.wantMinutes {
				t.Errorf("Assess(%s).Minutes = %d, want %d", tt.checkOut, got.Minutes, tt.wantMinutes)
			}
			if got.Fee != tt.wantFee {
				t.Errorf("Assess(%s).Fee = %v, want %v", tt.checkOut, got.Fee, tt.wantFee)
			}
		})
	}
}

func TestLateFeePolicyZeroGrace(t *testing.T) {
	policy := LateFeePolicy{Cutoff: 18 * time.Hour, FeePerMinute: 2.50}
	got := policy.Assess(18*time.Hour + 4*time.Minute)
	if !got.IsLate || got.Minutes != 4 || got.Fee != 10.00 {
		t.Errorf("Assess() = %+v, want late 4min $10", got)
	}
}
