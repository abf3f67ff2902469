package attendance

import "time"

// LateFeePolicy is the pickup cutoff, grace period and per-minute rate in
// effect for late pickup billing. All fields come from configuration.
type LateFeePolicy struct {
	Cutoff       time.Duration // clock time as offset since midnight
	Grace        time.Duration
	FeePerMinute float64
}

type LateFee struct {
	IsLate  bool
	Minutes int
	Fee     float64
}

// Assess evaluates a check-out wall clock time against the policy.
// A pickup is late once it exceeds cutoff + grace; billed minutes are the
// minutes past the cutoff with the grace period deducted.
func (p LateFeePolicy) Assess(checkOut time.Duration) LateFee {
	if checkOut <= p.Cutoff {
		return LateFee{}
	}
	lateMinutes := int((checkOut - p.Cutoff) / time.Minute)
	graceMinutes := int(p.Grace / time.Minute)
	if lateMinutes <= graceMinutes {
		return LateFee{}
	}
	billed := lateMinutes - graceMinutes
	return LateFee{
		IsLate:  true,
		Minutes: billed,
		Fee:     float64(billed) * p.FeePerMinute,
	}
}
