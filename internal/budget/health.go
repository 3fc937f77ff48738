package budget

import "github.com/shopspring/decimal"

// Status is a presentation-neutral budget standing. Renderers map it to
// colors or labels; the thresholds that produce it live here.
type Status string

// Budget status values.
const (
	StatusGood Status = "good"
	StatusFair Status = "fair"
	StatusOver Status = "over"
)

// Health band lower bounds (inclusive).
const (
	GoodHealthThreshold = 70.0
	FairHealthThreshold = 40.0
)

// Category usage upper bounds (exclusive), in percent of the limit.
const (
	GoodUsageThreshold = 70.0
	FairUsageThreshold = 90.0
)

// HealthScore derives a 0-100 adherence score from aggregate spend.
// A zero limit means no constraint and scores a perfect 100. Spend at or
// above the limit bottoms out at 0.
func HealthScore(totalSpent, totalLimit decimal.Decimal) float64 {
	if totalLimit.IsZero() {
		return 100
	}
	used := totalSpent.Div(totalLimit).Mul(hundred).InexactFloat64()
	return max(0, 100-used)
}

// HealthBand classifies a health score: >=70 good, 40 to <70 fair, <40 over.
func HealthBand(score float64) Status {
	switch {
	case score >= GoodHealthThreshold:
		return StatusGood
	case score >= FairHealthThreshold:
		return StatusFair
	default:
		return StatusOver
	}
}

// StatusForPercentage classifies a category's usage: <70% good, <90% fair,
// anything else over.
func StatusForPercentage(percentage float64) Status {
	switch {
	case percentage < GoodUsageThreshold:
		return StatusGood
	case percentage < FairUsageThreshold:
		return StatusFair
	default:
		return StatusOver
	}
}

// HealthLabel is the dashboard wording for a health band.
func HealthLabel(s Status) string {
	switch s {
	case StatusGood:
		return "Excellent"
	case StatusFair:
		return "Fair"
	default:
		return "Over Budget"
	}
}
