package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

// WarningFor returns the threshold message for a category, highest severity
// first. It returns false when usage is below 70% and nothing should be shown.
// How the message is delivered is up to the caller.
func WarningFor(categoryName string, remaining decimal.Decimal, percentage float64, currencySymbol string) (string, bool) {
	switch {
	case percentage >= 100:
		return fmt.Sprintf("⚠️ Budget exceeded for %s!", categoryName), true
	case percentage >= FairUsageThreshold:
		return fmt.Sprintf("⚠️ Only %s%s left in %s budget", currencySymbol, remaining.StringFixed(2), categoryName), true
	case percentage >= GoodUsageThreshold:
		return fmt.Sprintf("%s%s remaining in %s budget", currencySymbol, remaining.StringFixed(2), categoryName), true
	default:
		return "", false
	}
}

// Warnings collects the messages for every evaluated category that crossed a threshold.
func Warnings(items []model.CategoryBudgetSpent, currencySymbol string) []string {
	var out []string
	for _, item := range items {
		if msg, ok := WarningFor(item.CategoryName, item.Remaining, item.Percentage, currencySymbol); ok {
			out = append(out, msg)
		}
	}
	return out
}
