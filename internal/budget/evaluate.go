package budget

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Evaluate computes the per-category status of a budget for the current period.
// It is EvaluateAt with the current wall-clock time.
func Evaluate(b model.Budget, transactions []model.Transaction, categories []model.Category) []model.CategoryBudgetSpent {
	return EvaluateAt(b, transactions, categories, time.Now())
}

// EvaluateAt computes the per-category status of a budget for the period
// window that ends at now.
//
// Only expense categories with a positive allocated limit appear in the
// result. Remaining is clamped at zero; overspend shows up as a percentage
// above 100. The result is sorted by percentage descending, and categories
// with equal percentages keep their catalog order.
func EvaluateAt(b model.Budget, transactions []model.Transaction, categories []model.Category, now time.Time) []model.CategoryBudgetSpent {
	window := ResolveWindow(b.Period, now)
	result := []model.CategoryBudgetSpent{}

	for _, category := range model.ExpenseCategories(categories) {
		limit, ok := b.LimitFor(category.ID)
		if !ok {
			continue
		}

		spent := CategorySpent(transactions, category.ID, window)
		result = append(result, model.CategoryBudgetSpent{
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Limit:        limit,
			Spent:        spent,
			Remaining:    decimal.Max(decimal.Zero, limit.Sub(spent)),
			Percentage:   percentOf(spent, limit),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Percentage > result[j].Percentage
	})

	return result
}

// TotalSpent sums the spend across evaluated categories.
func TotalSpent(items []model.CategoryBudgetSpent) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Spent)
	}
	return total
}

// TotalLimit sums the limits across evaluated categories.
func TotalLimit(items []model.CategoryBudgetSpent) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Limit)
	}
	return total
}

// EffectiveLimit returns the top-line limit for a budget: the persisted total
// when it is positive, otherwise the sum of evaluated category limits.
func EffectiveLimit(b model.Budget, items []model.CategoryBudgetSpent) decimal.Decimal {
	if b.TotalLimit.IsPositive() {
		return b.TotalLimit
	}
	return TotalLimit(items)
}

func percentOf(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(hundred).InexactFloat64()
}
