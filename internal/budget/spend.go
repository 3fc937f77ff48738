package budget

import (
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

// CategorySpent sums the expense transactions of one category whose date
// falls inside the window. Transactions without a usable date never match.
// The result is zero for an empty match set and never negative for
// non-negative amounts.
func CategorySpent(transactions []model.Transaction, categoryID string, window Window) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Type != model.TransactionTypeExpense || txn.Category != categoryID {
			continue
		}
		if !txn.HasValidDate() || !window.Contains(txn.Date) {
			continue
		}
		total = total.Add(txn.Amount)
	}
	return total
}
