package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrencySymbol(t *testing.T) {
	tests := map[string]string{
		"GHS": "₵",
		"EUR": "€",
		"GBP": "£",
		"USD": "$",
		"":    "$",
		"JPY": "$",
	}
	for code, want := range tests {
		assert.Equal(t, want, CurrencySymbol(code), "code %q", code)
	}
	assert.Equal(t, "₵", Business{Currency: "GHS"}.CurrencySymbol())
}

func TestBudgetLimitFor(t *testing.T) {
	b := Budget{
		CategoryBudgets: map[string]CategoryBudget{
			"6": {Limit: decimal.NewFromInt(300)},
			"7": {Limit: decimal.Zero},
			"8": {Limit: decimal.NewFromInt(-1)},
		},
	}

	limit, ok := b.LimitFor("6")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(300).Equal(limit))

	for _, id := range []string{"7", "8", "9"} {
		_, ok := b.LimitFor(id)
		assert.False(t, ok, "category %s", id)
	}

	_, ok = Budget{}.LimitFor("6")
	assert.False(t, ok)
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	assert.Len(t, cats, 15)

	seen := make(map[string]bool)
	for _, c := range cats {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
		assert.True(t, c.IsDefault)
		assert.NoError(t, c.Type.Validate())
	}

	expenses := ExpenseCategories(cats)
	assert.Len(t, expenses, 10)
	assert.Equal(t, "Food", expenses[0].Name)
}

func TestEnumValidate(t *testing.T) {
	assert.NoError(t, PeriodMonthly.Validate())
	assert.Error(t, Period("daily").Validate())
	assert.NoError(t, TransactionTypeExpense.Validate())
	assert.Error(t, TransactionType("transfer").Validate())
	assert.Error(t, CategoryType("").Validate())
}
