package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

// Default category IDs from the seeded catalog.
const (
	CategorySalary         = "1"
	CategoryFood           = "6"
	CategoryTransportation = "7"
	CategoryHousing        = "8"
	CategoryUtilities      = "9"
)

// LedgerBuilder seeds one business with transactions and an optional budget.
type LedgerBuilder struct {
	db           *TestDB
	budget       *model.Budget
	business     model.Business
	transactions []model.Transaction
}

// Ledger is the seeded data returned by LedgerBuilder.Build.
type Ledger struct {
	Budget       *model.Budget
	Business     model.Business
	Transactions []model.Transaction
}

// Ledger starts a builder for a business with the given name.
func (db *TestDB) Ledger(name string) *LedgerBuilder {
	return &LedgerBuilder{
		db: db,
		business: model.Business{
			ID:       fmt.Sprintf("biz-%d", time.Now().UnixNano()),
			Name:     name,
			Currency: "USD",
		},
	}
}

// WithID fixes the business ID.
func (b *LedgerBuilder) WithID(id string) *LedgerBuilder {
	b.business.ID = id
	return b
}

// WithCurrency sets the business currency code.
func (b *LedgerBuilder) WithCurrency(code string) *LedgerBuilder {
	b.business.Currency = code
	return b
}

// WithExpense adds an expense in a category.
func (b *LedgerBuilder) WithExpense(categoryID, amount string, date time.Time) *LedgerBuilder {
	return b.with(model.TransactionTypeExpense, categoryID, amount, date)
}

// WithIncome adds an income entry in a category.
func (b *LedgerBuilder) WithIncome(categoryID, amount string, date time.Time) *LedgerBuilder {
	return b.with(model.TransactionTypeIncome, categoryID, amount, date)
}

// WithBudget attaches a budget. Limits are given as category ID to amount.
func (b *LedgerBuilder) WithBudget(period model.Period, total string, limits map[string]string) *LedgerBuilder {
	allocations := make(map[string]model.CategoryBudget, len(limits))
	for id, limit := range limits {
		allocations[id] = model.CategoryBudget{Limit: decimal.RequireFromString(limit)}
	}
	b.budget = &model.Budget{
		Period:          period,
		TotalLimit:      decimal.RequireFromString(total),
		CategoryBudgets: allocations,
	}
	return b
}

func (b *LedgerBuilder) with(t model.TransactionType, categoryID, amount string, date time.Time) *LedgerBuilder {
	n := len(b.transactions) + 1
	b.transactions = append(b.transactions, model.Transaction{
		ID:          fmt.Sprintf("%s-txn-%03d", b.business.ID, n),
		Date:        date,
		Amount:      decimal.RequireFromString(amount),
		Type:        t,
		Category:    categoryID,
		Description: fmt.Sprintf("%s #%d", t, n),
	})
	return b
}

// Build writes the ledger to the database, failing the test on error.
func (b *LedgerBuilder) Build() Ledger {
	t := b.db.t
	t.Helper()
	ctx := context.Background()

	if err := b.db.Storage.SaveBusiness(ctx, &b.business); err != nil {
		t.Fatalf("failed to seed business %q: %v", b.business.Name, err)
	}

	for i := range b.transactions {
		b.transactions[i].BusinessID = b.business.ID
	}
	if len(b.transactions) > 0 {
		if err := b.db.Storage.SaveTransactions(ctx, b.transactions); err != nil {
			t.Fatalf("failed to seed transactions: %v", err)
		}
	}

	if b.budget != nil {
		b.budget.BusinessID = b.business.ID
		if err := b.db.Storage.SaveBudget(ctx, b.budget); err != nil {
			t.Fatalf("failed to seed budget: %v", err)
		}
	}

	return Ledger{
		Business:     b.business,
		Transactions: b.transactions,
		Budget:       b.budget,
	}
}
