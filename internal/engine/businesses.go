package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

// BusinessSummary is the headline of a business ledger.
// Totals always cover every transaction; Transactions holds the filtered view.
type BusinessSummary struct {
	Business       model.Business
	TotalIncome    decimal.Decimal
	TotalExpense   decimal.Decimal
	Balance        decimal.Decimal
	CurrencySymbol string
	Transactions   []model.Transaction
	Groups         []DayGroup
}

// CreateBusiness adds a new business. An empty currency uses the configured default.
func (c *Cashbook) CreateBusiness(ctx context.Context, name, currency string) (*model.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewUserError("Business name cannot be empty", nil)
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = c.defaultCurrency
	}

	business := &model.Business{
		ID:       uuid.NewString(),
		Name:     name,
		Currency: currency,
	}
	if err := c.storage.SaveBusiness(ctx, business); err != nil {
		return nil, fmt.Errorf("failed to save business: %w", err)
	}

	common.LogInfo("created business", common.Fields{"business_id": business.ID, "name": name})
	return business, nil
}

// Businesses lists all businesses.
func (c *Cashbook) Businesses(ctx context.Context) ([]model.Business, error) {
	return c.storage.GetBusinesses(ctx)
}

// Business returns one business or a not-found error.
func (c *Cashbook) Business(ctx context.Context, id string) (*model.Business, error) {
	return c.requireBusiness(ctx, id)
}

// DeleteBusiness removes a business together with its budget. Its
// transactions are kept and their count, taken in the same storage
// transaction as the delete, is returned so callers can tell the user they
// still need reassigning.
func (c *Cashbook) DeleteBusiness(ctx context.Context, id string) (int, error) {
	if _, err := c.requireBusiness(ctx, id); err != nil {
		return 0, err
	}

	orphaned, err := c.storage.DeleteBusiness(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete business: %w", err)
	}

	common.LogInfo("deleted business", common.Fields{"business_id": id, "orphaned_transactions": orphaned})
	return orphaned, nil
}

// Summary computes income, expense and balance for a business and returns
// the transactions that match the range and search query, newest first.
func (c *Cashbook) Summary(ctx context.Context, businessID string, r Range, query string) (*BusinessSummary, error) {
	business, err := c.requireBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	txns, err := c.storage.GetTransactions(ctx, service.TransactionFilter{BusinessID: businessID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories, err := c.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	income, expense := Totals(txns)
	now := c.now()
	filtered := Search(FilterRange(txns, r, now), query, categoryNames(categories))
	SortNewestFirst(filtered)

	return &BusinessSummary{
		Business:       *business,
		TotalIncome:    income,
		TotalExpense:   expense,
		Balance:        income.Sub(expense),
		CurrencySymbol: business.CurrencySymbol(),
		Transactions:   filtered,
		Groups:         GroupByDay(filtered, now),
	}, nil
}

// Totals sums income and expense amounts.
func Totals(txns []model.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, t := range txns {
		switch t.Type {
		case model.TransactionTypeIncome:
			income = income.Add(t.Amount)
		case model.TransactionTypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return income, expense
}

func categoryNames(categories []model.Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names
}
