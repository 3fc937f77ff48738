package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

// BudgetInput is a proposed budget for a business.
type BudgetInput struct {
	CategoryLimits map[string]decimal.Decimal
	TotalLimit     decimal.Decimal
	BusinessID     string
	Period         model.Period
	// Revision is the revision of the budget the edit is based on, 0 for a
	// business without a budget. A stale revision fails with common.ErrConflict.
	Revision int64
}

// Dashboard is the evaluated state of a business budget for the current period.
type Dashboard struct {
	Window         budget.Window
	Budget         *model.Budget
	TotalSpent     decimal.Decimal
	TotalLimit     decimal.Decimal
	Remaining      decimal.Decimal
	Business       model.Business
	CurrencySymbol string
	PeriodName     string
	Health         budget.Status
	Items          []model.CategoryBudgetSpent
	Warnings       []string
	HealthScore    float64
}

// HasBudget reports whether the business has a budget configured.
func (d *Dashboard) HasBudget() bool {
	return d.Budget != nil
}

// SaveBudget validates and stores the budget of a business. An existing
// budget keeps its ID and creation time. Only positive category limits are
// stored. Nothing is written when validation fails; the returned error then
// wraps budget.ErrInvalidBudget.
func (c *Cashbook) SaveBudget(ctx context.Context, in BudgetInput) (*model.Budget, error) {
	if err := in.Period.Validate(); err != nil {
		return nil, common.NewUserError("Budget period must be weekly, monthly or yearly", err)
	}

	allocations := make(map[string]model.CategoryBudget, len(in.CategoryLimits))
	for id, limit := range in.CategoryLimits {
		allocations[id] = model.CategoryBudget{Limit: limit}
	}

	if err := budget.Validate(in.TotalLimit, allocations).Err(); err != nil {
		return nil, err
	}

	if _, err := c.requireBusiness(ctx, in.BusinessID); err != nil {
		return nil, err
	}

	existing, err := c.storage.GetBudgetByBusinessID(ctx, in.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	b := &model.Budget{
		BusinessID:      in.BusinessID,
		Period:          in.Period,
		TotalLimit:      in.TotalLimit,
		CategoryBudgets: make(map[string]model.CategoryBudget),
	}
	if existing != nil {
		b.ID = existing.ID
		b.CreatedAt = existing.CreatedAt
	}
	b.Revision = in.Revision
	for id, cb := range allocations {
		if cb.Limit.IsPositive() {
			b.CategoryBudgets[id] = cb
		}
	}

	if err := c.storage.SaveBudget(ctx, b); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewUserError("The budget was changed since it was loaded, run the command again", err)
		}
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	common.LogInfo("saved budget", common.Fields{
		"business_id": b.BusinessID,
		"period":      string(b.Period),
		"total_limit": b.TotalLimit.String(),
		"categories":  len(b.CategoryBudgets),
		"revision":    b.Revision,
	})
	return b, nil
}

// ClearBudget removes the budget of a business.
func (c *Cashbook) ClearBudget(ctx context.Context, businessID string) error {
	if _, err := c.requireBusiness(ctx, businessID); err != nil {
		return err
	}
	if err := c.storage.DeleteBudget(ctx, businessID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}

// Dashboard loads the business, its budget, its transactions and the
// category catalog concurrently and evaluates the budget at the current time.
// A business without a budget yields a dashboard with no items.
func (c *Cashbook) Dashboard(ctx context.Context, businessID string) (*Dashboard, error) {
	var (
		business   *model.Business
		b          *model.Budget
		txns       []model.Transaction
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		business, err = c.requireBusiness(gctx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		b, err = c.storage.GetBudgetByBusinessID(gctx, businessID)
		if err != nil {
			return fmt.Errorf("failed to load budget: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		txns, err = c.storage.GetTransactions(gctx, service.TransactionFilter{
			BusinessID: businessID,
			Type:       model.TransactionTypeExpense,
		})
		if err != nil {
			return fmt.Errorf("failed to load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = c.storage.GetCategories(gctx)
		if err != nil {
			return fmt.Errorf("failed to load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Evaluate(*business, b, txns, categories, c.now()), nil
}

// Evaluate builds a dashboard from already-loaded data.
func Evaluate(business model.Business, b *model.Budget, txns []model.Transaction, categories []model.Category, now time.Time) *Dashboard {
	d := &Dashboard{
		Business:       business,
		Budget:         b,
		CurrencySymbol: business.CurrencySymbol(),
		Items:          []model.CategoryBudgetSpent{},
		TotalSpent:     decimal.Zero,
		TotalLimit:     decimal.Zero,
		Remaining:      decimal.Zero,
		HealthScore:    100,
		Health:         budget.StatusGood,
	}
	if b == nil {
		return d
	}

	d.Window = budget.ResolveWindow(b.Period, now)
	d.PeriodName = budget.PeriodDisplayName(b.Period)
	d.Items = budget.EvaluateAt(*b, txns, categories, now)
	d.TotalSpent = budget.TotalSpent(d.Items)
	d.TotalLimit = budget.EffectiveLimit(*b, d.Items)
	d.Remaining = decimal.Max(decimal.Zero, d.TotalLimit.Sub(d.TotalSpent))
	d.HealthScore = budget.HealthScore(d.TotalSpent, d.TotalLimit)
	d.Health = budget.HealthBand(d.HealthScore)
	d.Warnings = budget.Warnings(d.Items, d.CurrencySymbol)
	return d
}

// CategoryWarning evaluates one category of a business budget and returns
// its threshold warning. It returns false when there is no budget, the
// category is not budgeted, or usage is below the first threshold.
func (c *Cashbook) CategoryWarning(ctx context.Context, businessID, categoryID string) (string, bool, error) {
	d, err := c.Dashboard(ctx, businessID)
	if err != nil {
		return "", false, err
	}
	for _, item := range d.Items {
		if item.CategoryID == categoryID {
			msg, ok := budget.WarningFor(item.CategoryName, item.Remaining, item.Percentage, d.CurrencySymbol)
			return msg, ok, nil
		}
	}
	return "", false, nil
}
