package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/testutil"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDashboard_WithoutBudget(t *testing.T) {
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Kiosk").
		WithExpense(testutil.CategoryFood, "50", fixedNow.Add(-time.Hour)).
		Build()

	d, err := cb.Dashboard(context.Background(), ledger.Business.ID)
	require.NoError(t, err)

	assert.False(t, d.HasBudget())
	assert.NotNil(t, d.Items)
	assert.Empty(t, d.Items)
	assert.Equal(t, 100.0, d.HealthScore)
	assert.Equal(t, budget.StatusGood, d.Health)
	assert.Empty(t, d.Warnings)
}

func TestDashboard_WithBudget(t *testing.T) {
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Corner Shop").
		WithCurrency("GHS").
		WithExpense(testutil.CategoryFood, "200", fixedNow.Add(-24*time.Hour)).
		WithExpense(testutil.CategoryFood, "150", fixedNow.Add(-2*time.Hour)).
		WithExpense(testutil.CategoryTransportation, "40", fixedNow.Add(-3*time.Hour)).
		// Last month does not count towards a monthly budget.
		WithExpense(testutil.CategoryFood, "999", time.Date(2024, time.February, 28, 12, 0, 0, 0, time.UTC)).
		WithIncome(testutil.CategorySalary, "5000", fixedNow.Add(-time.Hour)).
		WithBudget(model.PeriodMonthly, "1000", map[string]string{
			testutil.CategoryFood:           "300",
			testutil.CategoryTransportation: "200",
		}).
		Build()

	d, err := cb.Dashboard(context.Background(), ledger.Business.ID)
	require.NoError(t, err)
	require.True(t, d.HasBudget())

	assert.Equal(t, "This Month", d.PeriodName)
	assert.Equal(t, "₵", d.CurrencySymbol)
	assert.True(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC).Equal(d.Window.Start))

	require.Len(t, d.Items, 2)
	food := d.Items[0]
	assert.Equal(t, testutil.CategoryFood, food.CategoryID)
	assert.Equal(t, "Food", food.CategoryName)
	assert.True(t, dec("350").Equal(food.Spent))
	assert.True(t, food.Remaining.IsZero())
	assert.InDelta(t, 116.6667, food.Percentage, 0.001)

	transport := d.Items[1]
	assert.True(t, dec("40").Equal(transport.Spent))
	assert.InDelta(t, 20.0, transport.Percentage, 0.001)

	assert.True(t, dec("390").Equal(d.TotalSpent))
	assert.True(t, dec("1000").Equal(d.TotalLimit))
	assert.True(t, dec("610").Equal(d.Remaining))
	assert.InDelta(t, 61.0, d.HealthScore, 0.0001)
	assert.Equal(t, budget.StatusFair, d.Health)
	assert.Equal(t, []string{"⚠️ Budget exceeded for Food!"}, d.Warnings)
}

func TestDashboard_UnknownBusiness(t *testing.T) {
	cb, _ := newTestCashbook(t)

	_, err := cb.Dashboard(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestEvaluate_ZeroTotalFallsBackToCategorySum(t *testing.T) {
	b := &model.Budget{
		Period: model.PeriodWeekly,
		CategoryBudgets: map[string]model.CategoryBudget{
			testutil.CategoryFood: {Limit: dec("100")},
		},
	}
	txns := []model.Transaction{{
		ID: "t1", Type: model.TransactionTypeExpense, Category: testutil.CategoryFood,
		Amount: dec("25"), Date: fixedNow.Add(-time.Hour),
	}}

	d := Evaluate(model.Business{Name: "x"}, b, txns, model.DefaultCategories(), fixedNow)

	assert.True(t, dec("100").Equal(d.TotalLimit))
	assert.True(t, dec("75").Equal(d.Remaining))
	assert.InDelta(t, 75.0, d.HealthScore, 0.0001)
	assert.Equal(t, "This Week", d.PeriodName)
}

func TestSaveBudget(t *testing.T) {
	ctx := context.Background()
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").Build()

	saved, err := cb.SaveBudget(ctx, BudgetInput{
		BusinessID: ledger.Business.ID,
		Period:     model.PeriodMonthly,
		TotalLimit: dec("1000"),
		CategoryLimits: map[string]decimal.Decimal{
			testutil.CategoryFood:      dec("300"),
			testutil.CategoryHousing:   dec("0"),
			testutil.CategoryUtilities: dec("-5"),
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, int64(1), saved.Revision)
	assert.Len(t, saved.CategoryBudgets, 1)
	assert.Contains(t, saved.CategoryBudgets, testutil.CategoryFood)

	edited, err := cb.SaveBudget(ctx, BudgetInput{
		BusinessID: ledger.Business.ID,
		Revision:   saved.Revision,
		Period:     model.PeriodWeekly,
		TotalLimit: dec("400"),
		CategoryLimits: map[string]decimal.Decimal{
			testutil.CategoryTransportation: dec("100"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, edited.ID)
	assert.Equal(t, int64(2), edited.Revision)

	stored, err := db.Storage.GetBudgetByBusinessID(ctx, ledger.Business.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.PeriodWeekly, stored.Period)
	assert.True(t, dec("400").Equal(stored.TotalLimit))
	assert.Len(t, stored.CategoryBudgets, 1)
	assert.Contains(t, stored.CategoryBudgets, testutil.CategoryTransportation)
}

func TestSaveBudget_StaleRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").
		WithBudget(model.PeriodMonthly, "1000", nil).
		Build()

	read, err := db.Storage.GetBudgetByBusinessID(ctx, ledger.Business.ID)
	require.NoError(t, err)
	require.NotNil(t, read)

	first, err := cb.SaveBudget(ctx, BudgetInput{
		BusinessID: ledger.Business.ID,
		Revision:   read.Revision,
		Period:     model.PeriodMonthly,
		TotalLimit: dec("2000"),
	})
	require.NoError(t, err)
	assert.Equal(t, read.Revision+1, first.Revision)

	// A second edit based on the same read must not overwrite the first.
	_, err = cb.SaveBudget(ctx, BudgetInput{
		BusinessID: ledger.Business.ID,
		Revision:   read.Revision,
		Period:     model.PeriodMonthly,
		TotalLimit: dec("1500"),
	})
	require.ErrorIs(t, err, common.ErrConflict)
	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)

	stored, err := db.Storage.GetBudgetByBusinessID(ctx, ledger.Business.ID)
	require.NoError(t, err)
	assert.True(t, dec("2000").Equal(stored.TotalLimit))
	assert.Equal(t, first.Revision, stored.Revision)

	// A caller that never read the budget cannot replace it either.
	_, err = cb.SaveBudget(ctx, BudgetInput{
		BusinessID: ledger.Business.ID,
		Period:     model.PeriodMonthly,
		TotalLimit: dec("900"),
	})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestSaveBudget_InvalidWritesNothing(t *testing.T) {
	ctx := context.Background()
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").
		WithBudget(model.PeriodMonthly, "500", map[string]string{testutil.CategoryFood: "100"}).
		Build()

	tests := []struct {
		in     BudgetInput
		name   string
		reason string
	}{
		{
			name: "zero total",
			in: BudgetInput{
				BusinessID: ledger.Business.ID,
				Period:     model.PeriodMonthly,
				TotalLimit: decimal.Zero,
			},
			reason: budget.MsgTotalNotPositive,
		},
		{
			name: "categories exceed total",
			in: BudgetInput{
				BusinessID: ledger.Business.ID,
				Period:     model.PeriodMonthly,
				TotalLimit: dec("500"),
				CategoryLimits: map[string]decimal.Decimal{
					testutil.CategoryFood:           dec("300"),
					testutil.CategoryTransportation: dec("250"),
				},
			},
			reason: budget.MsgCategorySumExceed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cb.SaveBudget(ctx, tt.in)
			require.ErrorIs(t, err, budget.ErrInvalidBudget)
			assert.EqualError(t, err, tt.reason)

			stored, err := db.Storage.GetBudgetByBusinessID(ctx, ledger.Business.ID)
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, int64(1), stored.Revision)
			assert.True(t, dec("500").Equal(stored.TotalLimit))
		})
	}
}

func TestSaveBudget_InvalidPeriod(t *testing.T) {
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").Build()

	_, err := cb.SaveBudget(context.Background(), BudgetInput{
		BusinessID: ledger.Business.ID,
		Period:     model.Period("daily"),
		TotalLimit: dec("10"),
	})
	require.Error(t, err)

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
}

func TestSaveBudget_UnknownBusiness(t *testing.T) {
	cb, _ := newTestCashbook(t)

	_, err := cb.SaveBudget(context.Background(), BudgetInput{
		BusinessID: "ghost",
		Period:     model.PeriodMonthly,
		TotalLimit: dec("10"),
	})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestClearBudget(t *testing.T) {
	ctx := context.Background()
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").
		WithBudget(model.PeriodYearly, "100", nil).
		Build()

	require.NoError(t, cb.ClearBudget(ctx, ledger.Business.ID))

	d, err := cb.Dashboard(ctx, ledger.Business.ID)
	require.NoError(t, err)
	assert.False(t, d.HasBudget())
}

func TestCategoryWarning(t *testing.T) {
	ctx := context.Background()
	cb, db := newTestCashbook(t)
	ledger := db.Ledger("Shop").
		WithExpense(testutil.CategoryFood, "80", fixedNow.Add(-time.Hour)).
		WithExpense(testutil.CategoryTransportation, "10", fixedNow.Add(-time.Hour)).
		WithBudget(model.PeriodMonthly, "500", map[string]string{
			testutil.CategoryFood:           "100",
			testutil.CategoryTransportation: "100",
		}).
		Build()

	msg, ok, err := cb.CategoryWarning(ctx, ledger.Business.ID, testutil.CategoryFood)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "$20.00 remaining in Food budget", msg)

	_, ok, err = cb.CategoryWarning(ctx, ledger.Business.ID, testutil.CategoryTransportation)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cb.CategoryWarning(ctx, ledger.Business.ID, testutil.CategoryHousing)
	require.NoError(t, err)
	assert.False(t, ok)
}
