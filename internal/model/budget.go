// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is the recurrence cadence that anchors a budget's evaluation window.
type Period string

// Budget period constants.
const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// Validate reports whether the period is one of the supported cadences.
func (p Period) Validate() error {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return nil
	default:
		return fmt.Errorf("invalid budget period %q: must be weekly, monthly or yearly", string(p))
	}
}

// CategoryBudget is the spending limit allocated to one category.
type CategoryBudget struct {
	Limit decimal.Decimal `json:"limit"`
}

// Budget is a recurring spend plan for a business: one aggregate limit plus
// optional per-category sub-limits. A business has at most one budget.
type Budget struct {
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
	TotalLimit      decimal.Decimal           `json:"totalLimit"`
	CategoryBudgets map[string]CategoryBudget `json:"categoryBudgets"`
	ID              string                    `json:"id"`
	BusinessID      string                    `json:"businessId"`
	Period          Period                    `json:"period"`
	Revision        int64                     `json:"revision"` // Bumped on every save
}

// LimitFor returns the allocated limit for a category and whether one is set.
// Non-positive limits count as unbudgeted.
func (b Budget) LimitFor(categoryID string) (decimal.Decimal, bool) {
	cb, ok := b.CategoryBudgets[categoryID]
	if !ok || !cb.Limit.IsPositive() {
		return decimal.Zero, false
	}
	return cb.Limit, true
}

// CategoryBudgetSpent is the evaluated status of one budgeted expense category.
// It is derived on every evaluation and never stored.
type CategoryBudgetSpent struct {
	Limit        decimal.Decimal `json:"limit"`
	Spent        decimal.Decimal `json:"spent"`
	Remaining    decimal.Decimal `json:"remaining"`
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Percentage   float64         `json:"percentage"`
}
