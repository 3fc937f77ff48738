package budget

import (
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/model"
)

// ErrInvalidBudget is wrapped by every ValidationError.
var ErrInvalidBudget = errors.New("invalid budget")

// Validation failure messages.
const (
	MsgTotalNotPositive  = "Total budget must be greater than 0"
	MsgCategorySumExceed = "Sum of category budgets cannot exceed total budget"
)

// ValidationResult is the outcome of Validate. Error is empty when Valid.
type ValidationResult struct {
	Error string `json:"error,omitempty"`
	Valid bool   `json:"valid"`
}

// Err converts an invalid result into a *ValidationError, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Reason: r.Error}
}

// ValidationError reports a budget that must not be persisted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidBudget
}

// Validate checks a proposed budget before it is saved. Rules are checked in
// order and the first failure wins:
//
//  1. the total limit must be greater than zero
//  2. the sum of category limits must not exceed the total
//
// Negative category limits are counted as zero so they cannot offset an
// over-allocation elsewhere. The result depends only on the total and the
// clamped sum, never on map iteration order.
func Validate(totalLimit decimal.Decimal, categoryBudgets map[string]model.CategoryBudget) ValidationResult {
	if !totalLimit.IsPositive() {
		return ValidationResult{Valid: false, Error: MsgTotalNotPositive}
	}

	sum := decimal.Zero
	for categoryID, cb := range categoryBudgets {
		if cb.Limit.IsNegative() {
			slog.Debug("ignoring negative category limit", "category_id", categoryID, "limit", cb.Limit.String())
			continue
		}
		sum = sum.Add(cb.Limit)
	}

	if sum.GreaterThan(totalLimit) {
		return ValidationResult{Valid: false, Error: MsgCategorySumExceed}
	}

	return ValidationResult{Valid: true}
}

// CategorySum returns the clamped sum of category limits used by Validate.
// Setup screens show it next to the total to preview the allocation.
func CategorySum(categoryBudgets map[string]model.CategoryBudget) decimal.Decimal {
	sum := decimal.Zero
	for _, cb := range categoryBudgets {
		if cb.Limit.IsPositive() {
			sum = sum.Add(cb.Limit)
		}
	}
	return sum
}
