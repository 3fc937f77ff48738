package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

// TransactionInput is what a user supplies to record or replace a transaction.
type TransactionInput struct {
	Date        time.Time
	Amount      decimal.Decimal
	BusinessID  string
	Type        model.TransactionType
	Description string
	Category    string
	SubCategory string
	PaymentMode string
	Remark      string
}

// TransactionResult is a saved transaction plus the budget warning it
// triggered, if any.
type TransactionResult struct {
	Transaction model.Transaction
	Warning     string
}

// AddTransaction records a new transaction. For expenses in a budgeted
// category the result carries the threshold warning for that category.
func (c *Cashbook) AddTransaction(ctx context.Context, in TransactionInput) (*TransactionResult, error) {
	txn, err := c.buildTransaction(ctx, uuid.NewString(), in)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	common.LogDebug("recorded transaction", common.Fields{
		"transaction_id": txn.ID,
		"business_id":    txn.BusinessID,
		"type":           string(txn.Type),
		"amount":         txn.Amount.String(),
	})

	return c.withWarning(ctx, txn)
}

// EditTransaction replaces an existing transaction wholesale.
func (c *Cashbook) EditTransaction(ctx context.Context, id string, in TransactionInput) (*TransactionResult, error) {
	existing, err := c.storage.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if existing == nil {
		return nil, common.NewUserError(fmt.Sprintf("Transaction %q does not exist", id), common.ErrNotFound)
	}

	if in.BusinessID == "" {
		in.BusinessID = existing.BusinessID
	}
	if in.Date.IsZero() {
		if !existing.HasValidDate() {
			return nil, common.NewUserError(
				fmt.Sprintf("Transaction %q has no valid date, give one when editing it", id), common.ErrInvalidDate)
		}
		in.Date = existing.Date
	}

	txn, err := c.buildTransaction(ctx, id, in)
	if err != nil {
		return nil, err
	}

	if err := c.storage.SaveTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	return c.withWarning(ctx, txn)
}

// DeleteTransaction removes a transaction.
func (c *Cashbook) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.storage.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// Transaction returns a single transaction or a not-found error.
func (c *Cashbook) Transaction(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := c.storage.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn == nil {
		return nil, common.NewUserError(fmt.Sprintf("Transaction %q does not exist", id), common.ErrNotFound)
	}
	return txn, nil
}

// Transactions lists a business's transactions within a range, newest first.
func (c *Cashbook) Transactions(ctx context.Context, businessID string, r Range) ([]model.Transaction, error) {
	filter := service.TransactionFilter{BusinessID: businessID}
	if since := r.Since(c.now()); !since.IsZero() {
		filter.StartDate = &since
	}
	return c.storage.GetTransactions(ctx, filter)
}

func (c *Cashbook) buildTransaction(ctx context.Context, id string, in TransactionInput) (*model.Transaction, error) {
	if _, err := c.requireBusiness(ctx, in.BusinessID); err != nil {
		return nil, err
	}
	if err := in.Type.Validate(); err != nil {
		return nil, common.NewUserError("Transaction type must be income or expense", err)
	}
	if !in.Amount.IsPositive() {
		return nil, common.NewUserError("Please enter a valid amount", common.ErrInvalidAmount)
	}

	description := strings.TrimSpace(in.Description)
	if in.Category != "" {
		category, err := c.storage.GetCategory(ctx, in.Category)
		if err != nil {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		if category == nil {
			return nil, common.NewUserError(fmt.Sprintf("Category %q does not exist", in.Category), common.ErrNotFound)
		}
		if string(category.Type) != string(in.Type) {
			return nil, common.NewUserError(
				fmt.Sprintf("Category %q is for %s, not %s", category.Name, category.Type, in.Type), nil)
		}
		if description == "" {
			description = category.Name
		}
	}
	if description == "" {
		description = strings.ToUpper(string(in.Type[:1])) + string(in.Type[1:])
	}

	date := in.Date
	if date.IsZero() {
		date = c.now()
	}

	return &model.Transaction{
		ID:          id,
		BusinessID:  in.BusinessID,
		Date:        date,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: description,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		PaymentMode: in.PaymentMode,
		Remark:      in.Remark,
	}, nil
}

func (c *Cashbook) withWarning(ctx context.Context, txn *model.Transaction) (*TransactionResult, error) {
	result := &TransactionResult{Transaction: *txn}
	if txn.Type != model.TransactionTypeExpense || txn.Category == "" {
		return result, nil
	}

	warning, _, err := c.CategoryWarning(ctx, txn.BusinessID, txn.Category)
	if err != nil {
		// The transaction is saved; a failed warning lookup must not hide that.
		common.LogError(err, "failed to compute budget warning", common.Fields{"transaction_id": txn.ID})
		return result, nil
	}
	result.Warning = warning
	return result, nil
}
