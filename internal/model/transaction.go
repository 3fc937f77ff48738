package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TransactionTypeIncome is money received.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense is money spent.
	TransactionTypeExpense TransactionType = "expense"
)

// Validate reports whether the transaction type is one of the known kinds.
func (t TransactionType) Validate() error {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return nil
	default:
		return fmt.Errorf("invalid transaction type %q: must be income or expense", string(t))
	}
}

// Transaction represents a single cashbook entry owned by a business.
// Transactions are replaced wholesale on edit, never patched.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	Description string          `json:"description"`
	BusinessID  string          `json:"businessId"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category,omitempty"` // Category ID
	SubCategory string          `json:"subCategory,omitempty"`
	PaymentMode string          `json:"paymentMode,omitempty"` // e.g. cash, card, mobile money
	Remark      string          `json:"remark,omitempty"`
}

// HasValidDate reports whether the transaction carries a usable date.
// Dates that could not be parsed on load are kept as the zero time.
func (t Transaction) HasValidDate() bool {
	return !t.Date.IsZero()
}
