// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/cashbook/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Zero values leave the corresponding dimension unfiltered.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	BusinessID string
	Type       model.TransactionType
	Limit      int
	Offset     int
}

// Storage defines the contract for our persistence layer.
// Lookups of a single record return nil, nil when it does not exist.
type Storage interface {
	// Business operations
	GetBusinesses(ctx context.Context) ([]model.Business, error)
	GetBusiness(ctx context.Context, id string) (*model.Business, error)
	SaveBusiness(ctx context.Context, business *model.Business) error
	// DeleteBusiness returns how many transactions were left without a business.
	DeleteBusiness(ctx context.Context, id string) (int, error)

	// Transaction operations
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	SaveCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Budget operations
	GetBudgets(ctx context.Context) ([]model.Budget, error)
	GetBudgetByBusinessID(ctx context.Context, businessID string) (*model.Budget, error)
	SaveBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, businessID string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// DateRange represents a time period with start and end dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
