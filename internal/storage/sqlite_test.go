package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func createTestBusiness(t *testing.T, s *SQLiteStorage, id string) *model.Business {
	t.Helper()
	b := &model.Business{ID: id, Name: "Business " + id, Currency: "USD"}
	require.NoError(t, s.SaveBusiness(context.Background(), b))
	return b
}

// Helper function to create test transactions.
func createTestTransactions(businessID string, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	baseTime := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("%s-txn-%02d", businessID, i+1),
			BusinessID:  businessID,
			Date:        baseTime.Add(time.Duration(i) * 24 * time.Hour),
			Description: fmt.Sprintf("Transaction #%d", i+1),
			Amount:      decimal.NewFromFloat(10.5).Mul(decimal.NewFromInt(int64(i + 1))),
			Type:        model.TransactionTypeExpense,
			Category:    "6",
			PaymentMode: "cash",
		}
	}
	return txns
}

func TestNewSQLiteStorage_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(model.DefaultCategories()), "defaults are seeded exactly once")
}

func TestSQLiteStorage_Businesses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	b := createTestBusiness(t, store, "biz-1")
	assert.False(t, b.CreatedAt.IsZero())
	createdAt := b.CreatedAt

	got, err := store.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Business biz-1", got.Name)
	assert.Equal(t, "$", got.CurrencySymbol())

	b.Name = "Renamed"
	b.Currency = "GHS"
	require.NoError(t, store.SaveBusiness(ctx, b))

	got, err = store.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "₵", got.CurrencySymbol())
	assert.True(t, createdAt.Equal(got.CreatedAt), "created_at is preserved")

	createTestBusiness(t, store, "biz-2")
	all, err := store.GetBusinesses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing, err := store.GetBusiness(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = store.SaveBusiness(ctx, &model.Business{ID: "biz-3"})
	assert.ErrorIs(t, err, ErrInvalidBusiness)
}

func TestSQLiteStorage_DeleteBusinessCascadesBudget(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createTestBusiness(t, store, "biz-1")
	require.NoError(t, store.SaveTransactions(ctx, createTestTransactions("biz-1", 3)))
	require.NoError(t, store.SaveBudget(ctx, &model.Budget{
		BusinessID:      "biz-1",
		Period:          model.PeriodMonthly,
		TotalLimit:      decimal.NewFromInt(500),
		CategoryBudgets: map[string]model.CategoryBudget{"6": {Limit: decimal.NewFromInt(200)}},
	}))

	createTestBusiness(t, store, "biz-2")
	require.NoError(t, store.SaveTransactions(ctx, createTestTransactions("biz-2", 2)))

	orphaned, err := store.DeleteBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, 3, orphaned, "only the deleted business's transactions are counted")

	b, err := store.GetBudgetByBusinessID(ctx, "biz-1")
	require.NoError(t, err)
	assert.Nil(t, b, "budget is removed with its business")

	var allocations int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM budget_allocations").Scan(&allocations))
	assert.Zero(t, allocations)

	txns, err := store.GetTransactions(ctx, txFilter("biz-1"))
	require.NoError(t, err)
	assert.Len(t, txns, 3, "transactions remain for reassignment")

	_, err = store.DeleteBusiness(ctx, "biz-1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_Categories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cats, err := store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 15)
	assert.Equal(t, "Salary", cats[0].Name)
	assert.Equal(t, "Other Expense", cats[14].Name)

	custom := &model.Category{ID: "custom-1", Name: "Equipment", Type: model.CategoryTypeExpense}
	require.NoError(t, store.SaveCategory(ctx, custom))

	cats, err = store.GetCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 16)
	assert.Equal(t, "Equipment", cats[15].Name, "new categories are appended")

	custom.Name = "Tools"
	require.NoError(t, store.SaveCategory(ctx, custom))
	got, err := store.GetCategory(ctx, "custom-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Tools", got.Name)
	assert.False(t, got.IsDefault)

	require.NoError(t, store.DeleteCategory(ctx, "6"))
	got, err = store.GetCategory(ctx, "6")
	require.NoError(t, err)
	assert.Nil(t, got, "defaults can be removed")

	assert.ErrorIs(t, store.DeleteCategory(ctx, "6"), common.ErrNotFound)
	assert.ErrorIs(t, store.SaveCategory(ctx, &model.Category{ID: "x", Name: " ", Type: model.CategoryTypeIncome}), ErrInvalidCategory)
	assert.ErrorIs(t, store.SaveCategory(ctx, &model.Category{ID: "x", Name: "X", Type: "other"}), ErrInvalidCategory)
}
