package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

func txFilter(businessID string) service.TransactionFilter {
	return service.TransactionFilter{BusinessID: businessID}
}

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	tests := []struct {
		setup        func(*SQLiteStorage, context.Context)
		validate     func(*testing.T, *SQLiteStorage, context.Context)
		name         string
		transactions []model.Transaction
		wantErr      bool
	}{
		{
			name:         "save new transactions",
			transactions: createTestTransactions("biz-1", 3),
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				txns, err := s.GetTransactions(ctx, txFilter("biz-1"))
				require.NoError(t, err)
				assert.Len(t, txns, 3)
			},
		},
		{
			name:         "handle duplicate transactions",
			transactions: createTestTransactions("biz-1", 2),
			setup: func(s *SQLiteStorage, ctx context.Context) {
				_ = s.SaveTransactions(ctx, createTestTransactions("biz-1", 2))
			},
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				txns, err := s.GetTransactions(ctx, txFilter("biz-1"))
				require.NoError(t, err)
				assert.Len(t, txns, 2, "no duplicates")
			},
		},
		{
			name:         "save empty list",
			transactions: []model.Transaction{},
			wantErr:      true,
		},
		{
			name: "reject negative amount",
			transactions: []model.Transaction{{
				ID:          "neg",
				BusinessID:  "biz-1",
				Date:        time.Now(),
				Description: "refund",
				Amount:      decimal.NewFromInt(-5),
				Type:        model.TransactionTypeExpense,
			}},
			wantErr: true,
		},
		{
			name: "preserves decimal amounts exactly",
			transactions: []model.Transaction{{
				ID:          "exact",
				BusinessID:  "biz-1",
				Date:        time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC),
				Description: "Groceries",
				Amount:      decimal.RequireFromString("0.10"),
				Type:        model.TransactionTypeExpense,
				Category:    "6",
				SubCategory: "market",
				Remark:      "weekly shop",
			}},
			validate: func(t *testing.T, s *SQLiteStorage, ctx context.Context) {
				t.Helper()
				txn, err := s.GetTransaction(ctx, "exact")
				require.NoError(t, err)
				require.NotNil(t, txn)
				assert.True(t, decimal.RequireFromString("0.1").Equal(txn.Amount))
				assert.True(t, time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC).Equal(txn.Date))
				assert.Equal(t, "market", txn.SubCategory)
				assert.Equal(t, "weekly shop", txn.Remark)
				assert.Equal(t, model.TransactionTypeExpense, txn.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, cleanup := createTestStorage(t)
			defer cleanup()
			ctx := context.Background()

			if tt.setup != nil {
				tt.setup(store, ctx)
			}

			err := store.SaveTransactions(ctx, tt.transactions)
			if (err != nil) != tt.wantErr {
				t.Errorf("SaveTransactions() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.validate != nil {
				tt.validate(t, store, ctx)
			}
		})
	}
}

func TestSQLiteStorage_GetTransactionsFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions("biz-1", 5)
	txns[4].Type = model.TransactionTypeIncome
	require.NoError(t, store.SaveTransactions(ctx, txns))
	require.NoError(t, store.SaveTransactions(ctx, createTestTransactions("biz-2", 2)))

	all, err := store.GetTransactions(ctx, service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	mine, err := store.GetTransactions(ctx, txFilter("biz-1"))
	require.NoError(t, err)
	require.Len(t, mine, 5)
	assert.Equal(t, "biz-1-txn-05", mine[0].ID, "newest first")
	for i := 1; i < len(mine); i++ {
		assert.False(t, mine[i].Date.After(mine[i-1].Date))
	}

	expenses, err := store.GetTransactions(ctx, service.TransactionFilter{
		BusinessID: "biz-1",
		Type:       model.TransactionTypeExpense,
	})
	require.NoError(t, err)
	assert.Len(t, expenses, 4)

	start := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 3, 23, 59, 59, 0, time.UTC)
	ranged, err := store.GetTransactions(ctx, service.TransactionFilter{
		BusinessID: "biz-1",
		StartDate:  &start,
		EndDate:    &end,
	})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	page, err := store.GetTransactions(ctx, service.TransactionFilter{BusinessID: "biz-1", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "biz-1-txn-04", page[0].ID)

	_, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &end, EndDate: &start})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestSQLiteStorage_SaveTransactionReplaces(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := createTestTransactions("biz-1", 1)[0]
	require.NoError(t, store.SaveTransaction(ctx, &txn))

	txn.Amount = decimal.NewFromInt(99)
	txn.Category = "7"
	txn.Description = "Taxi"
	require.NoError(t, store.SaveTransaction(ctx, &txn))

	got, err := store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.NewFromInt(99).Equal(got.Amount))
	assert.Equal(t, "7", got.Category)
	assert.Equal(t, "Taxi", got.Description)

	require.NoError(t, store.DeleteTransaction(ctx, txn.ID))
	got, err = store.GetTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, store.DeleteTransaction(ctx, txn.ID), common.ErrNotFound)
}

func TestSQLiteStorage_MalformedDateLoadsAsZero(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `
		INSERT INTO transactions (id, business_id, date, description, amount, type, category)
		VALUES ('bad-date', 'biz-1', 'not a date', 'Legacy row', '12.00', 'expense', '6')`)
	require.NoError(t, err)

	txn, err := store.GetTransaction(ctx, "bad-date")
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.True(t, txn.Date.IsZero())
	assert.False(t, txn.HasValidDate())
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(parseDate("2024-03-05", "x")))
	assert.True(t, want.Equal(parseDate("2024-03-05T00:00:00Z", "x")))
	assert.True(t, want.Equal(parseDate(formatDate(want), "x")))
	assert.True(t, parseDate("", "x").IsZero())
}
