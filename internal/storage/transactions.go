package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

// dateLayout is fixed width so that lexical order in SQL matches time order.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

const transactionColumns = `id, business_id, date, description, amount, type,
	category, sub_category, payment_mode, remark`

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// parseDate reads a stored date. Values that cannot be parsed come back as the
// zero time so the transaction is still listed but never counted in a period.
func parseDate(raw, id string) time.Time {
	for _, layout := range []string{dateLayout, time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local()
		}
	}
	slog.Warn("unparseable transaction date", "transaction_id", id, "date", raw)
	return time.Time{}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var date, txnType string
	err := row.Scan(
		&txn.ID,
		&txn.BusinessID,
		&date,
		&txn.Description,
		&txn.Amount,
		&txnType,
		&txn.Category,
		&txn.SubCategory,
		&txn.PaymentMode,
		&txn.Remark,
	)
	if err != nil {
		return txn, err
	}
	txn.Date = parseDate(date, txn.ID)
	txn.Type = model.TransactionType(txnType)
	return txn, nil
}

// GetTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	var conditions []string
	var args []any

	if filter.BusinessID != "" {
		conditions = append(conditions, "business_id = ?")
		args = append(args, filter.BusinessID)
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}

	query := "SELECT " + transactionColumns + " FROM transactions"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransaction retrieves a transaction by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}

	return &txn, nil
}

// SaveTransaction inserts a transaction or replaces an existing one with the same ID.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				business_id = excluded.business_id,
				date = excluded.date,
				description = excluded.description,
				amount = excluded.amount,
				type = excluded.type,
				category = excluded.category,
				sub_category = excluded.sub_category,
				payment_mode = excluded.payment_mode,
				remark = excluded.remark`,
			transactionArgs(txn)...)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
		return nil
	})
}

// SaveTransactions inserts multiple transactions. Transactions whose ID is
// already stored are skipped, which makes re-importing a statement safe.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i := range transactions {
			if _, err := stmt.ExecContext(ctx, transactionArgs(&transactions[i])...); err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", transactions[i].ID, err)
			}
		}

		slog.Debug("saved transactions", "count", len(transactions))
		return nil
	})
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
		}
		return nil
	})
}

func transactionArgs(txn *model.Transaction) []any {
	return []any{
		txn.ID,
		txn.BusinessID,
		formatDate(txn.Date),
		txn.Description,
		txn.Amount.String(),
		string(txn.Type),
		txn.Category,
		txn.SubCategory,
		txn.PaymentMode,
		txn.Remark,
	}
}
