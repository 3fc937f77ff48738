package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
)

// GetBusinesses returns all businesses, most recently updated first.
func (s *SQLiteStorage) GetBusinesses(ctx context.Context) ([]model.Business, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, currency, created_at, updated_at
		FROM businesses
		ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var businesses []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Currency, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		businesses = append(businesses, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating businesses: %w", err)
	}

	return businesses, nil
}

// GetBusiness returns a business by ID, or nil if it does not exist.
func (s *SQLiteStorage) GetBusiness(ctx context.Context, id string) (*model.Business, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var b model.Business
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, currency, created_at, updated_at
		FROM businesses
		WHERE id = ?`, id).Scan(&b.ID, &b.Name, &b.Currency, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query business: %w", err)
	}

	return &b, nil
}

// SaveBusiness inserts or updates a business. CreatedAt is preserved on update.
func (s *SQLiteStorage) SaveBusiness(ctx context.Context, business *model.Business) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBusiness(business); err != nil {
		return err
	}

	now := time.Now()
	if business.CreatedAt.IsZero() {
		business.CreatedAt = now
	}
	business.UpdatedAt = now

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO businesses (id, name, currency, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				currency = excluded.currency,
				updated_at = excluded.updated_at`,
			business.ID, business.Name, business.Currency, business.CreatedAt, business.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save business: %w", err)
		}
		return nil
	})
}

// DeleteBusiness removes a business and its budget. Transactions recorded
// under the business are left in place and counted in the same transaction.
func (s *SQLiteStorage) DeleteBusiness(ctx context.Context, id string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(id, "id"); err != nil {
		return 0, err
	}

	var orphaned int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM businesses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete business: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("business %q: %w", id, common.ErrNotFound)
		}

		if err := deleteBudgetTx(ctx, tx, id); err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE business_id = ?`, id).Scan(&orphaned); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}

		slog.Debug("deleted business", "business_id", id, "orphaned_transactions", orphaned)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orphaned, nil
}
