package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
)

const budgetColumns = `id, business_id, period, total_limit, revision, created_at, updated_at`

func scanBudget(row rowScanner) (model.Budget, error) {
	var b model.Budget
	var period string
	err := row.Scan(&b.ID, &b.BusinessID, &period, &b.TotalLimit, &b.Revision, &b.CreatedAt, &b.UpdatedAt)
	b.Period = model.Period(period)
	return b, err
}

// GetBudgets returns every stored budget with its category allocations.
func (s *SQLiteStorage) GetBudgets(ctx context.Context) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+budgetColumns+" FROM budgets ORDER BY business_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	_ = rows.Close()

	// Allocations are loaded after the budget cursor is closed; the pool
	// has a single connection.
	for i := range budgets {
		allocations, err := s.getAllocations(ctx, budgets[i].ID)
		if err != nil {
			return nil, err
		}
		budgets[i].CategoryBudgets = allocations
	}

	return budgets, nil
}

// GetBudgetByBusinessID returns the budget for a business, or nil if the
// business has none.
func (s *SQLiteStorage) GetBudgetByBusinessID(ctx context.Context, businessID string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE business_id = ?", businessID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	allocations, err := s.getAllocations(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.CategoryBudgets = allocations

	return &b, nil
}

func (s *SQLiteStorage) getAllocations(ctx context.Context, budgetID string) (map[string]model.CategoryBudget, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, limit_amount
		FROM budget_allocations
		WHERE budget_id = ?`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget allocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	allocations := make(map[string]model.CategoryBudget)
	for rows.Next() {
		var categoryID string
		var limit decimal.Decimal
		if err := rows.Scan(&categoryID, &limit); err != nil {
			return nil, fmt.Errorf("failed to scan budget allocation: %w", err)
		}
		allocations[categoryID] = model.CategoryBudget{Limit: limit}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget allocations: %w", err)
	}

	return allocations, nil
}

// SaveBudget upserts the budget of a business.
//
// The write is a compare-and-swap on Revision: a new budget must carry
// revision 0, and an update must carry the revision it was read at. A stale
// revision fails with common.ErrConflict. On success the budget's ID,
// CreatedAt, UpdatedAt and Revision reflect the stored row.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, b *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudget(b); err != nil {
		return err
	}

	now := time.Now()
	saved := *b

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var existingID string
		var existingRevision int64
		var createdAt time.Time
		err := tx.QueryRowContext(ctx,
			`SELECT id, revision, created_at FROM budgets WHERE business_id = ?`,
			b.BusinessID).Scan(&existingID, &existingRevision, &createdAt)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			if b.Revision != 0 {
				return fmt.Errorf("budget for business %q was deleted: %w", b.BusinessID, common.ErrConflict)
			}
			saved.ID = b.ID
			if saved.ID == "" {
				saved.ID = uuid.NewString()
			}
			saved.CreatedAt = now
			saved.UpdatedAt = now
			saved.Revision = 1

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO budgets (`+budgetColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				saved.ID, saved.BusinessID, string(saved.Period), saved.TotalLimit.String(),
				saved.Revision, saved.CreatedAt, saved.UpdatedAt); err != nil {
				return fmt.Errorf("failed to insert budget: %w", err)
			}

		case err != nil:
			return fmt.Errorf("failed to query budget: %w", err)

		default:
			if b.Revision != existingRevision {
				return fmt.Errorf("budget for business %q is at revision %d, not %d: %w",
					b.BusinessID, existingRevision, b.Revision, common.ErrConflict)
			}
			saved.ID = existingID
			saved.CreatedAt = createdAt
			saved.UpdatedAt = now
			saved.Revision = existingRevision + 1

			result, err := tx.ExecContext(ctx, `
				UPDATE budgets
				SET period = ?, total_limit = ?, revision = ?, updated_at = ?
				WHERE id = ? AND revision = ?`,
				string(saved.Period), saved.TotalLimit.String(), saved.Revision, saved.UpdatedAt,
				existingID, existingRevision)
			if err != nil {
				return fmt.Errorf("failed to update budget: %w", err)
			}
			if affected, _ := result.RowsAffected(); affected == 0 {
				return fmt.Errorf("budget for business %q: %w", b.BusinessID, common.ErrConflict)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM budget_allocations WHERE budget_id = ?`, existingID); err != nil {
				return fmt.Errorf("failed to clear budget allocations: %w", err)
			}
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO budget_allocations (budget_id, category_id, limit_amount)
			VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare allocation statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for categoryID, cb := range b.CategoryBudgets {
			if _, err := stmt.ExecContext(ctx, saved.ID, categoryID, cb.Limit.String()); err != nil {
				return fmt.Errorf("failed to insert allocation for category %s: %w", categoryID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.ID = saved.ID
	b.CreatedAt = saved.CreatedAt
	b.UpdatedAt = saved.UpdatedAt
	b.Revision = saved.Revision

	slog.Debug("saved budget", "business_id", b.BusinessID, "revision", b.Revision)
	return nil
}

// DeleteBudget removes the budget of a business. Deleting a budget that does
// not exist is not an error.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, businessID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(businessID, "businessID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deleteBudgetTx(ctx, tx, businessID)
	})
}

func deleteBudgetTx(ctx context.Context, tx *sql.Tx, businessID string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM budget_allocations
		WHERE budget_id IN (SELECT id FROM budgets WHERE business_id = ?)`, businessID); err != nil {
		return fmt.Errorf("failed to delete budget allocations: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM budgets WHERE business_id = ?`, businessID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}
