package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/engine"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/storage"
)

// initStorage opens the configured database and runs migrations.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// openCashbook opens storage and wraps it in the engine. The caller closes
// the returned storage.
func (o *rootOptions) openCashbook(ctx context.Context) (*engine.Cashbook, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx, o.settings.DatabasePath)
	if err != nil {
		return nil, nil, err
	}

	cfg := engine.DefaultConfig()
	if o.settings.DefaultCurrency != "" {
		cfg.DefaultCurrency = o.settings.DefaultCurrency
	}
	return engine.NewWithConfig(store, cfg), store, nil
}

// resolveBusiness finds a business by ID or, failing that, by name
// (case-insensitive).
func resolveBusiness(ctx context.Context, book *engine.Cashbook, idOrName string) (*model.Business, error) {
	businesses, err := book.Businesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load businesses: %w", err)
	}

	var byName []model.Business
	for _, b := range businesses {
		if b.ID == idOrName {
			return &b, nil
		}
		if strings.EqualFold(b.Name, idOrName) {
			byName = append(byName, b)
		}
	}

	switch len(byName) {
	case 0:
		return nil, common.NewUserError(fmt.Sprintf("Business %q does not exist", idOrName), common.ErrNotFound)
	case 1:
		return &byName[0], nil
	default:
		return nil, common.NewUserError(fmt.Sprintf("More than one business is named %q, use its ID", idOrName), nil)
	}
}

// parseAmount parses a user-entered amount such as "1,250.50".
func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("%q is not a valid amount", s), common.ErrInvalidAmount)
	}
	return amount, nil
}

// parseDate parses a local date or date-time. Empty input returns the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, common.NewUserError(fmt.Sprintf("%q is not a valid date, use YYYY-MM-DD", s), common.ErrInvalidDate)
}

// categoryNames maps category IDs to display names.
func categoryNames(ctx context.Context, book *engine.Cashbook) (map[string]string, error) {
	categories, err := book.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names, nil
}
