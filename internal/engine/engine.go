// Package engine orchestrates cashbook operations: every user action
// re-loads what it needs from storage, recomputes, and saves.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/service"
)

// Cashbook is the application service over a storage backend.
type Cashbook struct {
	storage         service.Storage
	now             func() time.Time
	defaultCurrency string
}

// Config holds configuration options for the cashbook engine.
type Config struct {
	// Now overrides the wall clock, mainly for tests.
	Now             func() time.Time
	DefaultCurrency string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Now:             time.Now,
		DefaultCurrency: "USD",
	}
}

// New creates a cashbook engine with the default configuration.
func New(storage service.Storage) *Cashbook {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a cashbook engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *Cashbook {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Cashbook{
		storage:         storage,
		now:             config.Now,
		defaultCurrency: strings.ToUpper(config.DefaultCurrency),
	}
}

// Storage exposes the underlying storage.
func (c *Cashbook) Storage() service.Storage {
	return c.storage
}

// requireBusiness loads a business or fails with common.ErrNotFound.
func (c *Cashbook) requireBusiness(ctx context.Context, id string) (*model.Business, error) {
	business, err := c.storage.GetBusiness(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load business: %w", err)
	}
	if business == nil {
		return nil, common.NewUserError(fmt.Sprintf("Business %q does not exist", id), common.ErrNotFound)
	}
	return business, nil
}
