package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/model"
)

// Categories returns the category catalog.
func (c *Cashbook) Categories(ctx context.Context) ([]model.Category, error) {
	return c.storage.GetCategories(ctx)
}

// AddCategory creates a custom category.
func (c *Cashbook) AddCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewUserError("Category name cannot be empty", nil)
	}
	if err := categoryType.Validate(); err != nil {
		return nil, common.NewUserError("Category type must be income or expense", err)
	}

	existing, err := c.findCategoryByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewUserError(fmt.Sprintf("Category %q already exists", existing.Name), common.ErrDuplicateEntry)
	}

	category := &model.Category{
		ID:   uuid.NewString(),
		Name: name,
		Type: categoryType,
	}
	if err := c.storage.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// RenameCategory changes the display name of a category.
func (c *Cashbook) RenameCategory(ctx context.Context, id, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewUserError("Category name cannot be empty", nil)
	}

	category, err := c.storage.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, common.NewUserError(fmt.Sprintf("Category %q does not exist", id), common.ErrNotFound)
	}

	category.Name = name
	if err := c.storage.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category. Default categories may be removed too.
func (c *Cashbook) DeleteCategory(ctx context.Context, id string) error {
	if err := c.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// ResolveCategory finds a category by ID or, failing that, by name
// (case-insensitive).
func (c *Cashbook) ResolveCategory(ctx context.Context, idOrName string) (*model.Category, error) {
	category, err := c.storage.GetCategory(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category != nil {
		return category, nil
	}

	category, err = c.findCategoryByName(ctx, idOrName)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, common.NewUserError(fmt.Sprintf("Category %q does not exist", idOrName), common.ErrNotFound)
	}
	return category, nil
}

func (c *Cashbook) findCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	categories, err := c.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i], nil
		}
	}
	return nil, nil
}
