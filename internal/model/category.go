package model

import "fmt"

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Validate reports whether the category type is one of the known kinds.
func (t CategoryType) Validate() error {
	switch t {
	case CategoryTypeIncome, CategoryTypeExpense:
		return nil
	default:
		return fmt.Errorf("invalid category type %q: must be income or expense", string(t))
	}
}

// Category represents a classification tag for transactions.
// The catalog is global and shared by every business.
type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
	IsDefault bool         `json:"isDefault"`
}

// DefaultCategories returns the seed catalog used when no categories have been saved yet.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Salary", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "2", Name: "Business", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "3", Name: "Freelance", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "4", Name: "Investment", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "5", Name: "Other Income", Type: CategoryTypeIncome, IsDefault: true},
		{ID: "6", Name: "Food", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "7", Name: "Transportation", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "8", Name: "Housing", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "9", Name: "Utilities", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "10", Name: "Healthcare", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "11", Name: "Insurance", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "12", Name: "Personal", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "13", Name: "Education", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "14", Name: "Savings", Type: CategoryTypeExpense, IsDefault: true},
		{ID: "15", Name: "Other Expense", Type: CategoryTypeExpense, IsDefault: true},
	}
}

// ExpenseCategories returns only the expense categories, preserving order.
func ExpenseCategories(categories []Category) []Category {
	var out []Category
	for _, c := range categories {
		if c.Type == CategoryTypeExpense {
			out = append(out, c)
		}
	}
	return out
}
