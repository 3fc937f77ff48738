package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/model"
)

func categoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage transaction categories",
		Long: `Manage the category catalog shared by all businesses.

The catalog starts with default income and expense categories. Custom
categories can be added, renamed and removed.`,
	}

	cmd.AddCommand(listCategoriesCmd(opts))
	cmd.AddCommand(addCategoryCmd(opts))
	cmd.AddCommand(updateCategoryCmd(opts))
	cmd.AddCommand(deleteCategoryCmd(opts))

	return cmd
}

func listCategoriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := book.Categories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderCategories(categories))
			return nil
		},
	}
}

func addCategoryCmd(opts *rootOptions) *cobra.Command {
	var categoryType string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := book.AddCategory(ctx, args[0], model.CategoryType(categoryType))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Added %s category %q with ID %s", category.Type, category.Name, category.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&categoryType, "type", "t", string(model.CategoryTypeExpense), "income or expense")
	return cmd
}

func updateCategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update <category> <new-name>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := book.ResolveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			oldName := category.Name

			category, err = book.RenameCategory(ctx, category.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Renamed category %q to %q", oldName, category.Name)))
			return nil
		},
	}
}

func deleteCategoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete a category",
		Long: `Delete a category. Transactions and budget limits that refer to it
keep the ID, but the category no longer appears on budget dashboards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := book.ResolveCategory(ctx, args[0])
			if err != nil {
				return err
			}
			if err := book.DeleteCategory(ctx, category.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted category %q", category.Name)))
			return nil
		},
	}
}
