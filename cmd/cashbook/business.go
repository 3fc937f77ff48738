package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/engine"
)

func businessCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "business",
		Aliases: []string{"biz"},
		Short:   "Manage businesses",
		Long: `Create, list, show and delete businesses.

Every transaction and budget belongs to a business. Businesses can be
referred to by ID or by name.`,
		Example: `  # Create a business that keeps its books in cedis
  cashbook business add "Corner Shop" --currency GHS

  # Show this week's transactions mentioning rice
  cashbook business show "Corner Shop" --range week --search rice`,
	}

	cmd.AddCommand(listBusinessesCmd(opts))
	cmd.AddCommand(addBusinessCmd(opts))
	cmd.AddCommand(showBusinessCmd(opts))
	cmd.AddCommand(deleteBusinessCmd(opts))

	return cmd
}

func listBusinessesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List businesses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			businesses, err := book.Businesses(ctx)
			if err != nil {
				return fmt.Errorf("failed to list businesses: %w", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderBusinesses(businesses))
			return nil
		},
	}
}

func addBusinessCmd(opts *rootOptions) *cobra.Command {
	var currency string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			business, err := book.CreateBusiness(ctx, args[0], currency)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
				fmt.Sprintf("Created business %q (%s) with ID %s", business.Name, business.Currency, business.ID)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&currency, "currency", "c", "", "ISO currency code, e.g. USD, GHS, EUR (default from config)")
	return cmd
}

func showBusinessCmd(opts *rootOptions) *cobra.Command {
	var rangeFlag, search string

	cmd := &cobra.Command{
		Use:   "show <business>",
		Short: "Show income, expense, balance and transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := engine.ParseRange(rangeFlag)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			business, err := resolveBusiness(ctx, book, args[0])
			if err != nil {
				return err
			}

			summary, err := book.Summary(ctx, business.ID, r, search)
			if err != nil {
				return err
			}
			names, err := categoryNames(ctx, book)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderSummary(summary, names))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "all", "time range: all, today, week, month")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only transactions whose description, amount or category contains this text")
	return cmd
}

func deleteBusinessCmd(opts *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <business>",
		Short: "Delete a business and its budget",
		Long: `Delete a business and its budget. Transactions recorded for the
business are kept but no longer belong to any listed business.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			business, err := resolveBusiness(ctx, book, args[0])
			if err != nil {
				return err
			}

			if !yes {
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete business %q and its budget?", business.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Delete canceled"))
					return nil
				}
			}

			orphaned, err := book.DeleteBusiness(ctx, business.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted business %q", business.Name)))
			if orphaned > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d transactions were kept without a business", orphaned)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
