package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/engine"
	"github.com/Veraticus/cashbook/internal/model"
)

// txFlags are the fields shared by tx add and tx edit.
type txFlags struct {
	txnType     string
	category    string
	description string
	date        string
	payment     string
	remark      string
	subCategory string
}

func (f *txFlags) register(cmd *cobra.Command, defaultType string) {
	cmd.Flags().StringVarP(&f.txnType, "type", "t", defaultType, "income or expense")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category ID or name")
	cmd.Flags().StringVarP(&f.description, "desc", "d", "", "description (defaults to the category name)")
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD or YYYY-MM-DD HH:MM (defaults to now)")
	cmd.Flags().StringVarP(&f.payment, "payment", "p", "", "payment mode, e.g. cash, card, mobile money")
	cmd.Flags().StringVar(&f.remark, "remark", "", "free-form remark")
	cmd.Flags().StringVar(&f.subCategory, "sub", "", "sub-category")
}

func txCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction", "transactions"},
		Short:   "Record and manage transactions",
		Example: `  # Record a food expense and see the budget warning, if any
  cashbook tx add "Corner Shop" 45.50 --category Food --payment cash

  # Record income
  cashbook tx add "Corner Shop" 1200 --type income --category Business

  # List this week's transactions
  cashbook tx list "Corner Shop" --range week`,
	}

	cmd.AddCommand(addTxCmd(opts))
	cmd.AddCommand(editTxCmd(opts))
	cmd.AddCommand(listTxCmd(opts))
	cmd.AddCommand(deleteTxCmd(opts))

	return cmd
}

func addTxCmd(opts *rootOptions) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "add <business> <amount>",
		Short: "Record a transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			date, err := parseDate(flags.date)
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

			in := engine.TransactionInput{
				BusinessID:  business.ID,
				Amount:      amount,
				Type:        model.TransactionType(flags.txnType),
				Description: flags.description,
				Date:        date,
				PaymentMode: flags.payment,
				Remark:      flags.remark,
				SubCategory: flags.subCategory,
			}
			if flags.category != "" {
				category, err := book.ResolveCategory(ctx, flags.category)
				if err != nil {
					return err
				}
				in.Category = category.ID
			}

			result, err := book.AddTransaction(ctx, in)
			if err != nil {
				return err
			}

			printTransactionResult(cmd.OutOrStdout(), "Recorded", business.CurrencySymbol(), result)
			return nil
		},
	}

	flags.register(cmd, string(model.TransactionTypeExpense))
	return cmd
}

func editTxCmd(opts *rootOptions) *cobra.Command {
	var flags txFlags

	cmd := &cobra.Command{
		Use:   "edit <transaction-id> [amount]",
		Short: "Replace a transaction, keeping fields that are not given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			existing, err := book.Transaction(ctx, args[0])
			if err != nil {
				return err
			}

			in := engine.TransactionInput{
				BusinessID:  existing.BusinessID,
				Amount:      existing.Amount,
				Type:        existing.Type,
				Description: existing.Description,
				Date:        existing.Date,
				Category:    existing.Category,
				SubCategory: existing.SubCategory,
				PaymentMode: existing.PaymentMode,
				Remark:      existing.Remark,
			}

			if len(args) == 2 {
				if in.Amount, err = parseAmount(args[1]); err != nil {
					return err
				}
			}

			changed := cmd.Flags().Changed
			if changed("type") {
				in.Type = model.TransactionType(flags.txnType)
			}
			if changed("category") {
				in.Category = ""
				if flags.category != "" {
					category, err := book.ResolveCategory(ctx, flags.category)
					if err != nil {
						return err
					}
					in.Category = category.ID
				}
			}
			if changed("desc") {
				in.Description = flags.description
			}
			if changed("date") {
				if in.Date, err = parseDate(flags.date); err != nil {
					return err
				}
			}
			if changed("payment") {
				in.PaymentMode = flags.payment
			}
			if changed("remark") {
				in.Remark = flags.remark
			}
			if changed("sub") {
				in.SubCategory = flags.subCategory
			}

			business, err := book.Business(ctx, existing.BusinessID)
			if err != nil {
				return err
			}

			result, err := book.EditTransaction(ctx, existing.ID, in)
			if err != nil {
				return err
			}

			printTransactionResult(cmd.OutOrStdout(), "Updated", business.CurrencySymbol(), result)
			return nil
		},
	}

	flags.register(cmd, "")
	return cmd
}

func listTxCmd(opts *rootOptions) *cobra.Command {
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "list <business>",
		Short: "List transactions, newest first",
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

			txns, err := book.Transactions(ctx, business.ID, r)
			if err != nil {
				return fmt.Errorf("failed to list transactions: %w", err)
			}
			engine.SortNewestFirst(txns)

			names, err := categoryNames(ctx, book)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransactions(txns, business.CurrencySymbol(), names))
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "all", "time range: all, today, week, month")
	return cmd
}

func deleteTxCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			book, store, err := opts.openCashbook(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := book.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted transaction "+args[0]))
			return nil
		},
	}
}

func printTransactionResult(w io.Writer, verb, symbol string, result *engine.TransactionResult) {
	txn := result.Transaction
	fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf("%s %s of %s (%s)",
		verb, txn.Type, cli.FormatMoney(symbol, txn.Amount), txn.ID)))
	if result.Warning != "" {
		fmt.Fprintln(w, cli.WarningStyle.Render(result.Warning))
	}
}
