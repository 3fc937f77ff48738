package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/engine"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/ofx"
)

const importBatchSize = 50

type importOptions struct {
	expenseCategory string
	incomeCategory  string
	dryRun          bool
}

func importOFXCmd(opts *rootOptions) *cobra.Command {
	var flags importOptions

	cmd := &cobra.Command{
		Use:   "import-ofx <business> <file> [files...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import bank or credit card statements in OFX/QFX format into a business.

Debits become expenses and credits become income. Lines already imported
are recognized by their bank transaction ID and skipped, so a statement
can be imported again safely. A backup is taken before anything is saved.`,
		Example: `  # Preview what a statement contains
  cashbook import-ofx "Corner Shop" statement.qfx --dry-run

  # Import a folder of statements, filing debits under Other Expense
  cashbook import-ofx "Corner Shop" ~/Downloads/*.qfx --expense-category "Other Expense"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportOFX(cmd, opts, flags, args[0], args[1:])
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "preview the import without saving")
	cmd.Flags().StringVar(&flags.expenseCategory, "expense-category", "", "category ID or name for debits")
	cmd.Flags().StringVar(&flags.incomeCategory, "income-category", "", "category ID or name for credits")
	return cmd
}

func runImportOFX(cmd *cobra.Command, opts *rootOptions, flags importOptions, businessArg string, patterns []string) error {
	files, err := expandGlobs(patterns)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	book, store, err := opts.openCashbook(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	business, err := resolveBusiness(ctx, book, businessArg)
	if err != nil {
		return err
	}

	parseOpts := ofx.Options{BusinessID: business.ID}
	if parseOpts.ExpenseCategory, err = importCategory(ctx, book, flags.expenseCategory, model.CategoryTypeExpense); err != nil {
		return err
	}
	if parseOpts.IncomeCategory, err = importCategory(ctx, book, flags.incomeCategory, model.CategoryTypeIncome); err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "business", business.Name, "dry_run", flags.dryRun)

	txns, accounts := parseStatements(ctx, files, parseOpts)
	out := cmd.OutOrStdout()
	if len(txns) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No transactions found in any file"))
		return nil
	}

	names, err := categoryNames(ctx, book)
	if err != nil {
		return err
	}
	printImportSummary(out, business, txns, accounts, names)

	if flags.dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Dry run complete, nothing was saved"))
		return nil
	}

	bm, err := store.NewBackupManager()
	if err != nil {
		return fmt.Errorf("failed to open backups: %w", err)
	}
	backup, err := bm.AutoBackup(ctx, "import-ofx")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatInfo("Backup "+backup.ID+" taken before import"))

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx = handler.HandleInterrupts(ctx, "Import", "Run the same import again to finish; saved lines are skipped.")

	added, err := saveImported(ctx, book, txns, cmd.ErrOrStderr())
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d new transactions (%d already recorded)",
		added, len(txns)-added)))
	return nil
}

// expandGlobs resolves file patterns. Patterns that match nothing are kept
// when they name an existing file.
func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				matches = []string{pattern}
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", nil)
	}
	return files, nil
}

func importCategory(ctx context.Context, book *engine.Cashbook, idOrName string, want model.CategoryType) (string, error) {
	if idOrName == "" {
		return "", nil
	}
	category, err := book.ResolveCategory(ctx, idOrName)
	if err != nil {
		return "", err
	}
	if category.Type != want {
		return "", common.NewUserError(fmt.Sprintf("Category %q is not an %s category", category.Name, want), nil)
	}
	return category.ID, nil
}

// parseStatements parses every file, dropping lines seen in an earlier
// file, and returns the transactions with the statement account IDs.
// Unreadable files are logged and skipped.
func parseStatements(ctx context.Context, files []string, opts ofx.Options) ([]model.Transaction, []string) {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	seenAccounts := make(map[string]bool)
	var all []model.Transaction
	var accounts []string

	for _, path := range files {
		data, err := os.ReadFile(path) // #nosec G304 - user-provided statement path
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		txns, err := parser.ParseFile(ctx, bytes.NewReader(data), opts)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		fileAccounts, err := parser.GetAccounts(bytes.NewReader(data))
		if err != nil {
			slog.Warn("Failed to read statement accounts", "file", path, "error", err)
		}
		for _, acct := range fileAccounts {
			if !seenAccounts[acct] {
				seenAccounts[acct] = true
				accounts = append(accounts, acct)
			}
		}

		added := 0
		for _, txn := range txns {
			if seen[txn.ID] {
				continue
			}
			seen[txn.ID] = true
			all = append(all, txn)
			added++
		}

		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(txns),
			"added", added,
			"duplicates", len(txns)-added)
	}

	return all, accounts
}

func printImportSummary(w io.Writer, business *model.Business, txns []model.Transaction, accounts []string, names map[string]string) {
	oldest, newest := txns[0].Date, txns[0].Date
	for _, txn := range txns[1:] {
		if txn.Date.Before(oldest) {
			oldest = txn.Date
		}
		if txn.Date.After(newest) {
			newest = txn.Date
		}
	}
	income, expense := engine.Totals(txns)
	symbol := business.CurrencySymbol()

	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%d transactions for %s", len(txns), business.Name)))
	fmt.Fprintf(w, "Accounts: %s\n", strings.Join(accounts, ", "))
	fmt.Fprintf(w, "Dates:    %s to %s\n", oldest.Format("2006-01-02"), newest.Format("2006-01-02"))
	fmt.Fprintf(w, "Income:   %s\n", cli.IncomeStyle.Render(cli.FormatMoney(symbol, income)))
	fmt.Fprintf(w, "Expense:  %s\n", cli.ExpenseStyle.Render(cli.FormatMoney(symbol, expense)))

	sample := make([]model.Transaction, len(txns))
	copy(sample, txns)
	engine.SortNewestFirst(sample)
	if len(sample) > 10 {
		sample = sample[:10]
	}
	fmt.Fprint(w, cli.RenderTransactions(sample, symbol, names))
}

// saveImported stores transactions in batches and returns how many were new.
// Batches already saved stay saved when ctx is canceled.
func saveImported(ctx context.Context, book *engine.Cashbook, txns []model.Transaction, progressOut io.Writer) (int, error) {
	storage := book.Storage()

	added := 0
	for _, txn := range txns {
		existing, err := storage.GetTransaction(ctx, txn.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to check existing transactions: %w", err)
		}
		if existing == nil {
			added++
		}
	}

	bar := cli.NewImportProgress(progressOut, len(txns), "Saving transactions")
	for start := 0; start < len(txns); start += importBatchSize {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		end := min(start+importBatchSize, len(txns))
		if err := storage.SaveTransactions(ctx, txns[start:end]); err != nil {
			return 0, fmt.Errorf("failed to save transactions: %w", err)
		}
		_ = bar.Add(end - start)
	}

	return added, nil
}
