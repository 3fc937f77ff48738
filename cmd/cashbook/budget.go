package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/engine"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/tui"
	"github.com/Veraticus/cashbook/internal/tui/themes"
)

func budgetCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Set and track business budgets",
		Long: `Each business can have one budget: a total limit and optional limits
per expense category, evaluated over the current week, month or year.`,
		Example: `  # Monthly budget of 2000 with limits for food and transport
  cashbook budget set "Corner Shop" --period monthly --total 2000 \
    --limit Food=600 --limit Transportation=300

  # Walk through every expense category interactively
  cashbook budget set "Corner Shop" --interactive

  # Watch the dashboard, refreshing every 30 seconds
  cashbook budget watch "Corner Shop"`,
	}

	cmd.AddCommand(setBudgetCmd(opts))
	cmd.AddCommand(showBudgetCmd(opts))
	cmd.AddCommand(watchBudgetCmd(opts))
	cmd.AddCommand(clearBudgetCmd(opts))

	return cmd
}

func setBudgetCmd(opts *rootOptions) *cobra.Command {
	var (
		period      string
		total       string
		limits      []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "set <business>",
		Short: "Create or replace the budget of a business",
		Long: `Create or replace the budget of a business.

Limits not given keep their current value; a limit of 0 removes it. The
budget is rejected when the total is not positive or when the category
limits add up to more than the total.`,
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

			existing, err := book.Storage().GetBudgetByBusinessID(ctx, business.ID)
			if err != nil {
				return fmt.Errorf("failed to load budget: %w", err)
			}

			in := engine.BudgetInput{
				BusinessID:     business.ID,
				Period:         model.PeriodMonthly,
				CategoryLimits: make(map[string]decimal.Decimal),
			}
			if existing != nil {
				in.Revision = existing.Revision
				in.Period = existing.Period
				in.TotalLimit = existing.TotalLimit
				for id, cb := range existing.CategoryBudgets {
					in.CategoryLimits[id] = cb.Limit
				}
			}
			if period != "" {
				in.Period = model.Period(strings.ToLower(period))
			}

			if interactive {
				categories, err := book.Categories(ctx)
				if err != nil {
					return fmt.Errorf("failed to load categories: %w", err)
				}
				prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				answers, err := prompter.PromptBudget(ctx, categories, existing, business.CurrencySymbol())
				if err != nil {
					return err
				}
				in.TotalLimit = answers.TotalLimit
				in.CategoryLimits = answers.CategoryLimits
			} else {
				if total != "" {
					if in.TotalLimit, err = parseAmount(total); err != nil {
						return err
					}
				}
				for _, pair := range limits {
					id, amount, err := parseLimit(ctx, book, pair)
					if err != nil {
						return err
					}
					in.CategoryLimits[id] = amount
				}
			}

			saved, err := book.SaveBudget(ctx, in)
			if err != nil {
				var verr *budget.ValidationError
				if errors.As(err, &verr) {
					return common.NewUserError(verr.Reason, err)
				}
				return err
			}

			symbol := business.CurrencySymbol()
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %s budget of %s for %s (%s allocated to %d categories)",
				saved.Period, cli.FormatMoney(symbol, saved.TotalLimit), business.Name,
				cli.FormatMoney(symbol, budget.CategorySum(saved.CategoryBudgets)), len(saved.CategoryBudgets))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&period, "period", "p", "", "weekly, monthly or yearly (default: current period, or monthly)")
	cmd.Flags().StringVar(&total, "total", "", "total budget limit")
	cmd.Flags().StringArrayVarP(&limits, "limit", "l", nil, "category limit as Category=amount (repeatable)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for the total and every expense category")
	cmd.MarkFlagsMutuallyExclusive("interactive", "total")
	cmd.MarkFlagsMutuallyExclusive("interactive", "limit")

	return cmd
}

// parseLimit parses a Category=amount pair into a category ID and limit.
func parseLimit(ctx context.Context, book *engine.Cashbook, pair string) (string, decimal.Decimal, error) {
	name, value, ok := strings.Cut(pair, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", decimal.Zero, common.NewUserError(
			fmt.Sprintf("%q is not a category limit, use Category=amount", pair), nil)
	}

	category, err := book.ResolveCategory(ctx, strings.TrimSpace(name))
	if err != nil {
		return "", decimal.Zero, err
	}
	if category.Type != model.CategoryTypeExpense {
		return "", decimal.Zero, common.NewUserError(
			fmt.Sprintf("Category %q is not an expense category", category.Name), nil)
	}

	amount, err := parseAmount(value)
	if err != nil {
		return "", decimal.Zero, err
	}
	return category.ID, amount, nil
}

func showBudgetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <business>",
		Short: "Show the budget dashboard for the current period",
		Args:  cobra.ExactArgs(1),
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

			dashboard, err := book.Dashboard(ctx, business.ID)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), cli.RenderDashboard(dashboard))
			return nil
		},
	}
}

func watchBudgetCmd(opts *rootOptions) *cobra.Command {
	var (
		theme    string
		refresh  time.Duration
		showKeys bool
	)

	cmd := &cobra.Command{
		Use:   "watch <business>",
		Short: "Open the live budget dashboard",
		Args:  cobra.ExactArgs(1),
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

			themeName := opts.settings.Theme
			if theme != "" {
				themeName = theme
			}
			interval := opts.settings.RefreshInterval
			if refresh > 0 {
				interval = refresh
			}

			return tui.Run(ctx, book, business.ID,
				tui.WithTheme(themes.ByName(themeName)),
				tui.WithRefreshInterval(interval),
				tui.WithHelp(showKeys),
			)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "color theme: default or catppuccin")
	cmd.Flags().DurationVar(&refresh, "refresh", 0, "refresh interval, e.g. 10s or 1m (default from config)")
	cmd.Flags().BoolVar(&showKeys, "keys", false, "show the full key help on start")
	return cmd
}

func clearBudgetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <business>",
		Short: "Remove the budget of a business",
		Args:  cobra.ExactArgs(1),
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
			if err := book.ClearBudget(ctx, business.ID); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Cleared budget for "+business.Name))
			return nil
		},
	}
}
