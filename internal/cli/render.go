package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/engine"
	"github.com/Veraticus/cashbook/internal/model"
	"github.com/Veraticus/cashbook/internal/storage"
)

const barWidth = 24

// FormatMoney renders an amount with a currency symbol and two decimals.
func FormatMoney(symbol string, amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + symbol + amount.Abs().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// UsageBar draws a fixed-width bar for a usage percentage. Values above 100
// fill the bar completely.
func UsageBar(percentage float64, width int) string {
	filled := int(percentage / 100 * float64(width))
	filled = max(0, min(width, filled))

	style := StatusStyle(budget.StatusForPercentage(percentage))
	return style.Render(strings.Repeat("█", filled)) +
		SubtleStyle.Render(strings.Repeat("░", width-filled))
}

// RenderDashboard renders the budget dashboard of a business.
func RenderDashboard(d *engine.Dashboard) string {
	var b strings.Builder

	b.WriteString(FormatTitle(d.Business.Name + " budget"))
	b.WriteString("\n")

	if !d.HasBudget() {
		b.WriteString(FormatInfo("No budget set. Create one with: cashbook budget set " + d.Business.ID))
		b.WriteString("\n")
		return b.String()
	}

	healthStyle := StatusStyle(d.Health).Bold(true)
	header := fmt.Sprintf("%s  %s\n%s %s of %s spent, %s left\n%s %s",
		BoldStyle.Render(d.PeriodName),
		SubtleStyle.Render(d.Window.Start.Format("2 Jan 2006")+" to "+d.Window.End.Format("2 Jan 2006")),
		ChartIcon,
		FormatMoney(d.CurrencySymbol, d.TotalSpent),
		FormatMoney(d.CurrencySymbol, d.TotalLimit),
		FormatMoney(d.CurrencySymbol, d.Remaining),
		healthStyle.Render(fmt.Sprintf("Health %.0f", d.HealthScore)),
		healthStyle.Render(budget.HealthLabel(d.Health)),
	)
	b.WriteString(RenderBox(string(d.Budget.Period)+" budget", header))
	b.WriteString("\n\n")

	if len(d.Items) == 0 {
		b.WriteString(SubtleStyle.Render("No category budgets."))
		b.WriteString("\n")
	}

	nameWidth := 0
	for _, item := range d.Items {
		nameWidth = max(nameWidth, lipgloss.Width(item.CategoryName))
	}
	for _, item := range d.Items {
		name := lipgloss.NewStyle().Width(nameWidth + 2).Render(item.CategoryName)
		fmt.Fprintf(&b, "%s%s %6.1f%%  %s / %s\n",
			name,
			UsageBar(item.Percentage, barWidth),
			item.Percentage,
			FormatMoney(d.CurrencySymbol, item.Spent),
			FormatMoney(d.CurrencySymbol, item.Limit),
		)
	}

	if len(d.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range d.Warnings {
			b.WriteString(WarningStyle.Render(w))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// RenderSummary renders a business ledger headline and its transactions
// grouped by day.
func RenderSummary(s *engine.BusinessSummary, categoryNames map[string]string) string {
	var b strings.Builder

	b.WriteString(FormatTitle(s.Business.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Income %s   Expense %s   Balance %s\n\n",
		IncomeStyle.Render(FormatMoney(s.CurrencySymbol, s.TotalIncome)),
		ExpenseStyle.Render(FormatMoney(s.CurrencySymbol, s.TotalExpense)),
		BoldStyle.Render(FormatMoney(s.CurrencySymbol, s.Balance)),
	)

	if len(s.Transactions) == 0 {
		b.WriteString(SubtleStyle.Render("No transactions."))
		b.WriteString("\n")
		return b.String()
	}

	for _, group := range s.Groups {
		b.WriteString(TableHeaderStyle.Render(group.Title))
		b.WriteString("\n")
		b.WriteString(RenderTransactions(group.Transactions, s.CurrencySymbol, categoryNames))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTransactions renders transactions as a table. Expenses are shown
// negative.
func RenderTransactions(txns []model.Transaction, symbol string, categoryNames map[string]string) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ID", "TIME", "DESCRIPTION", "CATEGORY", "AMOUNT").
		StyleFunc(func(row, col int) lipgloss.Style {
			style := TableCellStyle
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(SubtleColor)
			}
			if col == 4 && row >= 0 && row < len(txns) {
				if txns[row].Type == model.TransactionTypeIncome {
					return style.Foreground(SuccessColor)
				}
				return style.Foreground(ErrorColor)
			}
			return style
		})

	for _, txn := range txns {
		amount := txn.Amount
		if txn.Type == model.TransactionTypeExpense {
			amount = amount.Neg()
		}
		category := txn.Category
		if name, ok := categoryNames[txn.Category]; ok {
			category = name
		}
		when := "--:--"
		if txn.HasValidDate() {
			when = txn.Date.Format("15:04")
		}
		t.Row(txn.ID, when, txn.Description, category, FormatMoney(symbol, amount))
	}
	return t.String()
}

// RenderBusinesses renders the business list.
func RenderBusinesses(businesses []model.Business) string {
	if len(businesses) == 0 {
		return FormatInfo("No businesses yet. Create one with: cashbook business add <name>") + "\n"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "NAME", "CURRENCY")
	for _, biz := range businesses {
		t.Row(biz.ID, biz.Name, biz.Currency+" "+biz.CurrencySymbol())
	}
	return t.String() + "\n"
}

// RenderCategories renders the category catalog.
func RenderCategories(categories []model.Category) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "NAME", "TYPE", "")
	for _, c := range categories {
		marker := ""
		if c.IsDefault {
			marker = "default"
		}
		t.Row(c.ID, c.Name, string(c.Type), marker)
	}
	return t.String() + "\n"
}

// RenderBackups renders the backup list.
func RenderBackups(backups []storage.BackupInfo) string {
	if len(backups) == 0 {
		return FormatInfo("No backups found") + "\n"
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SubtleStyle).
		Headers("ID", "CREATED", "SIZE", "ROWS", "DESCRIPTION")
	for _, bk := range backups {
		id := bk.ID
		if bk.IsAuto {
			id += " (auto)"
		}
		rows := 0
		for _, n := range bk.RowCounts {
			rows += n
		}
		t.Row(id, bk.CreatedAt.Format("2006-01-02 15:04"), formatSize(bk.FileSize), fmt.Sprint(rows), bk.Description)
	}
	return t.String() + "\n"
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
