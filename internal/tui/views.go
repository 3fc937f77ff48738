package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/model"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	theme := m.config.Theme
	var sections []string

	switch {
	case m.dashboard == nil && m.lastError != nil:
		sections = append(sections, theme.StatusError.Render("Failed to load budget: "+m.lastError.Error()))
	case m.dashboard == nil:
		sections = append(sections, theme.Subtitle.Render("Loading budget..."))
	case !m.dashboard.HasBudget():
		sections = append(sections,
			theme.Title.Render(m.dashboard.Business.Name),
			theme.Subtitle.Render("No budget set. Create one with: cashbook budget set "+m.dashboard.Business.ID),
		)
	default:
		sections = append(sections, m.renderHeader(), m.renderItems())
		if detail := m.renderDetail(); detail != "" {
			sections = append(sections, detail)
		}
		if m.lastError != nil {
			sections = append(sections, theme.StatusError.Render("Refresh failed: "+m.lastError.Error()))
		}
	}

	sections = append(sections, m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) money(amount decimal.Decimal) string {
	return m.dashboard.CurrencySymbol + amount.StringFixed(2)
}

func (m Model) renderHeader() string {
	d := m.dashboard
	theme := m.config.Theme

	title := theme.Title.Render(d.Business.Name) + "  " + theme.Subtitle.Render(d.PeriodName)
	totals := fmt.Sprintf("%s of %s spent, %s left",
		theme.Bold.Render(m.money(d.TotalSpent)),
		m.money(d.TotalLimit),
		m.money(d.Remaining),
	)
	health := theme.Status(d.Health).Render(fmt.Sprintf("Health %.0f %s", d.HealthScore, budget.HealthLabel(d.Health)))

	var usage float64
	if d.TotalLimit.IsPositive() {
		usage = d.TotalSpent.Div(d.TotalLimit).InexactFloat64()
	}
	bar := m.bars[budget.StatusForPercentage(usage*100)].ViewAs(usage)

	return theme.RoundedBox.Width(max(40, m.width-4)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, totals, bar, health),
	)
}

func (m Model) renderItems() string {
	theme := m.config.Theme
	items := m.dashboard.Items
	if len(items) == 0 {
		return theme.Subtitle.Render("No category budgets.")
	}

	nameWidth := 0
	for _, item := range items {
		nameWidth = max(nameWidth, lipgloss.Width(item.CategoryName))
	}

	var b strings.Builder
	for i, item := range items {
		status := budget.StatusForPercentage(item.Percentage)
		marker := "  "
		name := theme.Normal.Width(nameWidth).Render(item.CategoryName)
		if i == m.cursor {
			marker = theme.Selected.Render("> ")
			name = theme.Selected.Width(nameWidth).Render(item.CategoryName)
		}
		fmt.Fprintf(&b, "%s%s  %s %s\n",
			marker,
			name,
			m.bars[status].ViewAs(item.Percentage/100),
			theme.Status(status).Render(fmt.Sprintf("%5.1f%%", item.Percentage)),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDetail() string {
	items := m.dashboard.Items
	if m.cursor >= len(items) {
		return ""
	}
	item := items[m.cursor]
	theme := m.config.Theme

	lines := []string{
		fmt.Sprintf("%s: %s spent of %s, %s remaining",
			theme.Bold.Render(item.CategoryName),
			m.money(item.Spent), m.money(item.Limit), m.money(item.Remaining)),
	}
	if msg, ok := budget.WarningFor(item.CategoryName, item.Remaining, item.Percentage, m.dashboard.CurrencySymbol); ok {
		lines = append(lines, theme.Status(budget.StatusForPercentage(item.Percentage)).Render(msg))
	}
	return "\n" + strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	theme := m.config.Theme
	status := ""
	switch {
	case m.loading:
		status = "refreshing..."
	case !m.loadedAt.IsZero():
		status = "updated " + m.loadedAt.Format("15:04:05")
	}
	return "\n" + theme.Subtitle.Render(status) + "\n" + m.help.View(m.keymap)
}

// SelectedItem returns the highlighted category, if any.
func (m Model) SelectedItem() (model.CategoryBudgetSpent, bool) {
	if m.dashboard == nil || m.cursor >= len(m.dashboard.Items) {
		return model.CategoryBudgetSpent{}, false
	}
	return m.dashboard.Items[m.cursor], true
}
