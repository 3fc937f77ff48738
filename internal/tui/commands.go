package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/cashbook/internal/engine"
)

const loadTimeout = 10 * time.Second

// DashboardLoader evaluates the budget dashboard of a business.
type DashboardLoader interface {
	Dashboard(ctx context.Context, businessID string) (*engine.Dashboard, error)
}

// loadDashboard reloads the dashboard from the loader.
func (m Model) loadDashboard() tea.Cmd {
	loader, businessID, parent := m.loader, m.businessID, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, loadTimeout)
		defer cancel()

		d, err := loader.Dashboard(ctx, businessID)
		return dashboardLoadedMsg{dashboard: d, err: err, loadedAt: time.Now()}
	}
}

// tick schedules the next automatic refresh.
func (m Model) tick() tea.Cmd {
	if m.config.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.config.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
