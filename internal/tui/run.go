package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the live dashboard of a business until the user quits or ctx
// is canceled.
func Run(ctx context.Context, loader DashboardLoader, businessID string, opts ...Option) error {
	if loader == nil {
		return fmt.Errorf("dashboard loader is required")
	}

	p := tea.NewProgram(
		NewModel(ctx, loader, businessID, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
