// Package themes holds the color themes of the budget dashboard.
package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cashbook/internal/budget"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Selected    lipgloss.Style
	RoundedBox  lipgloss.Style
	StatusError lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Success     lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
}

// StatusColor maps a budget status band to a theme color.
func (t Theme) StatusColor(s budget.Status) lipgloss.Color {
	switch s {
	case budget.StatusOver:
		return t.Error
	case budget.StatusFair:
		return t.Warning
	default:
		return t.Success
	}
}

// Status returns a bold style in the color of a budget status band.
func (t Theme) Status(s budget.Status) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.StatusColor(s)).Bold(true)
}

func newTheme(primary, muted, border, fg, success, warning, errColor string) Theme {
	return Theme{
		Primary: lipgloss.Color(primary),
		Muted:   lipgloss.Color(muted),
		Border:  lipgloss.Color(border),
		Success: lipgloss.Color(success),
		Warning: lipgloss.Color(warning),
		Error:   lipgloss.Color(errColor),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(primary)),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color(muted)),
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color(fg)),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fg)),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(primary)),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(border)).
			Padding(0, 2),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.Color(errColor)).
			Bold(true),
	}
}

// Default is the default theme.
var Default = newTheme("#4ecdc4", "#737373", "#404040", "#fafafa", "#10b981", "#f59e0b", "#ef4444")

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = newTheme("#cba6f7", "#6c7086", "#45475a", "#cdd6f4", "#a6e3a1", "#f9e2af", "#f38ba8")

// ByName returns a theme by its configuration name, falling back to Default.
func ByName(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}
