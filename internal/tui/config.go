package tui

import (
	"time"

	"github.com/Veraticus/cashbook/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme           themes.Theme
	Width           int
	Height          int
	RefreshInterval time.Duration // Zero disables automatic refresh
	ShowHelp        bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:           themes.Default,
		Width:           80,
		Height:          24,
		RefreshInterval: 30 * time.Second,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithRefreshInterval sets how often the dashboard reloads.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Config) {
		c.RefreshInterval = d
	}
}

// WithHelp shows the full key help on start.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
