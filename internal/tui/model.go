// Package tui implements the live budget dashboard using bubbletea.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/cashbook/internal/budget"
	"github.com/Veraticus/cashbook/internal/engine"
)

// Model holds the dashboard state.
type Model struct {
	ctx        context.Context
	loader     DashboardLoader
	lastError  error
	dashboard  *engine.Dashboard
	loadedAt   time.Time
	bars       map[budget.Status]progress.Model
	help       help.Model
	businessID string
	config     Config
	keymap     KeyMap
	cursor     int
	width      int
	height     int
	loading    bool
	quitting   bool
}

// NewModel creates a dashboard model for one business.
func NewModel(ctx context.Context, loader DashboardLoader, businessID string, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = cfg.ShowHelp
	h.Width = cfg.Width

	m := Model{
		ctx:        ctx,
		loader:     loader,
		businessID: businessID,
		config:     cfg,
		keymap:     DefaultKeyMap(),
		help:       h,
		width:      cfg.Width,
		height:     cfg.Height,
		loading:    true,
	}
	m.bars = m.newBars()
	return m
}

func (m Model) newBars() map[budget.Status]progress.Model {
	bars := make(map[budget.Status]progress.Model, 3)
	for _, s := range []budget.Status{budget.StatusGood, budget.StatusFair, budget.StatusOver} {
		bars[s] = progress.New(
			progress.WithSolidFill(string(m.config.Theme.StatusColor(s))),
			progress.WithoutPercentage(),
			progress.WithWidth(m.barWidth()),
		)
	}
	return bars
}

func (m Model) barWidth() int {
	return max(10, min(40, m.width/3))
}

// Init starts the first load and the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadDashboard(), m.tick())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bars = m.newBars()
		return m, nil

	case dashboardLoadedMsg:
		m.loading = false
		m.lastError = msg.err
		if msg.err == nil {
			m.dashboard = msg.dashboard
			m.loadedAt = msg.loadedAt
			m.clampCursor()
		}
		return m, nil

	case tickMsg:
		m.loading = true
		return m, tea.Batch(m.loadDashboard(), m.tick())
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keymap.Refresh):
		m.loading = true
		return m, m.loadDashboard()

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) clampCursor() {
	n := 0
	if m.dashboard != nil {
		n = len(m.dashboard.Items)
	}
	m.cursor = max(0, min(m.cursor, n-1))
}
