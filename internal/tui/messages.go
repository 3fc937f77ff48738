package tui

import (
	"time"

	"github.com/Veraticus/cashbook/internal/engine"
)

// dashboardLoadedMsg carries a freshly evaluated dashboard or the error
// that prevented loading it.
type dashboardLoadedMsg struct {
	err       error
	dashboard *engine.Dashboard
	loadedAt  time.Time
}

// tickMsg triggers a periodic reload.
type tickMsg time.Time
