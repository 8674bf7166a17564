package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/sitetrackr/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewSchedule viewState = iota
	viewPermits
	viewReports
	viewSettings
)

var viewNames = []string{"Schedule", "Permits", "Reports", "Settings"}

// --- Messages ---

// itemsChangedMsg is emitted by the schedule after a successful mutation of
// the item store.
type itemsChangedMsg struct {
	status  string
	updated bool // an existing item was edited
}

// permitsChangedMsg is emitted after any personnel or vehicle mutation.
type permitsChangedMsg struct {
	status string
}

// infoChangedMsg carries an edited project header.
type infoChangedMsg struct {
	info store.ProjectInfo
}

// settingsChangedMsg is emitted after the settings form is saved.
type settingsChangedMsg struct{}

type statusMsg struct {
	text    string
	isError bool
}

type savedMsg struct {
	what string
	err  error
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatAmount(symbol string, amount int64) string {
	return symbol + humanize.Comma(amount)
}

// progressBar renders pct (clamped to 0..100) as a fixed-width bar.
func progressBar(pct, width int) string {
	pct = clampPercent(pct)
	if width < 1 {
		return ""
	}
	filled := pct * width / 100
	bar := successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

func clampPercent(p int) int {
	return max(0, min(100, p))
}

// truncate shortens s to at most w display cells, marking the cut with an
// ellipsis.
func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

// pad right-pads s with spaces to exactly w display cells, truncating first.
func pad(s string, w int) string {
	s = truncate(s, w)
	if gap := w - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

func check(ok bool) string {
	if ok {
		return successStyle.Render("✓")
	}
	return errorStyle.Render("✗")
}
