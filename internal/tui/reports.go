package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sitetrackr/internal/export"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type reportMode int

const (
	reportCosts reportMode = iota
	reportSummary
)

var (
	paidBarStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	unpaidBarStyle = lipgloss.NewStyle().Foreground(colorWarning)
)

type reportsModel struct {
	width  int
	height int

	mode     reportMode
	info     store.ProjectInfo
	list     []items.WorkItem
	currency string
	today    time.Time

	groups  []categoryCost
	chart   barchart.Model
	summary string
	// rendered counts refreshes so a slow glamour render of older data is
	// dropped when it arrives.
	rendered uint64
}

// categoryCost splits one category's amount by payment state.
type categoryCost struct {
	category string
	paid     int64
	unpaid   int64
	progress int
}

func newReportsModel() reportsModel {
	return reportsModel{chart: barchart.New(60, 12)}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

type summaryRenderedMsg struct {
	seq uint64
	out string
	err error
}

// refresh takes a new snapshot and returns the command that renders the
// markdown summary for it.
func (r *reportsModel) refresh(info store.ProjectInfo, list []items.WorkItem, currency string, today time.Time) tea.Cmd {
	r.info = info
	r.list = list
	r.currency = currency
	r.today = today
	r.groups = costsByCategory(list)
	r.buildChart()
	r.rendered++
	return r.renderSummary(r.rendered)
}

func costsByCategory(list []items.WorkItem) []categoryCost {
	groups := items.ByCategory(list)
	out := make([]categoryCost, len(groups))
	idx := make(map[string]int, len(groups))
	for i, g := range groups {
		out[i] = categoryCost{category: g.Category, progress: g.Progress}
		idx[g.Category] = i
	}
	for _, it := range list {
		c := &out[idx[it.Category]]
		if it.Payment == items.PaymentPaid {
			c.paid += it.Amount
		} else {
			c.unpaid += it.Amount
		}
	}
	return out
}

func (r reportsModel) renderSummary(seq uint64) tea.Cmd {
	md := export.Markdown(r.info, r.list, r.currency, r.today)
	width := max(40, r.width-8)
	return func() tea.Msg {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return summaryRenderedMsg{seq: seq, out: md, err: err}
		}
		out, err := renderer.Render(md)
		if err != nil {
			return summaryRenderedMsg{seq: seq, out: md, err: err}
		}
		return summaryRenderedMsg{seq: seq, out: out}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryRenderedMsg:
		if msg.seq != r.rendered {
			return r, nil
		}
		r.summary = msg.out
		if msg.err != nil {
			return r, setStatus(fmt.Sprintf("Summary render failed: %v", msg.err), true)
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			if r.mode == reportCosts {
				r.mode = reportSummary
			} else {
				r.mode = reportCosts
			}
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, g := range r.groups {
		bars = append(bars, barchart.BarData{
			Label: truncate(g.category, 10),
			Values: []barchart.BarValue{
				{Name: "Paid", Value: float64(g.paid), Style: paidBarStyle},
				{Name: "Unpaid", Value: float64(g.unpaid), Style: unpaidBarStyle},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	costsTab := inactiveTabStyle.Render("Costs")
	summaryTab := inactiveTabStyle.Render("Summary")
	if r.mode == reportCosts {
		costsTab = activeTabStyle.Render("Costs")
	} else {
		summaryTab = activeTabStyle.Render("Summary")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, costsTab, summaryTab)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ",
		mutedStyle.Render("as of "+items.FormatDate(r.today)),
	)

	nav := mutedStyle.Render("  ←/→: switch mode")

	var body string
	if r.mode == reportSummary {
		body = r.summary
		if body == "" {
			body = mutedStyle.Render("  Rendering summary...")
		}
	} else if len(r.groups) == 0 {
		body = mutedStyle.Render("  No work items yet")
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			r.chart.View(), "", r.renderLegend(), "", r.renderCategoryTable(w),
		)
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (r reportsModel) renderCategoryTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %16s %16s %16s  %s",
		"Category", "Paid", "Unpaid", "Total", "Progress")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", max(0, min(w-6, 92)))))

	for _, g := range r.groups {
		rows = append(rows, fmt.Sprintf("  %s %16s %16s %16s  %s",
			pad(g.category, 20),
			formatAmount(r.currency, g.paid),
			formatAmount(r.currency, g.unpaid),
			formatAmount(r.currency, g.paid+g.unpaid),
			progressBar(g.progress, 12),
		))
	}

	t := items.Summarize(r.list)
	rows = append(rows, totalsStyle.Render(fmt.Sprintf("  %-20s %16s %16s %16s",
		"Total", formatAmount(r.currency, t.Paid), formatAmount(r.currency, t.Unpaid), formatAmount(r.currency, t.Total))))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderLegend() string {
	return "  " + paidBarStyle.Render("●") + " Paid  " + unpaidBarStyle.Render("●") + " Unpaid"
}
