package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

// Currency formats amount with thousands separators behind symbol.
func Currency(symbol string, amount int64) string {
	return symbol + humanize.Comma(amount)
}

// Markdown renders a project summary: header, budget totals, a per-category
// table and the list of overdue items as of today.
func Markdown(info store.ProjectInfo, list []items.WorkItem, symbol string, today time.Time) string {
	var b strings.Builder

	name := info.Name
	if name == "" {
		name = "Untitled project"
	}
	fmt.Fprintf(&b, "# %s\n\n", escapeMD(name))

	if !info.StartDate.IsZero() || !info.EndDate.IsZero() {
		fmt.Fprintf(&b, "- **Schedule:** %s to %s", items.FormatDate(info.StartDate), items.FormatDate(info.EndDate))
		if d := info.Duration(); d > 0 {
			fmt.Fprintf(&b, " (%d days)", d)
		}
		b.WriteString("\n")
	}
	if !info.UpdatedDate.IsZero() {
		fmt.Fprintf(&b, "- **Updated:** %s\n", items.FormatDate(info.UpdatedDate))
	}
	for _, row := range [][2]string{
		{"Site manager", info.SiteManager},
		{"Safety officer", info.SafetyOfficer},
		{"Quality control", info.QualityControl},
	} {
		if row[1] != "" {
			fmt.Fprintf(&b, "- **%s:** %s\n", row[0], escapeMD(row[1]))
		}
	}

	totals := items.Summarize(list)
	b.WriteString("\n## Budget\n\n")
	fmt.Fprintf(&b, "| Items | Total | Paid | Unpaid |\n|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
		totals.Count, Currency(symbol, totals.Total), Currency(symbol, totals.Paid), Currency(symbol, totals.Unpaid))

	if groups := items.ByCategory(list); len(groups) > 0 {
		b.WriteString("\n## By category\n\n")
		b.WriteString("| Category | Items | Amount | Avg progress |\n|---|---:|---:|---:|\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "| %s | %d | %s | %d%% |\n", escapeMD(g.Category), g.Count, Currency(symbol, g.Amount), g.Progress)
		}
	}

	var overdue []items.WorkItem
	for _, it := range list {
		if items.Overdue(it, today) {
			overdue = append(overdue, it)
		}
	}
	b.WriteString("\n## Overdue\n\n")
	if len(overdue) == 0 {
		b.WriteString("Nothing overdue.\n")
	}
	for _, it := range overdue {
		fmt.Fprintf(&b, "- %s (%s), ended %s, %d%% done\n",
			escapeMD(it.Name), escapeMD(it.Category), items.FormatDate(it.EndDate), it.Progress)
	}

	return b.String()
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`)

func escapeMD(s string) string { return mdEscaper.Replace(s) }
