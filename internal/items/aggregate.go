package items

import "time"

// CategoryAll is the filter value that selects every item.
const CategoryAll = "All"

// FixedCategories are always offered as filters, even when empty.
var FixedCategories = []string{
	"Temporary works",
	"Foundations",
	"Earthworks",
	"Structure",
	"Fit-out",
	"MEP",
	"Landscaping",
	"Labour",
	"Equipment",
	"Safety",
	"Facade",
	"Handover",
}

// Categories returns CategoryAll, then FixedCategories, then any other
// category present in items in first-seen order.
func Categories(items []WorkItem) []string {
	seen := make(map[string]bool, len(FixedCategories)+1)
	out := make([]string, 0, len(FixedCategories)+1)
	add := func(c string) {
		if c == "" || seen[c] {
			return
		}
		seen[c] = true
		out = append(out, c)
	}
	add(CategoryAll)
	for _, c := range FixedCategories {
		add(c)
	}
	for _, it := range items {
		add(it.Category)
	}
	return out
}

// Filter returns the items in category, preserving order. An empty category
// or CategoryAll returns items unchanged.
func Filter(items []WorkItem, category string) []WorkItem {
	if category == "" || category == CategoryAll {
		return items
	}
	var out []WorkItem
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

type Totals struct {
	Count  int
	Total  int64
	Paid   int64
	Unpaid int64
}

func Summarize(items []WorkItem) Totals {
	var t Totals
	for _, it := range items {
		t.Count++
		t.Total += it.Amount
		if it.Payment == PaymentPaid {
			t.Paid += it.Amount
		} else {
			t.Unpaid += it.Amount
		}
	}
	return t
}

// CategoryTotal is the amount and mean progress of one category.
type CategoryTotal struct {
	Category string
	Count    int
	Amount   int64
	Progress int
}

// ByCategory groups items by category in first-seen order.
func ByCategory(items []WorkItem) []CategoryTotal {
	idx := make(map[string]int)
	var out []CategoryTotal
	var progress []int
	for _, it := range items {
		i, ok := idx[it.Category]
		if !ok {
			i = len(out)
			idx[it.Category] = i
			out = append(out, CategoryTotal{Category: it.Category})
			progress = append(progress, 0)
		}
		out[i].Count++
		out[i].Amount += it.Amount
		progress[i] += it.Progress
	}
	for i := range out {
		out[i].Progress = progress[i] / out[i].Count
	}
	return out
}

// Overdue reports whether item ended before today without being completed.
func Overdue(item WorkItem, today time.Time) bool {
	if item.Completed() {
		return false
	}
	return Day(item.EndDate).Before(Day(today))
}
