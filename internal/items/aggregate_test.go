package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRing(t *testing.T) {
	h := newHistory(3)
	_, ok := h.pop()
	require.False(t, ok)

	for i := 1; i <= 5; i++ {
		h.push([]WorkItem{{ID: string(rune('0' + i))}})
	}
	require.Equal(t, 3, h.len())

	var got []string
	for {
		snap, ok := h.pop()
		if !ok {
			break
		}
		got = append(got, snap[0].ID)
	}
	assert.Equal(t, []string{"5", "4", "3"}, got)

	h.push([]WorkItem{{ID: "x"}})
	h.clear()
	assert.Equal(t, 0, h.len())
}

func TestCategories(t *testing.T) {
	got := Categories([]WorkItem{
		{Category: "Structure"},
		{Category: "Electrical"},
		{Category: ""},
		{Category: "Electrical"},
		{Category: "Drainage"},
	})

	require.Equal(t, len(FixedCategories)+3, len(got))
	assert.Equal(t, CategoryAll, got[0])
	assert.Equal(t, FixedCategories, got[1:len(FixedCategories)+1])
	assert.Equal(t, []string{"Electrical", "Drainage"}, got[len(FixedCategories)+1:])
}

func TestFilter(t *testing.T) {
	all := []WorkItem{
		{ID: "1", Category: "MEP"},
		{ID: "2", Category: "Facade"},
		{ID: "3", Category: "MEP"},
	}

	assert.Equal(t, all, Filter(all, ""))
	assert.Equal(t, all, Filter(all, CategoryAll))
	assert.Equal(t, []string{"1", "3"}, ids(Filter(all, "MEP")))
	assert.Empty(t, Filter(all, "Handover"))
}

func TestSummarize(t *testing.T) {
	got := Summarize([]WorkItem{
		{Amount: 250000, Payment: PaymentPaid},
		{Amount: 180000, Payment: PaymentPaid},
		{Amount: 8500000, Payment: PaymentUnpaid},
		{Amount: 0, Payment: PaymentUnpaid},
	})

	assert.Equal(t, Totals{Count: 4, Total: 8930000, Paid: 430000, Unpaid: 8500000}, got)
	assert.Equal(t, Totals{}, Summarize(nil))
}

func TestByCategory(t *testing.T) {
	got := ByCategory([]WorkItem{
		{Category: "MEP", Amount: 100, Progress: 50},
		{Category: "Facade", Amount: 10, Progress: 0},
		{Category: "MEP", Amount: 300, Progress: 100},
	})

	assert.Equal(t, []CategoryTotal{
		{Category: "MEP", Count: 2, Amount: 400, Progress: 75},
		{Category: "Facade", Count: 1, Amount: 10, Progress: 0},
	}, got)
}

func TestOverdue(t *testing.T) {
	today := date(t, "2024-03-15")

	assert.True(t, Overdue(WorkItem{EndDate: date(t, "2024-03-14")}, today))
	assert.False(t, Overdue(WorkItem{EndDate: date(t, "2024-03-15")}, today))
	assert.False(t, Overdue(WorkItem{EndDate: date(t, "2024-03-14"), Status: StatusCompleted}, today))
}

func TestInclusiveDaysClamp(t *testing.T) {
	d := date(t, "2024-01-01")
	assert.Equal(t, 1, InclusiveDays(d, d))
	assert.Equal(t, 366, InclusiveDays(d, date(t, "2024-12-31")))
	assert.Equal(t, 366, InclusiveDays(date(t, "2024-12-31"), d))
}
