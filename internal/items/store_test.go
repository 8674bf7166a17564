package items

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedToday = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func date(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := ParseDate(v)
	require.NoError(t, err)
	return d
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore() *Store {
	return NewStore(
		WithClock(func() time.Time { return fixedToday }),
		WithIDGenerator(sequentialIDs()),
	)
}

func ids(items []WorkItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func assertCanonical(t *testing.T, items []WorkItem) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if cur.Completed() && !prev.Completed() {
			t.Fatalf("completed item %s sorted after non-completed %s", cur.ID, prev.ID)
		}
		if cur.Completed() == prev.Completed() && cur.StartDate.Before(prev.StartDate) {
			t.Fatalf("item %s (%s) sorted after later item %s (%s)",
				cur.ID, FormatDate(cur.StartDate), prev.ID, FormatDate(prev.StartDate))
		}
	}
}

func TestAddDefaults(t *testing.T) {
	s := newTestStore()

	item := s.Add("")

	assert.Equal(t, "id-1", item.ID)
	assert.Equal(t, "Misc", item.Category)
	assert.Equal(t, "New work item", item.Name)
	assert.Equal(t, StatusNotStarted, item.Status)
	assert.Equal(t, Day(fixedToday), item.StartDate)
	assert.Equal(t, Day(fixedToday), item.EndDate)
	assert.Equal(t, 1, item.Days)
	assert.Equal(t, 0, item.Progress)
	assert.Equal(t, int64(0), item.Amount)
	assert.Equal(t, PaymentUnpaid, item.Payment)
	assert.Equal(t, "Site manager", item.Owner)
	assert.Empty(t, item.Remark)
	assert.True(t, s.CanUndo())
}

func TestAddWithCategoryAndCustomDefaults(t *testing.T) {
	s := NewStore(
		WithClock(func() time.Time { return fixedToday }),
		WithDefaults(Defaults{Category: "General", Owner: "J. Huang"}),
	)

	got := s.Add("Electrical")
	assert.Equal(t, "Electrical", got.Category)
	assert.Equal(t, "J. Huang", got.Owner)
	assert.Equal(t, "New work item", got.Name, "blank default falls back to built-in")

	got = s.Add("")
	assert.Equal(t, "General", got.Category)
}

func TestSetDefaultsAffectsLaterAdds(t *testing.T) {
	s := newTestStore()
	first := s.Add("")

	s.SetDefaults(Defaults{Owner: "L. Chen"})
	second := s.Add("")

	assert.Equal(t, "Site manager", first.Owner)
	assert.Equal(t, "L. Chen", second.Owner)
	assert.Equal(t, "Misc", second.Category)
	assert.Equal(t, 2, s.Depth(), "changing defaults is not a mutation")
}

func TestAddSortsByToday(t *testing.T) {
	s := newTestStore()
	s.Load([]WorkItem{
		{ID: "done", Status: StatusCompleted, StartDate: date(t, "2024-06-01")},
		{ID: "early", Status: StatusInProgress, StartDate: date(t, "2024-01-01")},
		{ID: "late", Status: StatusNotStarted, StartDate: date(t, "2024-12-01")},
	})

	added := s.Add("Electrical")

	assert.Equal(t, []string{"done", "early", added.ID, "late"}, ids(s.Items()))
	assertCanonical(t, s.Items())
}

func TestLoadSortsWithoutHistory(t *testing.T) {
	s := newTestStore()
	s.Add("")
	s.Load([]WorkItem{
		{ID: "b", StartDate: date(t, "2024-02-01")},
		{ID: "a", StartDate: date(t, "2024-01-01")},
		{ID: "c", Status: StatusCompleted, StartDate: date(t, "2024-03-01")},
	})

	assert.Equal(t, []string{"c", "a", "b"}, ids(s.Items()))
	assert.False(t, s.CanUndo())
}

func TestCanonicalOrderingIsStable(t *testing.T) {
	s := newTestStore()
	day := date(t, "2024-05-01")
	s.Load([]WorkItem{
		{ID: "x1", StartDate: day},
		{ID: "c1", Status: StatusCompleted, StartDate: day},
		{ID: "x2", StartDate: day},
		{ID: "c2", Status: StatusCompleted, StartDate: day},
		{ID: "x3", StartDate: day},
	})

	assert.Equal(t, []string{"c1", "c2", "x1", "x2", "x3"}, ids(s.Items()))
}

func TestUpdateDuration(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"forward range", "2024-01-01", "2024-01-10", 10},
		{"reversed range", "2024-01-10", "2024-01-01", 10},
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"across leap day", "2024-02-28", "2024-03-01", 3},
		{"across year", "2023-12-31", "2024-01-01", 2},
		{"longer than a duration can hold", "1700-01-01", "2024-01-01", 118339},
		{"mistyped century, reversed", "2024-01-01", "0224-01-01", 657438},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			item := s.Add("")
			item.StartDate = date(t, tt.start)
			item.EndDate = date(t, tt.end)
			item.Days = 999

			got, err := s.Update(item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Days)

			stored, ok := s.Get(item.ID)
			require.True(t, ok)
			assert.Equal(t, tt.want, stored.Days)
		})
	}
}

func TestUpdateTruncatesTimeOfDay(t *testing.T) {
	s := newTestStore()
	item := s.Add("")
	item.StartDate = time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	item.EndDate = time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)

	got, err := s.Update(item)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Days)
	assert.Equal(t, date(t, "2024-01-01"), got.StartDate)
}

func TestUpdateResorts(t *testing.T) {
	s := newTestStore()
	s.Load([]WorkItem{
		{ID: "a", StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-02")},
		{ID: "b", StartDate: date(t, "2024-02-01"), EndDate: date(t, "2024-02-02")},
	})

	b, _ := s.Get("b")
	b.Status = StatusCompleted
	_, err := s.Update(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(s.Items()))

	a, _ := s.Get("a")
	a.StartDate = date(t, "2025-01-01")
	_, err = s.Update(a)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(s.Items()))
	assertCanonical(t, s.Items())
}

func TestUpdateUnknownIDLeavesStateAlone(t *testing.T) {
	s := newTestStore()
	s.Add("")
	before := s.Items()
	depth := s.Depth()

	_, err := s.Update(WorkItem{ID: "missing"})

	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, s.Items())
	assert.Equal(t, depth, s.Depth())
}

func TestRemove(t *testing.T) {
	s := newTestStore()
	s.Load([]WorkItem{
		{ID: "a", StartDate: date(t, "2024-01-01")},
		{ID: "b", StartDate: date(t, "2024-02-01")},
		{ID: "c", StartDate: date(t, "2024-03-01")},
	})

	require.NoError(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, ids(s.Items()))
	assert.Equal(t, 1, s.Depth())

	_, ok := s.Get("b")
	assert.False(t, ok)
}

func TestRemoveUnknownID(t *testing.T) {
	s := newTestStore()
	s.Add("")

	err := s.Remove("missing")

	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Depth(), "no history entry for a no-op removal")
}

func TestUndoEmptyIsNoop(t *testing.T) {
	s := newTestStore()
	s.Load([]WorkItem{{ID: "a"}})

	assert.False(t, s.Undo())
	assert.Equal(t, []string{"a"}, ids(s.Items()))
}

func TestUndoRestoresEachStep(t *testing.T) {
	s := newTestStore()
	s.Load([]WorkItem{{ID: "seed", StartDate: date(t, "2024-01-01"), EndDate: date(t, "2024-01-01")}})
	pristine := s.Items()

	a := s.Add("A")
	afterAdd := s.Items()

	a.Name = "renamed"
	_, err := s.Update(a)
	require.NoError(t, err)
	afterUpdate := s.Items()

	require.NoError(t, s.Remove("seed"))

	require.True(t, s.Undo())
	assert.Equal(t, afterUpdate, s.Items())
	require.True(t, s.Undo())
	assert.Equal(t, afterAdd, s.Items())
	require.True(t, s.Undo())
	assert.Equal(t, pristine, s.Items())

	assert.False(t, s.Undo())
	assert.Equal(t, pristine, s.Items())
}

func TestUndoBoundedHistory(t *testing.T) {
	s := newTestStore()
	var afterFirst []WorkItem
	for i := 0; i < HistoryDepth+1; i++ {
		s.Add(fmt.Sprintf("cat-%d", i))
		if i == 0 {
			afterFirst = s.Items()
		}
	}
	require.Equal(t, HistoryDepth, s.Depth())

	undone := 0
	for i := 0; i < HistoryDepth+1; i++ {
		if s.Undo() {
			undone++
		}
	}

	assert.Equal(t, HistoryDepth, undone)
	assert.Equal(t, afterFirst, s.Items(), "oldest snapshot was evicted")
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore()
	item := s.Add("")
	out := s.Items()
	out[0].Name = "mutated by caller"

	stored, _ := s.Get(item.ID)
	assert.Equal(t, "New work item", stored.Name)

	item.Name = "v2"
	_, err := s.Update(item)
	require.NoError(t, err)
	require.True(t, s.Undo())
	stored, _ = s.Get(item.ID)
	assert.Equal(t, "New work item", stored.Name)
}

func TestRandomMutationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s := NewStore(WithClock(func() time.Time { return fixedToday }))
	base := date(t, "2024-01-01")

	for step := 0; step < 500; step++ {
		current := s.Items()
		switch op := rng.IntN(10); {
		case op < 4 || len(current) == 0:
			s.Add(FixedCategories[rng.IntN(len(FixedCategories))])
		case op < 8:
			it := current[rng.IntN(len(current))]
			it.Status = Statuses[rng.IntN(len(Statuses))]
			it.StartDate = base.AddDate(0, 0, rng.IntN(365))
			it.EndDate = base.AddDate(0, 0, rng.IntN(365))
			got, err := s.Update(it)
			require.NoError(t, err)
			require.GreaterOrEqual(t, got.Days, 1)
		case op < 9:
			require.NoError(t, s.Remove(current[rng.IntN(len(current))].ID))
		default:
			s.Undo()
		}

		items := s.Items()
		assertCanonical(t, items)
		seen := make(map[string]bool, len(items))
		for _, it := range items {
			require.False(t, seen[it.ID], "duplicate id %s", it.ID)
			seen[it.ID] = true
		}
	}
}

func TestStatusNext(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusNotStarted.Next())
	assert.Equal(t, StatusNotStarted, StatusPaused.Next())
	assert.Equal(t, StatusNotStarted, Status("bogus").Next())
}

func TestParseStatusAndPayment(t *testing.T) {
	st, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, st)

	_, err = ParseStatus("done")
	assert.Error(t, err)

	p, err := ParsePayment("paid")
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, p)

	_, err = ParsePayment("maybe")
	assert.Error(t, err)
}
