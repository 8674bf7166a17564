package items

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no item carries the requested ID.
var ErrNotFound = errors.New("work item not found")

// Defaults are the placeholder values given to items created by Add.
type Defaults struct {
	Category string
	Name     string
	Owner    string
}

// DefaultDefaults returns the built-in placeholders.
func DefaultDefaults() Defaults {
	return Defaults{
		Category: "Misc",
		Name:     "New work item",
		Owner:    "Site manager",
	}
}

// Store is the single authority over the ordered work-item collection and
// its undo history. It is not safe for concurrent use; the UI event loop is
// its only writer.
type Store struct {
	items    []WorkItem
	history  *history
	defaults Defaults

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithDefaults(d Defaults) Option {
	return func(s *Store) { s.SetDefaults(d) }
}

// WithClock overrides the source of "today" for new items.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides UUID generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		history:  newHistory(HistoryDepth),
		defaults: DefaultDefaults(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection without recording history, then applies the
// canonical ordering. Any existing history is discarded.
func (s *Store) Load(items []WorkItem) {
	s.items = slices.Clone(items)
	s.history.clear()
	sortItems(s.items)
}

// Items returns a copy of the current ordered collection.
func (s *Store) Items() []WorkItem {
	return slices.Clone(s.items)
}

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Get(id string) (WorkItem, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return WorkItem{}, false
	}
	return s.items[i], true
}

func (s *Store) Defaults() Defaults { return s.defaults }

// SetDefaults changes the placeholders used by later calls to Add. Blank
// fields fall back to the built-in values.
func (s *Store) SetDefaults(d Defaults) {
	base := DefaultDefaults()
	if d.Category == "" {
		d.Category = base.Category
	}
	if d.Name == "" {
		d.Name = base.Name
	}
	if d.Owner == "" {
		d.Owner = base.Owner
	}
	s.defaults = d
}

func (s *Store) CanUndo() bool { return s.history.len() > 0 }

// Depth reports how many undo steps are available.
func (s *Store) Depth() int { return s.history.len() }

// Add creates an item with placeholder values and inserts it in canonical
// position. An empty category falls back to the default category.
func (s *Store) Add(category string) WorkItem {
	if category == "" {
		category = s.defaults.Category
	}
	today := Day(s.now())
	item := WorkItem{
		ID:        s.newID(),
		Category:  category,
		Name:      s.defaults.Name,
		Status:    StatusNotStarted,
		StartDate: today,
		EndDate:   today,
		Days:      1,
		Progress:  0,
		Amount:    0,
		Payment:   PaymentUnpaid,
		Owner:     s.defaults.Owner,
	}

	s.snapshot()
	s.items = append(s.items, item)
	sortItems(s.items)
	return item
}

// Update replaces the stored item with the same ID, recomputing Days from the
// supplied dates. It returns the stored value.
func (s *Store) Update(item WorkItem) (WorkItem, error) {
	i := s.indexOf(item.ID)
	if i < 0 {
		return WorkItem{}, ErrNotFound
	}
	item.StartDate = Day(item.StartDate)
	item.EndDate = Day(item.EndDate)
	item.Days = InclusiveDays(item.StartDate, item.EndDate)

	s.snapshot()
	s.items[i] = item
	sortItems(s.items)
	return item, nil
}

// Remove deletes the item with the given ID. Callers are expected to have
// confirmed the deletion with the user.
func (s *Store) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.snapshot()
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Undo restores the collection captured before the most recent mutation.
// It reports false when there is nothing to undo.
func (s *Store) Undo() bool {
	prev, ok := s.history.pop()
	if !ok {
		return false
	}
	s.items = prev
	return true
}

// snapshot must run before the mutation it guards.
func (s *Store) snapshot() {
	s.history.push(slices.Clone(s.items))
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(w WorkItem) bool { return w.ID == id })
}

// Less reports whether a sorts before b in the canonical ordering:
// completed items first, then ascending start date.
func Less(a, b WorkItem) bool {
	return compareItems(a, b) < 0
}

func compareItems(a, b WorkItem) int {
	switch {
	case a.Completed() && !b.Completed():
		return -1
	case !a.Completed() && b.Completed():
		return 1
	}
	return a.StartDate.Compare(b.StartDate)
}

func sortItems(items []WorkItem) {
	slices.SortStableFunc(items, compareItems)
}
