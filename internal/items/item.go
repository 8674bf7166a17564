// Package items holds the work-item schedule: the item model, its canonical
// ordering, and the in-memory store with bounded undo history.
package items

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used for parsing, display and storage.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted, StatusPaused}

func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusPaused:
		return "Paused"
	default:
		return "Not started"
	}
}

// Next cycles through Statuses; used by the grid's quick status toggle.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNotStarted
}

func ParseStatus(v string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", v)
}

type Payment string

const (
	PaymentUnpaid Payment = "unpaid"
	PaymentPaid   Payment = "paid"
)

func (p Payment) Label() string {
	if p == PaymentPaid {
		return "Paid"
	}
	return "Unpaid"
}

func ParsePayment(v string) (Payment, error) {
	switch Payment(v) {
	case PaymentPaid, PaymentUnpaid:
		return Payment(v), nil
	}
	return "", fmt.Errorf("unknown payment status %q", v)
}

// WorkItem is one row of the schedule/budget table.
type WorkItem struct {
	ID        string
	Category  string
	Name      string
	Status    Status
	StartDate time.Time
	EndDate   time.Time
	Days      int // derived from StartDate/EndDate on update
	Progress  int // percent, 0-100
	Amount    int64
	Payment   Payment
	Owner     string
	Remark    string
}

func (w WorkItem) Completed() bool { return w.Status == StatusCompleted }

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(v string) (time.Time, error) {
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", v, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// InclusiveDays returns the number of calendar days from start to end,
// counting both ends. The order of the arguments does not matter and the
// result is never below 1.
func InclusiveDays(start, end time.Time) int {
	gap := DayNumber(end) - DayNumber(start)
	if gap < 0 {
		gap = -gap
	}
	return int(gap) + 1
}

// DayNumber returns the calendar day of t counted from the Unix epoch. It
// avoids time.Duration, which cannot span more than about 292 years.
func DayNumber(t time.Time) int64 {
	return Day(t).Unix() / 86400
}
