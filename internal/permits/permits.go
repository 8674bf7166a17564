// Package permits tracks site-entry permits for personnel and vehicles.
package permits

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("permit not found")

type Review string

const (
	ReviewPending  Review = "pending"
	ReviewApproved Review = "approved"
	ReviewRejected Review = "rejected"
)

var Reviews = []Review{ReviewPending, ReviewApproved, ReviewRejected}

func (r Review) Label() string {
	switch r {
	case ReviewApproved:
		return "Approved"
	case ReviewRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

func (r Review) Next() Review {
	for i, v := range Reviews {
		if v == r {
			return Reviews[(i+1)%len(Reviews)]
		}
	}
	return ReviewPending
}

type Personnel struct {
	ID              string
	Company         string
	Name            string
	Role            string
	LaborInsurance  bool
	IDCard          bool
	PhysicalExam    bool
	SafetyTraining  bool
	SpecialLicense  bool
	ApplicationDate time.Time
	EntryDate       time.Time // zero until admitted
	Status          Review
	Note            string
}

func (p Personnel) EntryID() string { return p.ID }

// DocumentsComplete reports whether the mandatory documents are on file.
// A special licence is only needed for some roles and is not required here.
func (p Personnel) DocumentsComplete() bool {
	return p.LaborInsurance && p.IDCard && p.PhysicalExam && p.SafetyTraining
}

type Vehicle struct {
	ID              string
	Company         string
	PlateNumber     string
	Type            string
	Driver          string
	Registration    bool
	License         bool
	Insurance       bool
	Photo           bool
	ApplicationDate time.Time
	EntryDate       time.Time
	AccessArea      string
	Status          Review
}

func (v Vehicle) EntryID() string { return v.ID }

func (v Vehicle) DocumentsComplete() bool {
	return v.Registration && v.License && v.Insurance && v.Photo
}

// Entry is implemented by Personnel and Vehicle.
type Entry interface {
	Personnel | Vehicle
	EntryID() string
}

// Register is an insertion-ordered list of permit entries.
type Register[T Entry] struct {
	entries []T
	create  func(id string, today time.Time) T
	status  func(T) Review
	now     func() time.Time
	newID   func() string
}

func NewPersonnelRegister() *Register[Personnel] {
	return &Register[Personnel]{
		create: func(id string, today time.Time) Personnel {
			return Personnel{ID: id, ApplicationDate: today, Status: ReviewPending}
		},
		status: func(p Personnel) Review { return p.Status },
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func NewVehicleRegister() *Register[Vehicle] {
	return &Register[Vehicle]{
		create: func(id string, today time.Time) Vehicle {
			return Vehicle{ID: id, ApplicationDate: today, Status: ReviewPending}
		},
		status: func(v Vehicle) Review { return v.Status },
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// SetClock overrides the source of today's date for new entries.
func (r *Register[T]) SetClock(now func() time.Time) { r.now = now }

func (r *Register[T]) Load(entries []T) { r.entries = slices.Clone(entries) }

func (r *Register[T]) All() []T { return slices.Clone(r.entries) }

func (r *Register[T]) Len() int { return len(r.entries) }

// Add appends a blank pending entry dated today.
func (r *Register[T]) Add() T {
	y, m, d := r.now().Date()
	e := r.create(r.newID(), time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	r.entries = append(r.entries, e)
	return e
}

func (r *Register[T]) Update(e T) error {
	i := r.indexOf(e.EntryID())
	if i < 0 {
		return ErrNotFound
	}
	r.entries[i] = e
	return nil
}

func (r *Register[T]) Remove(id string) error {
	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return nil
}

func (r *Register[T]) CountByStatus() map[Review]int {
	out := make(map[Review]int, len(Reviews))
	for _, e := range r.entries {
		out[r.status(e)]++
	}
	return out
}

func (r *Register[T]) indexOf(id string) int {
	return slices.IndexFunc(r.entries, func(e T) bool { return e.EntryID() == id })
}
