package permits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonnelRegister(t *testing.T) {
	r := NewPersonnelRegister()
	r.SetClock(func() time.Time { return time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC) })

	p := r.Add()
	require.NotEmpty(t, p.ID)
	assert.Equal(t, ReviewPending, p.Status)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), p.ApplicationDate)
	assert.True(t, p.EntryDate.IsZero())

	p.Name = "Wang Hsiao-ming"
	p.Status = ReviewApproved
	require.NoError(t, r.Update(p))

	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Wang Hsiao-ming", all[0].Name)

	assert.ErrorIs(t, r.Update(Personnel{ID: "nope"}), ErrNotFound)
	assert.ErrorIs(t, r.Remove("nope"), ErrNotFound)

	require.NoError(t, r.Remove(p.ID))
	assert.Equal(t, 0, r.Len())
}

func TestRegisterKeepsInsertionOrder(t *testing.T) {
	r := NewVehicleRegister()
	a := r.Add()
	b := r.Add()
	c := r.Add()
	require.NoError(t, r.Remove(b.ID))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
}

func TestCountByStatus(t *testing.T) {
	r := NewVehicleRegister()
	r.Load([]Vehicle{
		{ID: "1", Status: ReviewApproved},
		{ID: "2", Status: ReviewPending},
		{ID: "3", Status: ReviewApproved},
	})

	got := r.CountByStatus()
	assert.Equal(t, 2, got[ReviewApproved])
	assert.Equal(t, 1, got[ReviewPending])
	assert.Equal(t, 0, got[ReviewRejected])
}

func TestDocumentsComplete(t *testing.T) {
	p := Personnel{LaborInsurance: true, IDCard: true, PhysicalExam: true, SafetyTraining: true}
	assert.True(t, p.DocumentsComplete(), "special licence is optional")
	p.PhysicalExam = false
	assert.False(t, p.DocumentsComplete())

	v := Vehicle{Registration: true, License: true, Insurance: true}
	assert.False(t, v.DocumentsComplete())
	v.Photo = true
	assert.True(t, v.DocumentsComplete())
}

func TestReviewNext(t *testing.T) {
	assert.Equal(t, ReviewApproved, ReviewPending.Next())
	assert.Equal(t, ReviewRejected, ReviewApproved.Next())
	assert.Equal(t, ReviewPending, ReviewRejected.Next())
	assert.Equal(t, "Approved", ReviewApproved.Label())
}
