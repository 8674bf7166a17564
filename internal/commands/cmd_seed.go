package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
	"github.com/sadopc/sitetrackr/internal/store"
)

// ErrNotEmpty is returned by seed when the save file already has data.
var ErrNotEmpty = errors.New("save file is not empty")

type SeedCmd struct {
	flags *Flags
}

func NewSeedCmd(flags *Flags) *SeedCmd {
	return &SeedCmd{flags: flags}
}

func (cmd *SeedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "seed",
		Usage:       "Load a demo project into an empty save file",
		UsageText:   "sitetrackr seed",
		Description: "Fills an empty save file with a demo schedule, project header and permit applications. Refuses to touch a file that already holds data.",
		Action:      cmd.run,
	})
	return app
}

func (cmd *SeedCmd) run(_ context.Context, c *cli.Command) error {
	s, err := cmd.flags.OpenStore()
	if err != nil {
		return err
	}
	if err := Seed(s, time.Now()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(c.Root().Writer, "demo project loaded into", cmd.flags.Config.DBPath())
	return nil
}

// Seed writes the demo project, dated around today, into s.
func Seed(s *store.Store, now time.Time) error {
	n, err := s.CountItems()
	if err != nil {
		return fmt.Errorf("count work items: %w", err)
	}
	people, err := s.ListPersonnel()
	if err != nil {
		return fmt.Errorf("list personnel: %w", err)
	}
	vehicles, err := s.ListVehicles()
	if err != nil {
		return fmt.Errorf("list vehicles: %w", err)
	}
	if n > 0 || len(people) > 0 || len(vehicles) > 0 {
		return ErrNotEmpty
	}

	today := items.Day(now)
	info, list, people, vehicles := demoProject(today)

	if err := s.SaveProjectInfo(info); err != nil {
		return fmt.Errorf("save project info: %w", err)
	}
	if err := s.SaveItems(list); err != nil {
		return fmt.Errorf("save work items: %w", err)
	}
	if err := s.SavePersonnel(people); err != nil {
		return fmt.Errorf("save personnel: %w", err)
	}
	if err := s.SaveVehicles(vehicles); err != nil {
		return fmt.Errorf("save vehicles: %w", err)
	}

	log.Info().Int("items", len(list)).Int("personnel", len(people)).Int("vehicles", len(vehicles)).Msg("seeded demo project")
	return nil
}

func demoProject(today time.Time) (store.ProjectInfo, []items.WorkItem, []permits.Personnel, []permits.Vehicle) {
	d := func(days int) time.Time { return today.AddDate(0, 0, days) }

	info := store.ProjectInfo{
		Name:           "Riverside Residential Block B",
		StartDate:      d(-120),
		EndDate:        d(480),
		UpdatedDate:    today,
		SiteManager:    "M. Chen",
		SafetyOfficer:  "A. Lin",
		QualityControl: "K. Wu",
	}

	type row struct {
		category, name string
		status         items.Status
		start, end     int
		progress       int
		amount         int64
		paid           bool
		owner, remark  string
	}
	rows := []row{
		{"Temporary works", "Site hoarding and gates", items.StatusCompleted, -120, -105, 100, 350000, true, "M. Chen", ""},
		{"Temporary works", "Site office and welfare", items.StatusCompleted, -118, -100, 100, 480000, true, "M. Chen", ""},
		{"Foundations", "Diaphragm wall guide trench", items.StatusCompleted, -100, -80, 100, 2200000, true, "Acme Piling", ""},
		{"Foundations", "Diaphragm wall excavation", items.StatusInProgress, -80, -10, 85, 8500000, false, "Acme Piling", "two panels remaining"},
		{"Earthworks", "Bulk excavation to B2", items.StatusInProgress, -20, 25, 30, 5600000, false, "Delta Earthworks", ""},
		{"Earthworks", "Strutting level 1", items.StatusNotStarted, 10, 30, 0, 1900000, false, "Delta Earthworks", ""},
		{"Structure", "Raft slab pour", items.StatusNotStarted, 40, 70, 0, 6400000, false, "North Concrete", "pour plan pending"},
		{"MEP", "Temporary power supply", items.StatusPaused, -30, -5, 60, 420000, false, "Bright Electric", "awaiting utility meter"},
		{"Safety", "Monthly safety audit", items.StatusInProgress, -5, 25, 20, 60000, false, "A. Lin", ""},
	}

	list := make([]items.WorkItem, 0, len(rows))
	for _, r := range rows {
		payment := items.PaymentUnpaid
		if r.paid {
			payment = items.PaymentPaid
		}
		list = append(list, items.WorkItem{
			ID:        uuid.NewString(),
			Category:  r.category,
			Name:      r.name,
			Status:    r.status,
			StartDate: d(r.start),
			EndDate:   d(r.end),
			Days:      items.InclusiveDays(d(r.start), d(r.end)),
			Progress:  r.progress,
			Amount:    r.amount,
			Payment:   payment,
			Owner:     r.owner,
			Remark:    r.remark,
		})
	}

	// Load sorts into the canonical order the dashboard expects.
	sorted := items.NewStore()
	sorted.Load(list)
	list = sorted.Items()

	people := []permits.Personnel{
		{
			ID: uuid.NewString(), Company: "Acme Piling", Name: "David Lee", Role: "Crane operator",
			LaborInsurance: true, IDCard: true, PhysicalExam: true, SafetyTraining: true, SpecialLicense: true,
			ApplicationDate: d(-90), EntryDate: d(-85), Status: permits.ReviewApproved,
		},
		{
			ID: uuid.NewString(), Company: "Delta Earthworks", Name: "Sam Huang", Role: "Excavator operator",
			LaborInsurance: true, IDCard: true, SafetyTraining: true,
			ApplicationDate: d(-3), Status: permits.ReviewPending, Note: "physical exam booked",
		},
		{
			ID: uuid.NewString(), Company: "Bright Electric", Name: "Tom Yang", Role: "Electrician",
			IDCard: true,
			ApplicationDate: d(-12), Status: permits.ReviewRejected, Note: "insurance lapsed",
		},
	}

	vehicles := []permits.Vehicle{
		{
			ID: uuid.NewString(), Company: "Delta Earthworks", PlateNumber: "KLA-3021", Type: "Dump truck", Driver: "R. Kuo",
			Registration: true, License: true, Insurance: true, Photo: true,
			ApplicationDate: d(-25), EntryDate: d(-20), AccessArea: "Gate A", Status: permits.ReviewApproved,
		},
		{
			ID: uuid.NewString(), Company: "North Concrete", PlateNumber: "MCT-7788", Type: "Concrete mixer", Driver: "J. Tsai",
			Registration: true, License: true,
			ApplicationDate: d(-2), AccessArea: "Gate B", Status: permits.ReviewPending,
		},
	}

	return info, list, people, vehicles
}
