package store

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(v string) time.Time {
	t, err := items.ParseDate(v)
	if err != nil {
		panic(err)
	}
	return t
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/sitetrackr.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveItems([]items.WorkItem{{ID: "a", StartDate: day("2024-01-01"), EndDate: day("2024-01-01")}}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen: data survives and migration does not run twice.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	n, err := s2.CountItems()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 item after reopen, got %d", n)
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Work items
// ============================================================

func TestSaveAndListItems(t *testing.T) {
	s := newTestStore(t)
	in := []items.WorkItem{
		{
			ID: "1", Category: "Temporary works", Name: "Site hoarding and gate",
			Status: items.StatusCompleted, StartDate: day("2024-03-01"), EndDate: day("2024-03-15"),
			Days: 15, Progress: 100, Amount: 250000, Payment: items.PaymentPaid, Owner: "J. Huang",
		},
		{
			ID: "2", Category: "Foundations", Name: "Diaphragm wall guide trench",
			Status: items.StatusInProgress, StartDate: day("2024-04-01"), EndDate: day("2024-04-25"),
			Days: 25, Progress: 65, Amount: 2200000, Payment: items.PaymentUnpaid, Owner: "J. Huang",
			Remark: "waiting on rebar",
		},
	}

	if err := s.SaveItems(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.ListItems()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("item %d round trip mismatch:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}
}

func TestSaveItemsPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	in := []items.WorkItem{
		{ID: "z", StartDate: day("2024-01-03"), EndDate: day("2024-01-03")},
		{ID: "a", StartDate: day("2024-01-01"), EndDate: day("2024-01-01")},
		{ID: "m", StartDate: day("2024-01-02"), EndDate: day("2024-01-02")},
	}
	s.SaveItems(in)

	out, _ := s.ListItems()
	if out[0].ID != "z" || out[1].ID != "a" || out[2].ID != "m" {
		t.Fatalf("order not preserved: %s %s %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestSaveItemsReplaces(t *testing.T) {
	s := newTestStore(t)
	s.SaveItems([]items.WorkItem{{ID: "a"}, {ID: "b"}})
	s.SaveItems([]items.WorkItem{{ID: "c"}})

	out, _ := s.ListItems()
	if len(out) != 1 || out[0].ID != "c" {
		t.Fatalf("expected only c, got %+v", out)
	}
}

func TestSaveItemsDuplicateIDRollsBack(t *testing.T) {
	s := newTestStore(t)
	s.SaveItems([]items.WorkItem{{ID: "keep"}})

	err := s.SaveItems([]items.WorkItem{{ID: "dup"}, {ID: "dup"}})
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
	out, _ := s.ListItems()
	if len(out) != 1 || out[0].ID != "keep" {
		t.Fatalf("failed save should leave previous rows, got %+v", out)
	}
}

func TestListItemsEmpty(t *testing.T) {
	s := newTestStore(t)
	out, err := s.ListItems()
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Fatalf("expected nil slice, got %d items", len(out))
	}
}

func TestListItemsMalformedDate(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveItems([]items.WorkItem{{ID: "a", StartDate: day("2024-01-01"), EndDate: day("2024-01-02")}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`UPDATE work_items SET start_date = '2024-13-45' WHERE id = 'a'`); err != nil {
		t.Fatal(err)
	}
	_, err := s.ListItems()
	if err == nil {
		t.Fatal("expected error for malformed start date")
	}
	if !strings.Contains(err.Error(), "start_date") {
		t.Fatalf("error should name the column, got %v", err)
	}
}

// ============================================================
// Project info
// ============================================================

func TestProjectInfoDefaults(t *testing.T) {
	s := newTestStore(t)
	p, err := s.GetProjectInfo()
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "" || !p.StartDate.IsZero() {
		t.Fatalf("expected empty project info, got %+v", p)
	}
	if p.Duration() != 0 {
		t.Fatalf("duration of unset project should be 0, got %d", p.Duration())
	}
}

func TestSaveProjectInfo(t *testing.T) {
	s := newTestStore(t)
	want := ProjectInfo{
		Name:           "Harbour Smart Tech Tower",
		StartDate:      day("2024-03-01"),
		EndDate:        day("2026-06-30"),
		UpdatedDate:    day("2024-05-01"),
		SiteManager:    "J. Huang",
		SafetyOfficer:  "L. Chen",
		QualityControl: "M. Lin",
	}
	if err := s.SaveProjectInfo(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProjectInfo()
	if err != nil {
		t.Fatal(err)
	}
	if *got != want {
		t.Fatalf("got %+v, want %+v", *got, want)
	}
	if got.Duration() != 852 {
		t.Fatalf("duration = %d, want 852", got.Duration())
	}
}

func TestProjectInfoDurationLongSpan(t *testing.T) {
	p := ProjectInfo{StartDate: day("1700-01-01"), EndDate: day("2024-01-01")}
	if p.Duration() != 118339 {
		t.Fatalf("duration = %d, want 118339", p.Duration())
	}
}

func TestGetProjectInfoMalformedDate(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`UPDATE project_info SET updated_date = 'yesterday' WHERE id = 1`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetProjectInfo(); err == nil {
		t.Fatal("expected error for malformed updated date")
	}
}

func TestEmptyOptionalDatesLoadAsZero(t *testing.T) {
	s := newTestStore(t)
	if err := s.SavePersonnel([]permits.Personnel{{ID: "p1", ApplicationDate: day("2024-04-01")}}); err != nil {
		t.Fatal(err)
	}
	people, err := s.ListPersonnel()
	if err != nil {
		t.Fatal(err)
	}
	if !people[0].EntryDate.IsZero() {
		t.Fatalf("unset entry date should load as zero, got %v", people[0].EntryDate)
	}
}

// ============================================================
// Permits
// ============================================================

func TestPersonnelRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := []permits.Personnel{
		{
			ID: "p1", Company: "Hon Hai Engineering", Name: "Wang", Role: "Electrician",
			LaborInsurance: true, IDCard: true, PhysicalExam: true, SafetyTraining: true,
			ApplicationDate: day("2024-05-01"), EntryDate: day("2024-05-02"), Status: permits.ReviewApproved,
		},
		{
			ID: "p2", Company: "Largan", Name: "Lee", Role: "Supervisor",
			LaborInsurance: true, SpecialLicense: true,
			ApplicationDate: day("2024-05-01"), Status: permits.ReviewPending, Note: "missing exam form",
		},
	}
	if err := s.SavePersonnel(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.ListPersonnel()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2, got %d", len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("personnel %d mismatch:\n got %+v\nwant %+v", i, out[i], in[i])
		}
	}
	if !out[1].EntryDate.IsZero() {
		t.Fatal("unset entry date should stay zero")
	}
}

func TestVehiclesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := []permits.Vehicle{{
		ID: "v1", Company: "Shunfeng Cranes", PlateNumber: "REA-8888", Type: "25t crane", Driver: "Chang",
		Registration: true, License: true, Insurance: true, Photo: true,
		ApplicationDate: day("2024-05-01"), EntryDate: day("2024-05-01"), AccessArea: "Zone A",
		Status: permits.ReviewApproved,
	}}
	if err := s.SaveVehicles(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.ListVehicles()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != in[0] {
		t.Fatalf("vehicle mismatch: %+v", out)
	}
}

// ============================================================
// Settings
// ============================================================

func seedDefaults(t *testing.T, s *Store) {
	t.Helper()
	err := s.SeedSettings(map[string]string{
		SettingDefaultOwner:    "Site manager",
		SettingDefaultCategory: "Misc",
		SettingDefaultItemName: "New work item",
		SettingCurrency:        "NT$",
	})
	if err != nil {
		t.Fatalf("seed settings: %v", err)
	}
}

func TestSeedSettings(t *testing.T) {
	s := newTestStore(t)
	seedDefaults(t, s)

	defaults := map[string]string{
		SettingDefaultOwner:    "Site manager",
		SettingDefaultCategory: "Misc",
		SettingDefaultItemName: "New work item",
		SettingCurrency:        "NT$",
	}
	for k, want := range defaults {
		got, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if got != want {
			t.Fatalf("setting %q = %q, want %q", k, got, want)
		}
	}
}

func TestSeedSettingsKeepsUserValues(t *testing.T) {
	s := newTestStore(t)
	s.SetSetting(SettingDefaultOwner, "J. Huang")
	seedDefaults(t, s)

	got, _ := s.GetSetting(SettingDefaultOwner)
	if got != "J. Huang" {
		t.Fatalf("seed overwrote user value: %q", got)
	}
}

func TestSetSettingUpsert(t *testing.T) {
	s := newTestStore(t)
	seedDefaults(t, s)
	s.SetSetting(SettingDefaultOwner, "J. Huang")
	got, _ := s.GetSetting(SettingDefaultOwner)
	if got != "J. Huang" {
		t.Fatalf("owner = %q", got)
	}

	s.SetSetting("custom", "v")
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 settings, got %d", len(all))
	}
}

func TestSettingOr(t *testing.T) {
	s := newTestStore(t)
	seedDefaults(t, s)
	if got := s.SettingOr("missing", "fb"); got != "fb" {
		t.Fatalf("missing key: got %q", got)
	}
	s.SetSetting(SettingCurrency, "")
	if got := s.SettingOr(SettingCurrency, "$"); got != "$" {
		t.Fatalf("empty value: got %q", got)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSetting("nope"); err == nil {
		t.Fatal("expected error for missing setting")
	}
}
