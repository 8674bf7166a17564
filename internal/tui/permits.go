package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
)

type permitTab int

const (
	tabPersonnel permitTab = iota
	tabVehicles
)

type permitForm int

const (
	permitFormEdit permitForm = iota
	permitFormDelete
)

// Document keys used by the multi-select in the permit forms.
const (
	docLaborInsurance = "labor_insurance"
	docIDCard         = "id_card"
	docPhysicalExam   = "physical_exam"
	docSafetyTraining = "safety_training"
	docSpecialLicense = "special_license"
	docRegistration   = "registration"
	docLicense        = "license"
	docInsurance      = "insurance"
	docPhoto          = "photo"
)

// permitFields backs both permit forms; unused fields stay empty.
type permitFields struct {
	company     string
	name        string // person name or plate number
	role        string // role or vehicle type
	driver      string
	accessArea  string
	docs        []string
	application string
	entry       string
	status      string
	note        string
}

type permitsModel struct {
	personnel *permits.Register[permits.Personnel]
	vehicles  *permits.Register[permits.Vehicle]
	width     int
	height    int

	tab    permitTab
	cursor int

	formActive bool
	form       *huh.Form
	formKind   permitForm
	editingID  string
	fields     *permitFields
	confirm    *bool
}

func newPermitsModel(people *permits.Register[permits.Personnel], vehicles *permits.Register[permits.Vehicle]) permitsModel {
	confirm := false
	return permitsModel{
		personnel: people,
		vehicles:  vehicles,
		fields:    &permitFields{},
		confirm:   &confirm,
	}
}

func (p *permitsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p permitsModel) count() int {
	if p.tab == tabVehicles {
		return p.vehicles.Len()
	}
	return p.personnel.Len()
}

func (p *permitsModel) clampCursor() {
	p.cursor = max(0, min(p.cursor, p.count()-1))
}

func permitsChanged(status string) tea.Cmd {
	return func() tea.Msg { return permitsChangedMsg{status: status} }
}

func (p permitsModel) update(msg tea.Msg) (permitsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return p.updateKeys(msg)
	}
	return p, nil
}

func (p permitsModel) updateKeys(msg tea.KeyMsg) (permitsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < p.count()-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
		if p.tab == tabPersonnel {
			p.tab = tabVehicles
		} else {
			p.tab = tabPersonnel
		}
		p.cursor = 0
	case key.Matches(msg, keys.New):
		return p.addEntry()
	case key.Matches(msg, keys.Edit):
		if p.count() > 0 {
			return p.showEditForm()
		}
	case key.Matches(msg, keys.Delete):
		if p.count() > 0 {
			return p.showDeleteConfirm()
		}
	case key.Matches(msg, keys.Status):
		if p.count() > 0 {
			return p.cycleReview()
		}
	}
	return p, nil
}

// addEntry appends a blank pending entry and opens its editor.
func (p permitsModel) addEntry() (permitsModel, tea.Cmd) {
	if p.tab == tabVehicles {
		p.vehicles.Add()
	} else {
		p.personnel.Add()
	}
	p.cursor = p.count() - 1
	p, cmd := p.showEditForm()
	return p, tea.Batch(permitsChanged("Added permit application"), cmd)
}

func (p permitsModel) cycleReview() (permitsModel, tea.Cmd) {
	var err error
	var label string
	if p.tab == tabVehicles {
		v := p.vehicles.All()[p.cursor]
		v.Status = v.Status.Next()
		err = p.vehicles.Update(v)
		label = v.PlateNumber + ": " + v.Status.Label()
	} else {
		e := p.personnel.All()[p.cursor]
		e.Status = e.Status.Next()
		err = p.personnel.Update(e)
		label = e.Name + ": " + e.Status.Label()
	}
	if err != nil {
		return p, setStatus(fmt.Sprintf("Review failed: %v", err), true)
	}
	return p, permitsChanged(label)
}

func reviewOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(permits.Reviews))
	for i, r := range permits.Reviews {
		opts[i] = huh.NewOption(r.Label(), string(r))
	}
	return opts
}

func (p permitsModel) showEditForm() (permitsModel, tea.Cmd) {
	p.formKind = permitFormEdit
	f := p.fields

	if p.tab == tabVehicles {
		v := p.vehicles.All()[p.cursor]
		p.editingID = v.ID
		*f = vehicleFields(v)
		p.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Company").Value(&f.company),
				huh.NewInput().Title("Plate number").Value(&f.name),
				huh.NewInput().Title("Vehicle type").Value(&f.role),
				huh.NewInput().Title("Driver").Value(&f.driver),
				huh.NewInput().Title("Access area").Value(&f.accessArea),
			).Title("Vehicle"),
			huh.NewGroup(
				huh.NewMultiSelect[string]().Title("Documents on file").
					Options(
						huh.NewOption("Registration", docRegistration),
						huh.NewOption("Driver licence", docLicense),
						huh.NewOption("Insurance", docInsurance),
						huh.NewOption("Photo", docPhoto),
					).Value(&f.docs),
				huh.NewInput().Title("Application date").Placeholder(items.DateLayout).
					Validate(validateOptionalDate).Value(&f.application),
				huh.NewInput().Title("Entry date").Placeholder("blank until admitted").
					Validate(validateOptionalDate).Value(&f.entry),
				huh.NewSelect[string]().Title("Review").Options(reviewOptions()...).Value(&f.status),
			).Title("Review"),
		).WithShowHelp(true).WithShowErrors(true)
	} else {
		e := p.personnel.All()[p.cursor]
		p.editingID = e.ID
		*f = personnelFields(e)
		p.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Company").Value(&f.company),
				huh.NewInput().Title("Name").Value(&f.name),
				huh.NewInput().Title("Role").Value(&f.role),
			).Title("Personnel"),
			huh.NewGroup(
				huh.NewMultiSelect[string]().Title("Documents on file").
					Options(
						huh.NewOption("Labour insurance", docLaborInsurance),
						huh.NewOption("ID card", docIDCard),
						huh.NewOption("Physical exam", docPhysicalExam),
						huh.NewOption("Safety training", docSafetyTraining),
						huh.NewOption("Special licence", docSpecialLicense),
					).Value(&f.docs),
				huh.NewInput().Title("Application date").Placeholder(items.DateLayout).
					Validate(validateOptionalDate).Value(&f.application),
				huh.NewInput().Title("Entry date").Placeholder("blank until admitted").
					Validate(validateOptionalDate).Value(&f.entry),
				huh.NewSelect[string]().Title("Review").Options(reviewOptions()...).Value(&f.status),
				huh.NewInput().Title("Note").Value(&f.note),
			).Title("Review"),
		).WithShowHelp(true).WithShowErrors(true)
	}

	p.formActive = true
	return p, p.form.Init()
}

func (p permitsModel) showDeleteConfirm() (permitsModel, tea.Cmd) {
	*p.confirm = false
	p.formKind = permitFormDelete

	var label string
	if p.tab == tabVehicles {
		v := p.vehicles.All()[p.cursor]
		p.editingID, label = v.ID, v.PlateNumber
	} else {
		e := p.personnel.All()[p.cursor]
		p.editingID, label = e.ID, e.Name
	}
	if label == "" {
		label = "this application"
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", label)).
				Affirmative("Delete").
				Negative("Cancel").
				Value(p.confirm),
		),
	).WithShowHelp(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p permitsModel) updateForm(msg tea.Msg) (permitsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	switch p.form.State {
	case huh.StateAborted:
		p.formActive = false
		p.form = nil
		return p, nil
	case huh.StateCompleted:
		p.formActive = false
		p.form = nil
		if p.formKind == permitFormDelete {
			return p.finishDelete()
		}
		return p.finishEdit()
	}
	return p, cmd
}

func (p permitsModel) finishEdit() (permitsModel, tea.Cmd) {
	var err error
	if p.tab == tabVehicles {
		var v permits.Vehicle
		if v, err = p.fields.toVehicle(p.editingID); err == nil {
			err = p.vehicles.Update(v)
		}
	} else {
		var e permits.Personnel
		if e, err = p.fields.toPersonnel(p.editingID); err == nil {
			err = p.personnel.Update(e)
		}
	}
	if err != nil {
		return p, setStatus(fmt.Sprintf("Save failed: %v", err), true)
	}
	return p, permitsChanged("Permit saved")
}

func (p permitsModel) finishDelete() (permitsModel, tea.Cmd) {
	if !*p.confirm {
		return p, nil
	}
	var err error
	if p.tab == tabVehicles {
		err = p.vehicles.Remove(p.editingID)
	} else {
		err = p.personnel.Remove(p.editingID)
	}
	if err != nil {
		return p, setStatus(fmt.Sprintf("Delete failed: %v", err), true)
	}
	p.clampCursor()
	return p, permitsChanged("Permit deleted")
}

func docsOf(flags map[string]bool) []string {
	var out []string
	for k, on := range flags {
		if on {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

func personnelFields(e permits.Personnel) permitFields {
	return permitFields{
		company: e.Company,
		name:    e.Name,
		role:    e.Role,
		docs: docsOf(map[string]bool{
			docLaborInsurance: e.LaborInsurance,
			docIDCard:         e.IDCard,
			docPhysicalExam:   e.PhysicalExam,
			docSafetyTraining: e.SafetyTraining,
			docSpecialLicense: e.SpecialLicense,
		}),
		application: items.FormatDate(e.ApplicationDate),
		entry:       items.FormatDate(e.EntryDate),
		status:      string(e.Status),
		note:        e.Note,
	}
}

func vehicleFields(v permits.Vehicle) permitFields {
	return permitFields{
		company:    v.Company,
		name:       v.PlateNumber,
		role:       v.Type,
		driver:     v.Driver,
		accessArea: v.AccessArea,
		docs: docsOf(map[string]bool{
			docRegistration: v.Registration,
			docLicense:      v.License,
			docInsurance:    v.Insurance,
			docPhoto:        v.Photo,
		}),
		application: items.FormatDate(v.ApplicationDate),
		entry:       items.FormatDate(v.EntryDate),
		status:      string(v.Status),
	}
}

func (f permitFields) dates() (application, entry time.Time, err error) {
	if application, err = parseOptionalDate(f.application); err != nil {
		return
	}
	entry, err = parseOptionalDate(f.entry)
	return
}

func (f permitFields) toPersonnel(id string) (permits.Personnel, error) {
	app, entry, err := f.dates()
	if err != nil {
		return permits.Personnel{}, err
	}
	return permits.Personnel{
		ID:              id,
		Company:         strings.TrimSpace(f.company),
		Name:            strings.TrimSpace(f.name),
		Role:            strings.TrimSpace(f.role),
		LaborInsurance:  slices.Contains(f.docs, docLaborInsurance),
		IDCard:          slices.Contains(f.docs, docIDCard),
		PhysicalExam:    slices.Contains(f.docs, docPhysicalExam),
		SafetyTraining:  slices.Contains(f.docs, docSafetyTraining),
		SpecialLicense:  slices.Contains(f.docs, docSpecialLicense),
		ApplicationDate: app,
		EntryDate:       entry,
		Status:          permits.Review(f.status),
		Note:            f.note,
	}, nil
}

func (f permitFields) toVehicle(id string) (permits.Vehicle, error) {
	app, entry, err := f.dates()
	if err != nil {
		return permits.Vehicle{}, err
	}
	return permits.Vehicle{
		ID:              id,
		Company:         strings.TrimSpace(f.company),
		PlateNumber:     strings.ToUpper(strings.TrimSpace(f.name)),
		Type:            strings.TrimSpace(f.role),
		Driver:          strings.TrimSpace(f.driver),
		Registration:    slices.Contains(f.docs, docRegistration),
		License:         slices.Contains(f.docs, docLicense),
		Insurance:       slices.Contains(f.docs, docInsurance),
		Photo:           slices.Contains(f.docs, docPhoto),
		ApplicationDate: app,
		EntryDate:       entry,
		AccessArea:      strings.TrimSpace(f.accessArea),
		Status:          permits.Review(f.status),
	}, nil
}

func parseOptionalDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	return items.ParseDate(v)
}

func validateOptionalDate(v string) error {
	if _, err := parseOptionalDate(v); err != nil {
		return errors.New("use YYYY-MM-DD or leave blank")
	}
	return nil
}

// --- View ---

func (p permitsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("Edit Permit")
		if p.formKind == permitFormDelete {
			title = titleStyle.Render("Delete Permit")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}

	peopleTab := inactiveTabStyle.Render(fmt.Sprintf("Personnel (%d)", p.personnel.Len()))
	vehicleTab := inactiveTabStyle.Render(fmt.Sprintf("Vehicles (%d)", p.vehicles.Len()))
	counts := p.personnel.CountByStatus()
	if p.tab == tabPersonnel {
		peopleTab = activeTabStyle.Render(fmt.Sprintf("Personnel (%d)", p.personnel.Len()))
	} else {
		vehicleTab = activeTabStyle.Render(fmt.Sprintf("Vehicles (%d)", p.vehicles.Len()))
		counts = p.vehicles.CountByStatus()
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Site Permits"), "  ", peopleTab, vehicleTab, "  ", renderReviewCounts(counts),
	)

	var body string
	if p.tab == tabVehicles {
		body = p.renderVehicles()
	} else {
		body = p.renderPersonnel()
	}

	nav := mutedStyle.Render("  n: new  enter: edit  d: delete  s: review  ←/→: personnel/vehicles")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav))
}

func renderReviewCounts(counts map[permits.Review]int) string {
	var parts []string
	for _, r := range permits.Reviews {
		parts = append(parts, reviewStyle(r).Render(fmt.Sprintf("%s %d", r.Label(), counts[r])))
	}
	return strings.Join(parts, mutedStyle.Render(" · "))
}

func (p permitsModel) renderPersonnel() string {
	list := p.personnel.All()
	if len(list) == 0 {
		return mutedStyle.Render("  No personnel applications. Press n to add one.")
	}

	rows := []string{columnHeaderStyle.Render(fmt.Sprintf("  %-18s %-14s %-12s %-3s %-3s %-3s %-3s %-3s %-10s %-10s %-9s %s",
		"Company", "Name", "Role", "Ins", "ID", "Exm", "Trn", "Lic", "Applied", "Entry", "Review", "Note"))}
	for i, e := range list {
		cursor, style := "  ", normalItemStyle
		if i == p.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		row := fmt.Sprintf("%s%s %s %s %s   %s   %s   %s   %s   %s %s %s %s",
			cursor,
			style.Render(pad(e.Company, 18)),
			style.Render(pad(e.Name, 14)),
			pad(e.Role, 12),
			check(e.LaborInsurance), check(e.IDCard), check(e.PhysicalExam), check(e.SafetyTraining), check(e.SpecialLicense),
			pad(items.FormatDate(e.ApplicationDate), 10),
			pad(items.FormatDate(e.EntryDate), 10),
			reviewStyle(e.Status).Render(pad(e.Status.Label(), 9)),
			mutedStyle.Render(truncate(e.Note, 24)),
		)
		if !e.DocumentsComplete() {
			row += " " + warningStyle.Render("docs missing")
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (p permitsModel) renderVehicles() string {
	list := p.vehicles.All()
	if len(list) == 0 {
		return mutedStyle.Render("  No vehicle applications. Press n to add one.")
	}

	rows := []string{columnHeaderStyle.Render(fmt.Sprintf("  %-18s %-10s %-12s %-10s %-3s %-3s %-3s %-3s %-10s %-10s %-10s %s",
		"Company", "Plate", "Type", "Driver", "Reg", "Lic", "Ins", "Pho", "Applied", "Entry", "Area", "Review"))}
	for i, v := range list {
		cursor, style := "  ", normalItemStyle
		if i == p.cursor {
			cursor, style = "> ", selectedItemStyle
		}
		row := fmt.Sprintf("%s%s %s %s %s %s   %s   %s   %s   %s %s %s %s",
			cursor,
			style.Render(pad(v.Company, 18)),
			style.Render(pad(v.PlateNumber, 10)),
			pad(v.Type, 12),
			pad(v.Driver, 10),
			check(v.Registration), check(v.License), check(v.Insurance), check(v.Photo),
			pad(items.FormatDate(v.ApplicationDate), 10),
			pad(items.FormatDate(v.EntryDate), 10),
			pad(v.AccessArea, 10),
			reviewStyle(v.Status).Render(v.Status.Label()),
		)
		if !v.DocumentsComplete() {
			row += " " + warningStyle.Render("docs missing")
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}
