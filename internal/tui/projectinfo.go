package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type infoFields struct {
	name           string
	start          string
	end            string
	siteManager    string
	safetyOfficer  string
	qualityControl string
}

// infoForm edits the project header. It is opened over any view.
type infoForm struct {
	width  int
	active bool
	form   *huh.Form
	base   store.ProjectInfo
	fields *infoFields
}

func newInfoForm() infoForm {
	return infoForm{fields: &infoFields{}}
}

func (f infoForm) open(info store.ProjectInfo) (infoForm, tea.Cmd) {
	f.base = info
	*f.fields = infoFields{
		name:           info.Name,
		start:          items.FormatDate(info.StartDate),
		end:            items.FormatDate(info.EndDate),
		siteManager:    info.SiteManager,
		safetyOfficer:  info.SafetyOfficer,
		qualityControl: info.QualityControl,
	}
	v := f.fields

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project name").Value(&v.name),
			huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").
				Validate(validateOptionalDate).Value(&v.start),
			huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").
				Validate(validateOptionalDate).Value(&v.end),
		).Title("Project"),
		huh.NewGroup(
			huh.NewInput().Title("Site manager").Value(&v.siteManager),
			huh.NewInput().Title("Safety officer").Value(&v.safetyOfficer),
			huh.NewInput().Title("Quality control").Value(&v.qualityControl),
		).Title("People"),
	).WithShowHelp(true).WithShowErrors(true)

	f.active = true
	return f, f.form.Init()
}

func (f infoForm) update(msg tea.Msg) (infoForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		f.active = false
		f.form = nil
		return f, nil
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateAborted:
		f.active = false
		f.form = nil
		return f, nil
	case huh.StateCompleted:
		f.active = false
		f.form = nil
		info, err := f.fields.toInfo(f.base)
		if err != nil {
			return f, setStatus("Project header not saved: "+err.Error(), true)
		}
		return f, func() tea.Msg { return infoChangedMsg{info: info} }
	}
	return f, cmd
}

func (v infoFields) toInfo(base store.ProjectInfo) (store.ProjectInfo, error) {
	start, err := parseOptionalDate(v.start)
	if err != nil {
		return base, err
	}
	end, err := parseOptionalDate(v.end)
	if err != nil {
		return base, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return base, errors.New("end date is before start date")
	}
	base.Name = strings.TrimSpace(v.name)
	base.StartDate = start
	base.EndDate = end
	base.SiteManager = strings.TrimSpace(v.siteManager)
	base.SafetyOfficer = strings.TrimSpace(v.safetyOfficer)
	base.QualityControl = strings.TrimSpace(v.qualityControl)
	return base, nil
}

func (f infoForm) view() string {
	return panelStyle.Width(f.width - 4).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Project Header"), "", f.form.View()),
	)
}
