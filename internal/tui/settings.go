package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

// settingKeys lists the settings shown in the view, in display order.
var settingKeys = []struct {
	key   string
	label string
}{
	{store.SettingDefaultCategory, "Default category"},
	{store.SettingDefaultItemName, "Default item name"},
	{store.SettingDefaultOwner, "Default owner"},
	{store.SettingCurrency, "Currency symbol"},
}

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	values     map[string]string
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	category *string
	itemName *string
	owner    *string
	currency *string
}

func newSettingsModel(s *store.Store) settingsModel {
	c, n, o, cur := "", "", "", ""
	return settingsModel{
		store:    s,
		values:   make(map[string]string),
		category: &c,
		itemName: &n,
		owner:    &o,
		currency: &cur,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	if s.store == nil {
		return nil
	}
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings, err: err}
	}
}

// defaults returns the placeholders for new items described by the loaded
// settings.
func (s settingsModel) defaults() items.Defaults {
	return items.Defaults{
		Category: s.values[store.SettingDefaultCategory],
		Name:     s.values[store.SettingDefaultItemName],
		Owner:    s.values[store.SettingDefaultOwner],
	}
}

func (s settingsModel) currencySymbol(fallback string) string {
	if v := s.values[store.SettingCurrency]; v != "" {
		return v
	}
	return fallback
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, setStatus(fmt.Sprintf("Loading settings failed: %v", msg.err), true)
		}
		s.values = make(map[string]string, len(msg.settings))
		for _, st := range msg.settings {
			s.values[st.Key] = st.Value
		}
		return s, func() tea.Msg { return settingsChangedMsg{} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.category = s.values[store.SettingDefaultCategory]
	*s.itemName = s.values[store.SettingDefaultItemName]
	*s.owner = s.values[store.SettingDefaultOwner]
	*s.currency = s.values[store.SettingCurrency]

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default category").
				Suggestions(items.FixedCategories).
				Validate(required("category")).
				Value(s.category),
			huh.NewInput().Title("Default item name").Value(s.itemName),
			huh.NewInput().Title("Default owner").Value(s.owner),
		).Title("New work items"),
		huh.NewGroup(
			huh.NewInput().Title("Currency symbol").
				Validate(required("currency symbol")).
				Value(s.currency),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	switch s.form.State {
	case huh.StateAborted:
		s.formActive = false
		s.form = nil
		return s, nil
	case huh.StateCompleted:
		s.formActive = false
		s.form = nil
		return s, s.saveSettings()
	}

	return s, cmd
}

// saveSettings writes the form values and reloads them, which in turn
// announces the change to the app.
func (s settingsModel) saveSettings() tea.Cmd {
	if s.store == nil {
		return nil
	}
	values := map[string]string{
		store.SettingDefaultCategory: strings.TrimSpace(*s.category),
		store.SettingDefaultItemName: strings.TrimSpace(*s.itemName),
		store.SettingDefaultOwner:    strings.TrimSpace(*s.owner),
		store.SettingCurrency:        strings.TrimSpace(*s.currency),
	}
	st := s.store
	return func() tea.Msg {
		for k, v := range values {
			if err := st.SetSetting(k, v); err != nil {
				return statusMsg{text: fmt.Sprintf("Saving settings failed: %v", err), isError: true}
			}
		}
		settings, err := st.GetAllSettings()
		return settingsDataMsg{settings: settings, err: err}
	}
}

func required(field string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings, i to edit the project header")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, k := range settingKeys {
		label := lipgloss.NewStyle().Width(24).Render(k.label)
		v := s.values[k.key]
		value := highlightStyle.Render(v)
		if v == "" {
			value = mutedStyle.Render("(built-in)")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
