package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/sadopc/sitetrackr/internal/export"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
	"github.com/sadopc/sitetrackr/internal/store"
)

// Options configure NewApp. Zero values select sensible defaults.
type Options struct {
	Currency  string
	Defaults  items.Defaults
	ExportDir string // defaults to the home directory
	Today     func() time.Time
}

var exportFormats = []string{"CSV", "JSON", "Markdown"}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	saver  *saver
	width  int
	height int

	items     *items.Store
	personnel *permits.Register[permits.Personnel]
	vehicles  *permits.Register[permits.Vehicle]
	info      store.ProjectInfo
	currency  string
	exportDir string
	today     func() time.Time

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	schedule scheduleModel
	permits  permitsModel
	reports  reportsModel
	settings settingsModel
	infoForm infoForm

	help        help.Model
	status      string
	statusError bool
}

// NewApp loads the save file behind s into memory. s may be nil, in which
// case nothing is loaded or persisted.
func NewApp(s *store.Store, opts Options) (App, error) {
	if opts.Today == nil {
		opts.Today = func() time.Time { return items.Day(time.Now()) }
	}
	if opts.Currency == "" {
		opts.Currency = "NT$"
	}
	if opts.ExportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		opts.ExportDir = home
	}

	itemStore := items.NewStore(items.WithDefaults(opts.Defaults), items.WithClock(opts.Today))
	people := permits.NewPersonnelRegister()
	vehicles := permits.NewVehicleRegister()
	people.SetClock(opts.Today)
	vehicles.SetClock(opts.Today)

	var info store.ProjectInfo
	if s != nil {
		list, err := s.ListItems()
		if err != nil {
			return App{}, fmt.Errorf("load work items: %w", err)
		}
		itemStore.Load(list)

		p, err := s.ListPersonnel()
		if err != nil {
			return App{}, fmt.Errorf("load personnel: %w", err)
		}
		people.Load(p)

		v, err := s.ListVehicles()
		if err != nil {
			return App{}, fmt.Errorf("load vehicles: %w", err)
		}
		vehicles.Load(v)

		pi, err := s.GetProjectInfo()
		if err != nil {
			return App{}, fmt.Errorf("load project info: %w", err)
		}
		info = *pi
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		store:      s,
		saver:      newSaver(s),
		items:      itemStore,
		personnel:  people,
		vehicles:   vehicles,
		info:       info,
		currency:   opts.Currency,
		exportDir:  opts.ExportDir,
		today:      opts.Today,
		activeView: viewSchedule,
		schedule:   newScheduleModel(itemStore, opts.Today, opts.Currency),
		permits:    newPermitsModel(people, vehicles),
		reports:    newReportsModel(),
		settings:   newSettingsModel(s),
		infoForm:   newInfoForm(),
		help:       h,
	}
	a.schedule.info = info
	a.reports.refresh(info, itemStore.Items(), opts.Currency, opts.Today())
	return a, nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.settings.refresh(),
		a.reports.renderSummary(a.reports.rendered),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.schedule.setSize(a.width, contentHeight)
		a.permits.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.infoForm.width = a.width
		return a, a.refreshReports()

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.infoForm.active {
			var cmd tea.Cmd
			a.infoForm, cmd = a.infoForm.update(msg)
			return a, cmd
		}
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Info):
			var cmd tea.Cmd
			a.infoForm, cmd = a.infoForm.open(a.info)
			return a, cmd
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewSchedule
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPermits
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.refreshReports()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case itemsChangedMsg:
		a.setStatus(msg.status, false)
		cmds := []tea.Cmd{a.saver.saveItems(a.items.Items())}
		if msg.updated {
			a.info.UpdatedDate = a.today()
			a.schedule.info = a.info
			cmds = append(cmds, a.saver.saveInfo(a.info))
		}
		cmds = append(cmds, a.refreshReports())
		return a, tea.Batch(cmds...)

	case permitsChangedMsg:
		a.setStatus(msg.status, false)
		return a, a.saver.savePermits(a.personnel.All(), a.vehicles.All())

	case infoChangedMsg:
		a.info = msg.info
		a.schedule.info = msg.info
		a.setStatus("Project header saved", false)
		return a, tea.Batch(a.saver.saveInfo(a.info), a.refreshReports())

	case settingsChangedMsg:
		a.items.SetDefaults(a.settings.defaults())
		a.currency = a.settings.currencySymbol(a.currency)
		a.schedule.currency = a.currency
		return a, a.refreshReports()

	case savedMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Autosave of %s failed: %v", msg.what, msg.err), true)
		}
		return a, nil

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case summaryRenderedMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	if a.infoForm.active {
		var cmd tea.Cmd
		a.infoForm, cmd = a.infoForm.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewSchedule:
		a.schedule, cmd = a.schedule.update(msg)
	case viewPermits:
		a.permits, cmd = a.permits.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewSchedule:
		return a.schedule.formActive
	case viewPermits:
		return a.permits.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a *App) refreshReports() tea.Cmd {
	return a.reports.refresh(a.info, a.items.Items(), a.currency, a.today())
}

func (a *App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewReports:
		return a.refreshReports()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

// Flush writes the whole in-memory state synchronously. It is called after
// the program exits so that saves still in flight cannot be lost.
func (a App) Flush() error {
	if a.store == nil {
		return nil
	}
	return a.saver.flush(a.writeAll)
}

func (a App) writeAll() error {
	if err := a.store.SaveItems(a.items.Items()); err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	if err := a.store.SaveProjectInfo(a.info); err != nil {
		return fmt.Errorf("save project info: %w", err)
	}
	if err := a.store.SavePersonnel(a.personnel.All()); err != nil {
		return fmt.Errorf("save personnel: %w", err)
	}
	if err := a.store.SaveVehicles(a.vehicles.All()); err != nil {
		return fmt.Errorf("save vehicles: %w", err)
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewSchedule:
		content = a.schedule.view()
	case viewPermits:
		content = a.permits.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	switch {
	case a.exportPicking:
		content = a.renderExportPicker()
	case a.infoForm.active:
		content = a.infoForm.view()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("sitetrackr")
	if a.info.Name != "" {
		title += subtitleStyle.Render("  " + truncate(a.info.Name, 40))
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(status)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	list := a.items.Items()
	info := a.info
	currency := a.currency
	today := a.today()
	dir := a.exportDir

	return func() tea.Msg {
		base := filepath.Join(dir, "sitetrackr-export-"+today.Format(items.DateLayout))

		var path string
		var err error
		switch format {
		case 0:
			path = base + ".csv"
			err = export.ToCSV(list, path)
		case 1:
			path = base + ".json"
			err = export.ToJSON(info, list, path)
		default:
			path = base + ".md"
			err = os.WriteFile(path, []byte(export.Markdown(info, list, currency, today)), 0o644)
		}
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("export failed")
			return statusMsg{text: fmt.Sprintf("%s export error: %v", exportFormats[min(format, len(exportFormats)-1)], err), isError: true}
		}
		log.Info().Str("path", path).Int("items", len(list)).Msg("exported")
		return exportDoneMsg{path: path}
	}
}
