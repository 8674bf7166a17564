package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type scheduleForm int

const (
	scheduleFormEdit scheduleForm = iota
	scheduleFormDelete
)

// itemFields backs the edit form. It lives behind a pointer so huh keeps
// writing to the same strings across value copies of the model.
type itemFields struct {
	category string
	name     string
	status   string
	start    string
	end      string
	progress string
	amount   string
	payment  string
	owner    string
	remark   string
}

type scheduleModel struct {
	items    *items.Store
	today    func() time.Time
	info     store.ProjectInfo
	currency string
	width    int
	height   int

	category string // active filter, CategoryAll for none
	cursor   int
	offset   int

	formActive bool
	form       *huh.Form
	formKind   scheduleForm
	editingID  string
	fields     *itemFields
	confirm    *bool
}

func newScheduleModel(s *items.Store, today func() time.Time, currency string) scheduleModel {
	confirm := false
	return scheduleModel{
		items:    s,
		today:    today,
		currency: currency,
		category: items.CategoryAll,
		fields:   &itemFields{},
		confirm:  &confirm,
	}
}

func (m *scheduleModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.scroll()
}

// rows is the filtered, canonically ordered view of the store.
func (m scheduleModel) rows() []items.WorkItem {
	return items.Filter(m.items.Items(), m.category)
}

func (m scheduleModel) selected() (items.WorkItem, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return items.WorkItem{}, false
	}
	return rows[m.cursor], true
}

// selectID moves the cursor onto id, which may have moved after a resort.
func (m *scheduleModel) selectID(id string) {
	for i, it := range m.rows() {
		if it.ID == id {
			m.cursor = i
			m.scroll()
			return
		}
	}
	m.clampCursor()
}

func (m *scheduleModel) clampCursor() {
	n := len(m.rows())
	m.cursor = max(0, min(m.cursor, n-1))
	m.scroll()
}

func (m scheduleModel) visibleRows() int {
	// title, project line, filter line, column header, totals, hints, panel chrome
	return max(1, m.height-12)
}

func (m *scheduleModel) scroll() {
	vis := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vis {
		m.offset = m.cursor - vis + 1
	}
	m.offset = max(0, m.offset)
}

func (m *scheduleModel) cycleCategory(step int) {
	cats := items.Categories(m.items.Items())
	i := 0
	for j, c := range cats {
		if c == m.category {
			i = j
			break
		}
	}
	i = (i + step + len(cats)) % len(cats)
	m.category = cats[i]
	m.cursor = 0
	m.offset = 0
}

func itemsChanged(status string, updated bool) tea.Cmd {
	return func() tea.Msg { return itemsChangedMsg{status: status, updated: updated} }
}

func setStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func (m scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m scheduleModel) updateKeys(msg tea.KeyMsg) (scheduleModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
			m.scroll()
		}
	case key.Matches(msg, keys.Left):
		m.cycleCategory(-1)
	case key.Matches(msg, keys.Right), key.Matches(msg, keys.Filter):
		m.cycleCategory(1)
	case key.Matches(msg, keys.New):
		category := m.category
		if category == items.CategoryAll {
			category = ""
		}
		it := m.items.Add(category)
		m.selectID(it.ID)
		return m, itemsChanged("Added "+it.Name, false)
	case key.Matches(msg, keys.Edit):
		if it, ok := m.selected(); ok {
			return m.showEditForm(it)
		}
	case key.Matches(msg, keys.Delete):
		if it, ok := m.selected(); ok {
			return m.showDeleteConfirm(it)
		}
	case key.Matches(msg, keys.Undo):
		if !m.items.Undo() {
			return m, setStatus("Nothing to undo", false)
		}
		m.clampCursor()
		return m, itemsChanged("Undone", false)
	case key.Matches(msg, keys.Status):
		if it, ok := m.selected(); ok {
			it.Status = it.Status.Next()
			return m.apply(it, it.Name+": "+it.Status.Label())
		}
	case key.Matches(msg, keys.Payment):
		if it, ok := m.selected(); ok {
			if it.Payment == items.PaymentPaid {
				it.Payment = items.PaymentUnpaid
			} else {
				it.Payment = items.PaymentPaid
			}
			return m.apply(it, it.Name+": "+it.Payment.Label())
		}
	}
	return m, nil
}

// apply pushes an edited item into the store and keeps it selected.
func (m scheduleModel) apply(it items.WorkItem, status string) (scheduleModel, tea.Cmd) {
	stored, err := m.items.Update(it)
	if err != nil {
		return m, setStatus(fmt.Sprintf("Update failed: %v", err), true)
	}
	if stored.Category != m.category && m.category != items.CategoryAll {
		m.category = items.CategoryAll
	}
	m.selectID(stored.ID)
	return m, itemsChanged(status, true)
}

func (m scheduleModel) showEditForm(it items.WorkItem) (scheduleModel, tea.Cmd) {
	*m.fields = fieldsFromItem(it)
	m.editingID = it.ID
	m.formKind = scheduleFormEdit

	statusOpts := make([]huh.Option[string], len(items.Statuses))
	for i, st := range items.Statuses {
		statusOpts[i] = huh.NewOption(st.Label(), string(st))
	}
	f := m.fields

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category").
				Suggestions(items.Categories(m.items.Items())[1:]).
				Value(&f.category),
			huh.NewInput().Title("Name").Value(&f.name),
			huh.NewSelect[string]().Title("Status").Options(statusOpts...).Value(&f.status),
			huh.NewInput().Title("Owner").Value(&f.owner),
		).Title("Work item"),
		huh.NewGroup(
			huh.NewInput().Title("Start date").Placeholder(items.DateLayout).
				Validate(validateDate).Value(&f.start),
			huh.NewInput().Title("End date").Placeholder(items.DateLayout).
				Validate(validateDate).Value(&f.end),
			huh.NewInput().Title("Progress (%)").Validate(validateInt).Value(&f.progress),
		).Title("Schedule"),
		huh.NewGroup(
			huh.NewInput().Title("Amount").Validate(validateAmount).Value(&f.amount),
			huh.NewSelect[string]().Title("Payment").
				Options(
					huh.NewOption(items.PaymentUnpaid.Label(), string(items.PaymentUnpaid)),
					huh.NewOption(items.PaymentPaid.Label(), string(items.PaymentPaid)),
				).Value(&f.payment),
			huh.NewText().Title("Remark").Lines(3).Value(&f.remark),
		).Title("Budget"),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scheduleModel) showDeleteConfirm(it items.WorkItem) (scheduleModel, tea.Cmd) {
	*m.confirm = false
	m.editingID = it.ID
	m.formKind = scheduleFormDelete

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", it.Name)).
				Description("The item is removed from the schedule. Press u afterwards to undo.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.formActive = false
		m.form = nil
		return m, nil
	case huh.StateCompleted:
		m.formActive = false
		m.form = nil
		switch m.formKind {
		case scheduleFormEdit:
			it, err := m.fields.toItem(m.editingID)
			if err != nil {
				return m, setStatus(err.Error(), true)
			}
			return m.apply(it, "Saved "+it.Name)
		case scheduleFormDelete:
			if !*m.confirm {
				return m, nil
			}
			it, _ := m.items.Get(m.editingID)
			if err := m.items.Remove(m.editingID); err != nil {
				return m, setStatus(fmt.Sprintf("Delete failed: %v", err), true)
			}
			m.clampCursor()
			return m, itemsChanged("Deleted "+it.Name, false)
		}
	}

	return m, cmd
}

func fieldsFromItem(it items.WorkItem) itemFields {
	return itemFields{
		category: it.Category,
		name:     it.Name,
		status:   string(it.Status),
		start:    items.FormatDate(it.StartDate),
		end:      items.FormatDate(it.EndDate),
		progress: strconv.Itoa(it.Progress),
		amount:   strconv.FormatInt(it.Amount, 10),
		payment:  string(it.Payment),
		owner:    it.Owner,
		remark:   it.Remark,
	}
}

// toItem converts the form back into a work item. Progress is clamped to
// 0..100; Days is left for the store to derive.
func (f itemFields) toItem(id string) (items.WorkItem, error) {
	status, err := items.ParseStatus(f.status)
	if err != nil {
		return items.WorkItem{}, err
	}
	payment, err := items.ParsePayment(f.payment)
	if err != nil {
		return items.WorkItem{}, err
	}
	start, err := items.ParseDate(strings.TrimSpace(f.start))
	if err != nil {
		return items.WorkItem{}, err
	}
	end, err := items.ParseDate(strings.TrimSpace(f.end))
	if err != nil {
		return items.WorkItem{}, err
	}
	progress, err := strconv.Atoi(strings.TrimSpace(f.progress))
	if err != nil {
		return items.WorkItem{}, fmt.Errorf("parse progress: %w", err)
	}
	amount, err := parseAmount(f.amount)
	if err != nil {
		return items.WorkItem{}, err
	}
	return items.WorkItem{
		ID:        id,
		Category:  strings.TrimSpace(f.category),
		Name:      strings.TrimSpace(f.name),
		Status:    status,
		StartDate: start,
		EndDate:   end,
		Progress:  clampPercent(progress),
		Amount:    amount,
		Payment:   payment,
		Owner:     strings.TrimSpace(f.owner),
		Remark:    f.remark,
	}, nil
}

func parseAmount(v string) (int64, error) {
	v = strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", v, err)
	}
	return n, nil
}

func validateDate(v string) error {
	_, err := items.ParseDate(strings.TrimSpace(v))
	if err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateInt(v string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(v)); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

func validateAmount(v string) error {
	if _, err := parseAmount(v); err != nil {
		return errors.New("enter a whole amount")
	}
	return nil
}

// --- View ---

type gridColumn struct {
	title string
	width int
	right bool
}

func (m scheduleModel) columns(w int) []gridColumn {
	cols := []gridColumn{
		{"Category", 14, false},
		{"Name", 0, false},
		{"Status", 11, false},
		{"Start", 10, false},
		{"End", 10, false},
		{"Days", 4, true},
		{"Progress", 15, false},
		{"Amount", 13, true},
		{"Paid", 6, false},
	}
	if w >= 140 {
		cols = append(cols, gridColumn{"Owner", 14, false}, gridColumn{"Remark", 0, false})
	} else if w >= 120 {
		cols = append(cols, gridColumn{"Owner", 14, false})
	}

	fixed, flex := 0, 0
	for _, c := range cols {
		fixed += c.width + 1
		if c.width == 0 {
			flex++
		}
	}
	rest := max(8*flex, w-fixed)
	for i := range cols {
		if cols[i].width == 0 {
			cols[i].width = rest / flex
		}
	}
	return cols
}

func cell(c gridColumn, v string) string {
	if c.right {
		v = truncate(v, c.width)
		return strings.Repeat(" ", max(0, c.width-lipgloss.Width(v))) + v
	}
	return pad(v, c.width)
}

func (m scheduleModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Edit Work Item")
		if m.formKind == scheduleFormDelete {
			title = titleStyle.Render("Delete Work Item")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()),
		)
	}

	inner := w - 6
	rows := m.rows()
	today := items.Day(m.today())

	var out []string
	out = append(out, m.renderTitle())
	out = append(out, m.renderProjectLine())
	out = append(out, m.renderFilterLine(len(rows)))
	out = append(out, "")

	cols := m.columns(inner - 2)
	var hdr []string
	for _, c := range cols {
		hdr = append(hdr, cell(c, c.title))
	}
	out = append(out, "  "+columnHeaderStyle.Render(strings.Join(hdr, " ")))

	if len(rows) == 0 {
		out = append(out, "", mutedStyle.Render("  No work items. Press n to add one."))
	}

	vis := m.visibleRows()
	offset := max(0, min(m.offset, len(rows)-vis))
	end := min(len(rows), offset+vis)
	for i := offset; i < end; i++ {
		out = append(out, m.renderRow(cols, rows[i], i == m.cursor, today))
	}

	out = append(out, "")
	out = append(out, m.renderTotals(rows))
	out = append(out, mutedStyle.Render("  n: add  enter: edit  d: delete  u: undo  s: status  p: paid  ←/→ f: category  i: project"))

	return panelStyle.Width(w).Render(strings.Join(out, "\n"))
}

func (m scheduleModel) renderTitle() string {
	title := titleStyle.Render("Schedule & Budget")
	undo := mutedStyle.Render(fmt.Sprintf("undo %d/%d", m.items.Depth(), items.HistoryDepth))
	if m.items.CanUndo() {
		undo = accentStyle.Render(fmt.Sprintf("undo %d/%d", m.items.Depth(), items.HistoryDepth))
	}
	return title + "  " + undo
}

func (m scheduleModel) renderProjectLine() string {
	info := m.info
	name := info.Name
	if name == "" {
		name = "Untitled project"
	}
	parts := []string{highlightStyle.Render(name)}
	if !info.StartDate.IsZero() || !info.EndDate.IsZero() {
		span := items.FormatDate(info.StartDate) + " → " + items.FormatDate(info.EndDate)
		if d := info.Duration(); d > 0 {
			span += fmt.Sprintf(" (%d days)", d)
		}
		parts = append(parts, span)
	}
	if !info.UpdatedDate.IsZero() {
		parts = append(parts, "updated "+items.FormatDate(info.UpdatedDate))
	}
	if info.SiteManager != "" {
		parts = append(parts, "SM "+info.SiteManager)
	}
	if info.SafetyOfficer != "" {
		parts = append(parts, "SO "+info.SafetyOfficer)
	}
	if info.QualityControl != "" {
		parts = append(parts, "QC "+info.QualityControl)
	}
	return subtitleStyle.Render(strings.Join(parts, "  ·  "))
}

func (m scheduleModel) renderFilterLine(shown int) string {
	label := m.category
	if label == items.CategoryAll {
		label = "All categories"
	}
	return fmt.Sprintf("%s %s %s",
		mutedStyle.Render("‹"),
		selectedItemStyle.Render(label),
		mutedStyle.Render(fmt.Sprintf("› %d of %d items", shown, m.items.Len())),
	)
}

func (m scheduleModel) renderRow(cols []gridColumn, it items.WorkItem, selected bool, today time.Time) string {
	overdue := items.Overdue(it, today)
	var cells []string
	for _, c := range cols {
		var v string
		style := normalItemStyle
		if it.Completed() {
			style = completedRowStyle
		}
		switch c.title {
		case "Category":
			v = it.Category
		case "Name":
			v = it.Name
			if overdue {
				v = "! " + v
				style = overdueStyle
			}
			if selected {
				style = selectedItemStyle
			}
		case "Status":
			v = it.Status.Label()
			style = statusStyle(it.Status)
		case "Start":
			v = items.FormatDate(it.StartDate)
		case "End":
			v = items.FormatDate(it.EndDate)
			if overdue {
				style = overdueStyle
			}
		case "Days":
			v = strconv.Itoa(it.Days)
		case "Progress":
			cells = append(cells, progressBar(it.Progress, c.width-5))
			continue
		case "Amount":
			v = formatAmount("", it.Amount)
		case "Paid":
			v = it.Payment.Label()
			style = paymentStyle(it.Payment)
		case "Owner":
			v = it.Owner
		case "Remark":
			v = strings.ReplaceAll(it.Remark, "\n", " ")
		}
		cells = append(cells, style.Render(cell(c, v)))
	}

	cursor := "  "
	if selected {
		cursor = selectedItemStyle.Render("> ")
	}
	return cursor + strings.Join(cells, " ")
}

func (m scheduleModel) renderTotals(rows []items.WorkItem) string {
	t := items.Summarize(rows)
	return totalsStyle.Render(fmt.Sprintf("  %d items   Total %s   Paid %s   Unpaid %s",
		t.Count,
		formatAmount(m.currency, t.Total),
		formatAmount(m.currency, t.Paid),
		formatAmount(m.currency, t.Unpaid),
	))
}
