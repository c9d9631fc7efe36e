package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/export"
	"github.com/kweiss/vaultmon/internal/fallback"
)

var (
	deviceTypes      = []string{api.DeviceSensor, api.DeviceRFID, api.DeviceNetwork, api.DeviceServer, api.DeviceOther}
	maintenanceTypes = []string{api.MaintenanceRoutine, api.MaintenancePreventive, api.MaintenanceCorrective, api.MaintenanceUpgrade, api.MaintenanceCalibration}

	// statusCycle is the order "s" advances a record through. Overdue is
	// assigned by the backend, never by the operator.
	statusCycle = []string{api.StatusScheduled, api.StatusInProgress, api.StatusCompleted, api.StatusCancelled}
)

// maintenanceForm is the inline new-record form.
type maintenanceForm struct {
	description textinput.Model
	technician  textinput.Model
	date        textinput.Model
	deviceIdx   int
	typeIdx     int
	focus       int
}

const maintenanceFormFields = 3

func newMaintenanceForm() maintenanceForm {
	description := textinput.New()
	description.Placeholder = "what needs doing"
	description.CharLimit = 120
	description.Width = 40
	technician := textinput.New()
	technician.Placeholder = "assignee"
	technician.CharLimit = 40
	technician.Width = 20
	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = 10
	date.Width = 12
	return maintenanceForm{description: description, technician: technician, date: date}
}

// maintenanceState carries the maintenance page: the record listing, the
// derived statistics, the cursor and the optional new-record form.
type maintenanceState struct {
	page         api.MaintenancePage
	stats        api.MaintenanceStatistics
	cursor       int
	statusFilter string
	form         maintenanceForm
	showForm     bool
	synthetic    bool
	lastUpdated  time.Time
}

// filterCycle is what "f" walks through; empty means no filter.
var filterCycle = []string{"", api.StatusScheduled, api.StatusInProgress,
	api.StatusCompleted, api.StatusCancelled, api.StatusOverdue}

type maintenanceDataMsg struct {
	page      api.MaintenancePage
	stats     api.MaintenanceStatistics
	synthetic bool
	err       error
}

func seedMaintenance() maintenanceState {
	page := fallback.MaintenancePage()
	return maintenanceState{
		page:        page,
		stats:       fallback.MaintenanceStatistics(page.Records),
		form:        newMaintenanceForm(),
		synthetic:   true,
		lastUpdated: time.Now(),
	}
}

func (a *App) loadMaintenance() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	filter := api.MaintenanceFilter{Status: a.maintenance.statusFilter, PerPage: 50}
	return func() tea.Msg {
		page, synthPage, err := fetchOr(timeout, func(ctx context.Context) (api.MaintenancePage, error) {
			return backend.MaintenanceRecords(ctx, filter)
		}, func() api.MaintenancePage {
			page := fallback.MaintenancePage()
			if filter.Status == "" {
				return page
			}
			kept := page.Records[:0]
			for _, record := range page.Records {
				if record.Status == filter.Status {
					kept = append(kept, record)
				}
			}
			page.Records = kept
			page.Pagination.Total = len(kept)
			return page
		})
		stats, synthStats, serr := fetchOr(timeout, backend.MaintenanceStatistics, func() api.MaintenanceStatistics {
			return fallback.MaintenanceStatistics(page.Records)
		})
		return maintenanceDataMsg{
			page:      page,
			stats:     stats,
			synthetic: synthPage || synthStats,
			err:       firstError(err, serr),
		}
	}
}

func (a *App) applyMaintenanceData(msg maintenanceDataMsg) {
	a.maintenance.page = msg.page
	a.maintenance.stats = msg.stats
	a.maintenance.synthetic = msg.synthetic
	a.maintenance.lastUpdated = time.Now()
	if a.maintenance.cursor >= len(msg.page.Records) {
		a.maintenance.cursor = maxInt(0, len(msg.page.Records)-1)
	}
	if msg.err != nil {
		a.logWarn("maintenance: %s (%v)", fallback.Describe("maintenance records"), msg.err)
	}
}

func (a *App) updateMaintenanceKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	st := &a.maintenance
	if st.showForm {
		return a.updateMaintenanceForm(msg), true
	}

	switch msg.String() {
	case "up", "k":
		if st.cursor > 0 {
			st.cursor--
		}
		return nil, true
	case "down", "j":
		if st.cursor < len(st.page.Records)-1 {
			st.cursor++
		}
		return nil, true
	case "n":
		st.form = newMaintenanceForm()
		st.form.date.SetValue(time.Now().AddDate(0, 0, 7).Format("2006-01-02"))
		st.form.description.Focus()
		st.showForm = true
		return nil, true
	case "s":
		return a.advanceMaintenanceStatus(), true
	case "d":
		return a.deleteMaintenanceRecord(), true
	case "e":
		return a.exportMaintenance(), true
	case "f":
		for i, status := range filterCycle {
			if st.statusFilter == status {
				st.statusFilter = filterCycle[(i+1)%len(filterCycle)]
				break
			}
		}
		st.cursor = 0
		return a.loadMaintenance(), true
	}
	return nil, false
}

func (a *App) updateMaintenanceForm(msg tea.KeyMsg) tea.Cmd {
	form := &a.maintenance.form
	switch msg.String() {
	case "esc":
		a.maintenance.showForm = false
		return nil
	case "enter":
		return a.createMaintenanceRecord()
	case "tab":
		form.focus = (form.focus + 1) % (maintenanceFormFields + 2)
		form.description.Blur()
		form.technician.Blur()
		form.date.Blur()
		switch form.focus {
		case 0:
			form.description.Focus()
		case 1:
			form.technician.Focus()
		case 2:
			form.date.Focus()
		}
		return nil
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch form.focus {
		case 3:
			form.deviceIdx = cycleIndex(form.deviceIdx, delta, len(deviceTypes))
			return nil
		case 4:
			form.typeIdx = cycleIndex(form.typeIdx, delta, len(maintenanceTypes))
			return nil
		}
	}
	var cmd tea.Cmd
	switch form.focus {
	case 0:
		form.description, cmd = form.description.Update(msg)
	case 1:
		form.technician, cmd = form.technician.Update(msg)
	case 2:
		form.date, cmd = form.date.Update(msg)
	}
	return cmd
}

func cycleIndex(idx, delta, n int) int {
	return ((idx+delta)%n + n) % n
}

// createMaintenanceRecord validates the form, appends the record locally and
// dispatches the create request.
func (a *App) createMaintenanceRecord() tea.Cmd {
	st := &a.maintenance
	description := strings.TrimSpace(st.form.description.Value())
	if description == "" {
		return a.notify(BannerWarning, "description is required")
	}
	date := strings.TrimSpace(st.form.date.Value())
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return a.notify(BannerWarning, "scheduled date must be YYYY-MM-DD")
		}
	}

	record := api.MaintenanceRecord{
		ID:              fallback.NextRecordID(st.page.Records),
		DeviceType:      deviceTypes[st.form.deviceIdx],
		MaintenanceType: maintenanceTypes[st.form.typeIdx],
		Description:     description,
		Status:          api.StatusScheduled,
		ScheduledDate:   date,
		Technician:      strings.TrimSpace(st.form.technician.Value()),
		CreatedAt:       time.Now().Format(time.RFC3339),
	}
	st.page.Records = append(st.page.Records, record)
	st.page.Pagination.Total++
	st.stats = fallback.MaintenanceStatistics(st.page.Records)
	st.cursor = len(st.page.Records) - 1
	st.showForm = false
	a.logInfo("maintenance record %d created (%s/%s)", record.ID, record.DeviceType, record.MaintenanceType)

	backend := a.backend
	timeout := a.timeout
	return tea.Batch(
		a.notify(BannerSuccess, "maintenance record created"),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := backend.CreateMaintenanceRecord(ctx, record)
			return mutationDoneMsg{what: "create maintenance record", err: err}
		},
	)
}

// advanceMaintenanceStatus moves the selected record one step through the
// status cycle.
func (a *App) advanceMaintenanceStatus() tea.Cmd {
	st := &a.maintenance
	if len(st.page.Records) == 0 {
		return nil
	}
	record := &st.page.Records[st.cursor]
	next := statusCycle[0]
	for i, status := range statusCycle {
		if record.Status == status {
			next = statusCycle[(i+1)%len(statusCycle)]
			break
		}
	}
	record.Status = next
	if next == api.StatusCompleted {
		record.CompletedDate = time.Now().Format("2006-01-02")
	} else {
		record.CompletedDate = ""
	}
	st.stats = fallback.MaintenanceStatistics(st.page.Records)
	a.logInfo("maintenance record %d -> %s", record.ID, next)

	backend := a.backend
	timeout := a.timeout
	id := record.ID
	return tea.Batch(
		a.notify(BannerSuccess, fmt.Sprintf("record %d marked %s", id, next)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := backend.UpdateMaintenanceStatus(ctx, id, next, "")
			return mutationDoneMsg{what: "update maintenance status", err: err}
		},
	)
}

// deleteMaintenanceRecord drops the selected record locally and dispatches
// the delete request.
func (a *App) deleteMaintenanceRecord() tea.Cmd {
	st := &a.maintenance
	if len(st.page.Records) == 0 {
		return nil
	}
	record := st.page.Records[st.cursor]
	st.page.Records = append(st.page.Records[:st.cursor], st.page.Records[st.cursor+1:]...)
	st.page.Pagination.Total--
	if st.cursor >= len(st.page.Records) {
		st.cursor = maxInt(0, len(st.page.Records)-1)
	}
	st.stats = fallback.MaintenanceStatistics(st.page.Records)
	a.logInfo("maintenance record %d deleted", record.ID)

	backend := a.backend
	timeout := a.timeout
	return tea.Batch(
		a.notify(BannerSuccess, fmt.Sprintf("record %d deleted", record.ID)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			err := backend.DeleteMaintenanceRecord(ctx, record.ID)
			return mutationDoneMsg{what: "delete maintenance record", err: err}
		},
	)
}

// exportMaintenance writes the current listing to a CSV file under the
// export directory.
func (a *App) exportMaintenance() tea.Cmd {
	records := append([]api.MaintenanceRecord(nil), a.maintenance.page.Records...)
	dir := a.exportDir
	return func() tea.Msg {
		path, err := export.MaintenanceCSV(dir, records)
		return exportDoneMsg{path: path, err: err}
	}
}

func (a *App) renderMaintenance(width int) string {
	st := a.maintenance
	var sections []string

	title := "Maintenance Records"
	if st.statusFilter != "" {
		title += " · " + st.statusFilter
	}
	sections = append(sections, panelTitleStyle.Render(title))
	if len(st.page.Records) == 0 {
		sections = append(sections, dimStyle.Render("no records"))
	}
	for i, record := range st.page.Records {
		marker := "  "
		if i == st.cursor {
			marker = "> "
		}
		line := fmt.Sprintf("%s#%-3d %-8s %-11s %-11s %s",
			marker, record.ID, record.DeviceType, record.MaintenanceType, record.Status, record.Description)
		if i == st.cursor {
			line = selectedRowStyle.Render(line)
		}
		sections = append(sections, line)
	}

	if st.showForm {
		form := st.form
		enumLine := func(label string, values []string, idx, focus int) string {
			marker := "  "
			if form.focus == focus {
				marker = "> "
			}
			return fmt.Sprintf("%s%s ◂ %s ▸", marker, label, values[idx])
		}
		sections = append(sections, "", panelTitleStyle.Render("New Record"),
			"description: "+form.description.View(),
			"technician:  "+form.technician.View(),
			"scheduled:   "+form.date.View(),
			enumLine("device:     ", deviceTypes, form.deviceIdx, 3),
			enumLine("type:       ", maintenanceTypes, form.typeIdx, 4),
			dimStyle.Render("tab next field · ◂▸ cycle · enter create · esc cancel"))
	} else {
		stats := st.stats
		sections = append(sections, "", panelTitleStyle.Render("Statistics"),
			fmt.Sprintf("total %d · overdue %d · upcoming %d · spend %.0f",
				stats.Total, stats.OverdueCount, stats.UpcomingCount, stats.CostStatistics.TotalCost),
			dimStyle.Render("n new · s cycle status · f filter · d delete · e export csv"))
	}

	sections = append(sections, "", dimStyle.Render(a.originLine(st.synthetic, st.lastUpdated)))
	return lipgloss.NewStyle().Width(maxInt(20, width)).Render(strings.Join(sections, "\n"))
}
