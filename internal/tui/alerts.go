package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/fallback"
)

// alert is one threshold violation derived from an environment reading.
type alert struct {
	SensorID string
	Metric   string
	Value    float64
	Band     api.ThresholdRange
	When     string
}

// alertsState carries the alerts page. Alerts are derived locally from the
// latest readings against the configured bands, never fetched as such.
type alertsState struct {
	alerts      []alert
	overdue     []api.MaintenanceRecord
	upcoming    []api.MaintenanceRecord
	synthetic   bool
	lastUpdated time.Time
}

type alertsDataMsg struct {
	readings   []api.EnvironmentReading
	thresholds api.EnvironmentThresholds
	overdue    []api.MaintenanceRecord
	upcoming   []api.MaintenanceRecord
	synthetic  bool
	err        error
}

// refresh recomputes the alert list from a fresh set of readings.
func (st *alertsState) refresh(readings []api.EnvironmentReading, thresholds api.EnvironmentThresholds, synthetic bool) {
	st.alerts = deriveAlerts(readings, thresholds)
	st.synthetic = synthetic
	st.lastUpdated = time.Now()
}

func deriveAlerts(readings []api.EnvironmentReading, thresholds api.EnvironmentThresholds) []alert {
	var out []alert
	check := func(reading api.EnvironmentReading, metric string, value float64, band api.ThresholdRange) {
		if value < band.Min || value > band.Max {
			out = append(out, alert{
				SensorID: reading.SensorID,
				Metric:   metric,
				Value:    value,
				Band:     band,
				When:     reading.Timestamp,
			})
		}
	}
	for _, reading := range readings {
		check(reading, "temperature", reading.Temperature, thresholds.Temperature)
		check(reading, "humidity", reading.Humidity, thresholds.Humidity)
		check(reading, "light", reading.LightIntensity, thresholds.LightIntensity)
	}
	return out
}

func seedAlerts() alertsState {
	st := alertsState{
		overdue:  fallback.OverdueMaintenance(),
		upcoming: fallback.UpcomingMaintenance(),
	}
	st.refresh(fallback.Environment(), fallback.Thresholds(), true)
	return st
}

func (a *App) loadAlerts() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	return func() tea.Msg {
		readings, synthReadings, err := fetchOr(timeout, backend.LatestEnvironment, fallback.Environment)
		thresholds, synthThresholds, terr := fetchOr(timeout, backend.EnvironmentThresholds, fallback.Thresholds)
		overdue, _, oerr := fetchOr(timeout, backend.OverdueMaintenance, fallback.OverdueMaintenance)
		upcoming, _, uerr := fetchOr(timeout, func(ctx context.Context) ([]api.MaintenanceRecord, error) {
			return backend.UpcomingMaintenance(ctx, 7)
		}, fallback.UpcomingMaintenance)
		return alertsDataMsg{
			readings:   readings,
			thresholds: thresholds,
			overdue:    overdue,
			upcoming:   upcoming,
			synthetic:  synthReadings || synthThresholds,
			err:        firstError(err, terr, oerr, uerr),
		}
	}
}

func (a *App) applyAlertsData(msg alertsDataMsg) {
	a.alerts.refresh(msg.readings, msg.thresholds, msg.synthetic)
	a.alerts.overdue = msg.overdue
	a.alerts.upcoming = msg.upcoming
	if msg.err != nil {
		a.logWarn("alerts: %s (%v)", fallback.Describe("environment readings"), msg.err)
	}
}

func (a *App) renderAlerts(width int) string {
	st := a.alerts
	var sections []string
	sections = append(sections, panelTitleStyle.Render("Threshold Violations"))
	if len(st.alerts) == 0 {
		sections = append(sections, badgeOKStyle.Render("all readings within configured bands"))
	}
	for _, al := range st.alerts {
		sections = append(sections, bannerWarningStyle.Render(
			fmt.Sprintf("%s %s %.1f outside %.0f-%.0f", al.SensorID, al.Metric, al.Value, al.Band.Min, al.Band.Max)))
	}

	sections = append(sections, "", panelTitleStyle.Render("Maintenance Due"))
	if len(st.overdue) == 0 && len(st.upcoming) == 0 {
		sections = append(sections, dimStyle.Render("nothing overdue or scheduled this week"))
	}
	for _, record := range st.overdue {
		sections = append(sections, badgeDownStyle.Render(
			fmt.Sprintf("overdue #%d %s: %s (was due %s)", record.ID, record.DeviceType, record.Description, record.ScheduledDate)))
	}
	for _, record := range st.upcoming {
		sections = append(sections, fmt.Sprintf("due %s · #%d %s: %s",
			record.ScheduledDate, record.ID, record.DeviceType, record.Description))
	}

	sections = append(sections, "", dimStyle.Render(a.originLine(st.synthetic, st.lastUpdated)))
	return lipgloss.NewStyle().Width(maxInt(20, width)).Render(strings.Join(sections, "\n"))
}
