package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/fallback"
)

// dashboardState caches the overview page data. It is seeded with synthetic
// values at startup so the first frame renders fully populated.
type dashboardState struct {
	readings    []api.EnvironmentReading
	thresholds  api.EnvironmentThresholds
	status      api.CollectionStatus
	perf        api.SystemPerformance
	synthetic   bool
	lastUpdated time.Time
}

type dashboardDataMsg struct {
	readings   []api.EnvironmentReading
	thresholds api.EnvironmentThresholds
	status     api.CollectionStatus
	perf       api.SystemPerformance
	synthetic  bool
	err        error
}

func seedDashboard() dashboardState {
	cfg := fallback.CollectionConfig()
	return dashboardState{
		readings:    fallback.Environment(),
		thresholds:  fallback.Thresholds(),
		status:      fallback.CollectionStatus(cfg),
		perf:        fallback.Performance(),
		synthetic:   true,
		lastUpdated: time.Now(),
	}
}

func (a *App) loadDashboard() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	return func() tea.Msg {
		readings, synthReadings, err := fetchOr(timeout, backend.LatestEnvironment, fallback.Environment)
		thresholds, synthThresholds, terr := fetchOr(timeout, backend.EnvironmentThresholds, fallback.Thresholds)
		status, synthStatus, serr := fetchOr(timeout, backend.CollectionStatus, func() api.CollectionStatus {
			return fallback.CollectionStatus(fallback.CollectionConfig())
		})
		perf, synthPerf, perr := fetchOr(timeout, backend.SystemPerformance, fallback.Performance)
		return dashboardDataMsg{
			readings:   readings,
			thresholds: thresholds,
			status:     status,
			perf:       perf,
			synthetic:  synthReadings || synthThresholds || synthStatus || synthPerf,
			err:        firstError(err, terr, serr, perr),
		}
	}
}

func (a *App) applyDashboardData(msg dashboardDataMsg) {
	a.dashboard.readings = msg.readings
	a.dashboard.thresholds = msg.thresholds
	a.dashboard.status = msg.status
	a.dashboard.perf = msg.perf
	a.dashboard.synthetic = msg.synthetic
	a.dashboard.lastUpdated = time.Now()
	a.setCollectionBadge(msg.status)
	if msg.err != nil {
		a.logWarn("dashboard: %s (%v)", fallback.Describe("overview data"), msg.err)
	}
	// Alerts derive from the same readings, so keep that page in step.
	a.alerts.refresh(msg.readings, msg.thresholds, msg.synthetic)
}

func (a *App) renderDashboard(width int) string {
	st := a.dashboard
	var sections []string

	sections = append(sections, panelTitleStyle.Render("Environment"))
	for _, reading := range st.readings {
		sections = append(sections, renderReading(reading, st.thresholds))
	}

	runLine := "Collection: running"
	if st.status.IsPaused {
		runLine = "Collection: paused"
	} else if !st.status.IsRunning {
		runLine = "Collection: stopped"
	}
	runLine += fmt.Sprintf(" · sensor every %ds · rfid every %ds",
		st.status.CurrentConfig.SensorInterval, st.status.CurrentConfig.RFIDInterval)
	sections = append(sections, "", panelTitleStyle.Render("Collection"), runLine)

	sections = append(sections, "", panelTitleStyle.Render("Host"),
		fmt.Sprintf("CPU %.1f%% · memory %.1f%% · disk %.1f%%",
			st.perf.CPUUsage, st.perf.MemoryUsage, st.perf.DiskUsage))

	sections = append(sections, "", dimStyle.Render(a.originLine(st.synthetic, st.lastUpdated)))
	return lipgloss.NewStyle().Width(maxInt(20, width)).Render(strings.Join(sections, "\n"))
}

func renderReading(reading api.EnvironmentReading, thresholds api.EnvironmentThresholds) string {
	mark := func(value float64, band api.ThresholdRange) string {
		if value < band.Min || value > band.Max {
			return badgeWarnStyle.Render("!")
		}
		return " "
	}
	return fmt.Sprintf("%-10s %s%5.1f°C  %s%5.1f%%RH  %s%6.1f lux",
		reading.SensorID,
		mark(reading.Temperature, thresholds.Temperature), reading.Temperature,
		mark(reading.Humidity, thresholds.Humidity), reading.Humidity,
		mark(reading.LightIntensity, thresholds.LightIntensity), reading.LightIntensity,
	)
}

// originLine reports whether a page shows live or synthetic data.
func (a *App) originLine(synthetic bool, updated time.Time) string {
	origin := "live"
	if synthetic {
		origin = "synthetic (backend unavailable)"
	}
	if updated.IsZero() {
		return "data: " + origin
	}
	return fmt.Sprintf("data: %s · updated %s", origin, updated.Format("15:04:05"))
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
