package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/fallback"
)

// Interval bounds accepted by the collection service.
const (
	sensorIntervalMin = 1
	sensorIntervalMax = 300
	rfidIntervalMin   = 1
	rfidIntervalMax   = 60
)

const updatedByConsole = "vaultmon"

// collectionState carries the collection page: the active configuration, the
// live status, and the interval edit form.
type collectionState struct {
	cfg         api.CollectionConfig
	status      api.CollectionStatus
	impact      api.PerformanceImpact
	history     []api.CollectionConfig
	showHistory bool
	sensorInput textinput.Model
	rfidInput   textinput.Model
	editing     bool
	focusIndex  int
	synthetic   bool
	lastUpdated time.Time
}

type collectionDataMsg struct {
	cfg       api.CollectionConfig
	status    api.CollectionStatus
	history   []api.CollectionConfig
	synthetic bool
	err       error
}

// collectionStatusMsg is the lighter periodic refresh: status only, sourced
// from the live feed when connected and from polling otherwise.
type collectionStatusMsg struct {
	status    api.CollectionStatus
	fromFeed  bool
	synthetic bool
	err       error
}

func seedCollection() collectionState {
	cfg := fallback.CollectionConfig()
	sensor := textinput.New()
	sensor.Placeholder = strconv.Itoa(cfg.SensorInterval)
	sensor.CharLimit = 3
	sensor.Width = 6
	rfid := textinput.New()
	rfid.Placeholder = strconv.Itoa(cfg.RFIDInterval)
	rfid.CharLimit = 3
	rfid.Width = 6
	return collectionState{
		cfg:         cfg,
		status:      fallback.CollectionStatus(cfg),
		history:     fallback.ConfigHistory(),
		impact:      fallback.EstimateImpact(cfg.SensorInterval, cfg.RFIDInterval),
		sensorInput: sensor,
		rfidInput:   rfid,
		synthetic:   true,
		lastUpdated: time.Now(),
	}
}

func (a *App) loadCollection() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	return func() tea.Msg {
		cfg, synthCfg, err := fetchOr(timeout, backend.CollectionConfig, fallback.CollectionConfig)
		status, synthStatus, serr := fetchOr(timeout, backend.CollectionStatus, func() api.CollectionStatus {
			return fallback.CollectionStatus(cfg)
		})
		history, _, herr := fetchOr(timeout, func(ctx context.Context) ([]api.CollectionConfig, error) {
			return backend.ConfigHistory(ctx, 5)
		}, fallback.ConfigHistory)
		return collectionDataMsg{
			cfg:       cfg,
			status:    status,
			history:   history,
			synthetic: synthCfg || synthStatus,
			err:       firstError(err, serr, herr),
		}
	}
}

// pollCollectionStatus is the scheduled status refresh. When the stream feed
// holds a frame it is used as-is; otherwise the endpoint is polled.
func (a *App) pollCollectionStatus() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	feed := a.feed
	return func() tea.Msg {
		if feed != nil && feed.Connected() {
			if status, ok := feed.Latest(); ok {
				return collectionStatusMsg{status: status, fromFeed: true}
			}
		}
		status, synthetic, err := fetchOr(timeout, backend.CollectionStatus, func() api.CollectionStatus {
			return fallback.CollectionStatus(fallback.CollectionConfig())
		})
		return collectionStatusMsg{status: status, synthetic: synthetic, err: err}
	}
}

func (a *App) applyCollectionData(msg collectionDataMsg) {
	a.collection.cfg = msg.cfg
	a.collection.status = msg.status
	a.collection.history = msg.history
	a.collection.impact = fallback.EstimateImpact(msg.cfg.SensorInterval, msg.cfg.RFIDInterval)
	a.collection.synthetic = msg.synthetic
	a.collection.lastUpdated = time.Now()
	a.setCollectionBadge(msg.status)
	if msg.err != nil {
		a.logWarn("collection: %s (%v)", fallback.Describe("collection settings"), msg.err)
	}
}

func (a *App) applyCollectionStatus(msg collectionStatusMsg) {
	a.collection.status = msg.status
	if !msg.fromFeed {
		a.collection.synthetic = msg.synthetic
	}
	a.collection.lastUpdated = time.Now()
	a.setCollectionBadge(msg.status)
	if msg.err != nil {
		a.logWarn("collection status poll failed: %v", msg.err)
	}
}

// updateCollectionKeys handles keys while the collection page is active.
// Returns the resulting command and whether the key was consumed.
func (a *App) updateCollectionKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	st := &a.collection
	if st.editing {
		switch msg.String() {
		case "esc":
			st.editing = false
			st.sensorInput.Blur()
			st.rfidInput.Blur()
			return nil, true
		case "tab", "shift+tab":
			st.focusIndex = (st.focusIndex + 1) % 2
			if st.focusIndex == 0 {
				st.sensorInput.Focus()
				st.rfidInput.Blur()
			} else {
				st.rfidInput.Focus()
				st.sensorInput.Blur()
			}
			return nil, true
		case "enter":
			return a.saveCollectionConfig(), true
		}
		var cmd tea.Cmd
		if st.focusIndex == 0 {
			st.sensorInput, cmd = st.sensorInput.Update(msg)
		} else {
			st.rfidInput, cmd = st.rfidInput.Update(msg)
		}
		return cmd, true
	}

	switch msg.String() {
	case "e":
		st.editing = true
		st.focusIndex = 0
		st.sensorInput.SetValue(strconv.Itoa(st.cfg.SensorInterval))
		st.rfidInput.SetValue(strconv.Itoa(st.cfg.RFIDInterval))
		st.sensorInput.Focus()
		st.rfidInput.Blur()
		return nil, true
	case "p":
		return a.toggleCollection(), true
	case "R":
		return a.resetCollectionConfig(), true
	case "H":
		st.showHistory = !st.showHistory
		return nil, true
	}
	return nil, false
}

// saveCollectionConfig validates the form and, when the values are within
// bounds, applies them locally and dispatches the write. Invalid input is
// rejected before any request is made.
func (a *App) saveCollectionConfig() tea.Cmd {
	st := &a.collection
	sensor, err := strconv.Atoi(strings.TrimSpace(st.sensorInput.Value()))
	if err != nil || sensor < sensorIntervalMin || sensor > sensorIntervalMax {
		return a.notify(BannerWarning, fmt.Sprintf("sensor interval must be %d-%d seconds", sensorIntervalMin, sensorIntervalMax))
	}
	rfid, err := strconv.Atoi(strings.TrimSpace(st.rfidInput.Value()))
	if err != nil || rfid < rfidIntervalMin || rfid > rfidIntervalMax {
		return a.notify(BannerWarning, fmt.Sprintf("rfid interval must be %d-%d seconds", rfidIntervalMin, rfidIntervalMax))
	}

	st.cfg.SensorInterval = sensor
	st.cfg.RFIDInterval = rfid
	st.cfg.UpdatedBy = updatedByConsole
	st.status.CurrentConfig.SensorInterval = sensor
	st.status.CurrentConfig.RFIDInterval = rfid
	st.impact = fallback.EstimateImpact(sensor, rfid)
	st.editing = false
	st.sensorInput.Blur()
	st.rfidInput.Blur()
	a.logInfo("collection intervals set to sensor=%ds rfid=%ds", sensor, rfid)

	backend := a.backend
	timeout := a.timeout
	update := api.CollectionConfigUpdate{
		SensorInterval: &sensor,
		RFIDInterval:   &rfid,
		UpdatedBy:      updatedByConsole,
	}
	return tea.Batch(
		a.notify(BannerSuccess, fmt.Sprintf("intervals updated: sensor %ds, rfid %ds", sensor, rfid)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := backend.SaveCollectionConfig(ctx, update)
			return mutationDoneMsg{what: "save collection config", err: err}
		},
	)
}

// toggleCollection flips the paused flag locally and dispatches the control
// request.
func (a *App) toggleCollection() tea.Cmd {
	st := &a.collection
	action := "pause"
	if st.status.IsPaused {
		action = "resume"
	}
	st.status.IsPaused = action == "pause"
	st.cfg.IsPaused = st.status.IsPaused
	a.setCollectionBadge(st.status)
	a.logInfo("collection %sd", action)

	backend := a.backend
	timeout := a.timeout
	return tea.Batch(
		a.notify(BannerSuccess, "collection "+action+"d"),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := backend.ControlCollection(ctx, action, updatedByConsole)
			return mutationDoneMsg{what: action + " collection", err: err}
		},
	)
}

// resetCollectionConfig restores the default intervals.
func (a *App) resetCollectionConfig() tea.Cmd {
	st := &a.collection
	defaults := fallback.CollectionConfig()
	st.cfg.SensorInterval = defaults.SensorInterval
	st.cfg.RFIDInterval = defaults.RFIDInterval
	st.status.CurrentConfig.SensorInterval = defaults.SensorInterval
	st.status.CurrentConfig.RFIDInterval = defaults.RFIDInterval
	st.impact = fallback.EstimateImpact(defaults.SensorInterval, defaults.RFIDInterval)
	a.logInfo("collection intervals reset to defaults")

	backend := a.backend
	timeout := a.timeout
	return tea.Batch(
		a.notify(BannerSuccess, fmt.Sprintf("intervals reset to sensor %ds, rfid %ds", defaults.SensorInterval, defaults.RFIDInterval)),
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			_, err := backend.ResetCollectionConfig(ctx, updatedByConsole)
			return mutationDoneMsg{what: "reset collection config", err: err}
		},
	)
}

func (a *App) renderCollection(width int) string {
	st := a.collection
	var sections []string

	run := "running"
	if st.status.IsPaused {
		run = "paused"
	} else if !st.status.IsRunning {
		run = "stopped"
	}
	sections = append(sections, panelTitleStyle.Render("Collection Control"),
		fmt.Sprintf("state: %s · collector CPU %.1f%% · memory %.1f MB",
			run, st.status.Performance.CPUUsage, st.status.Performance.MemoryUsedMB))
	if st.status.LastCollection.Sensor != "" {
		sections = append(sections, dimStyle.Render(
			"last sensor sweep "+st.status.LastCollection.Sensor+" · last rfid sweep "+st.status.LastCollection.RFID))
	}

	sections = append(sections, "", panelTitleStyle.Render("Intervals"))
	if st.editing {
		sections = append(sections,
			"sensor (s): "+st.sensorInput.View(),
			"rfid   (s): "+st.rfidInput.View(),
			dimStyle.Render("tab switch · enter save · esc cancel"))
	} else {
		sections = append(sections,
			fmt.Sprintf("sensor every %ds · rfid every %ds", st.cfg.SensorInterval, st.cfg.RFIDInterval),
			dimStyle.Render("e edit · p pause/resume · R reset · H history"))
	}

	if st.showHistory {
		sections = append(sections, "", panelTitleStyle.Render("Config History"))
		if len(st.history) == 0 {
			sections = append(sections, dimStyle.Render("no recorded changes"))
		}
		for _, entry := range st.history {
			by := entry.UpdatedBy
			if by == "" {
				by = "unknown"
			}
			sections = append(sections, fmt.Sprintf("sensor %3ds · rfid %3ds · by %s",
				entry.SensorInterval, entry.RFIDInterval, by))
		}
	}

	impact := st.impact
	sections = append(sections, "", panelTitleStyle.Render("Estimated Impact"),
		fmt.Sprintf("level %s · %.1f samples/min · ~%.1f%% CPU · ~%.1f MB",
			impact.PerformanceLevel, impact.TotalLoad, impact.EstimatedCPUUsage, impact.EstimatedMemoryMB))
	if impact.Warning != "" {
		sections = append(sections, bannerWarningStyle.Render(impact.Warning))
	}

	sections = append(sections, "", dimStyle.Render(a.originLine(st.synthetic, st.lastUpdated)))
	return lipgloss.NewStyle().Width(maxInt(20, width)).Render(strings.Join(sections, "\n"))
}
