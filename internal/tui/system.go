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

// systemState carries the system page: backend identity plus host metrics.
type systemState struct {
	info        api.SystemInfo
	perf        api.SystemPerformance
	synthetic   bool
	lastUpdated time.Time
}

type systemDataMsg struct {
	info      api.SystemInfo
	perf      api.SystemPerformance
	synthetic bool
	err       error
}

func seedSystem() systemState {
	return systemState{
		info:        fallback.SystemInfo(),
		perf:        fallback.Performance(),
		synthetic:   true,
		lastUpdated: time.Now(),
	}
}

func (a *App) loadSystem() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	return func() tea.Msg {
		info, synthInfo, err := fetchOr(timeout, backend.SystemInfo, fallback.SystemInfo)
		perf, synthPerf, perr := fetchOr(timeout, backend.SystemPerformance, fallback.Performance)
		return systemDataMsg{
			info:      info,
			perf:      perf,
			synthetic: synthInfo || synthPerf,
			err:       firstError(err, perr),
		}
	}
}

func (a *App) applySystemData(msg systemDataMsg) {
	a.system.info = msg.info
	a.system.perf = msg.perf
	a.system.synthetic = msg.synthetic
	a.system.lastUpdated = time.Now()
	if msg.err != nil {
		a.logWarn("system: %s (%v)", fallback.Describe("host metrics"), msg.err)
	}
}

func (a *App) renderSystem(width int) string {
	st := a.system
	var sections []string

	sections = append(sections, panelTitleStyle.Render(st.info.Name),
		fmt.Sprintf("version %s", st.info.Version))
	if st.info.Description != "" {
		sections = append(sections, dimStyle.Render(st.info.Description))
	}

	perf := st.perf
	sections = append(sections, "", panelTitleStyle.Render("Host Performance"),
		fmt.Sprintf("CPU     %5.1f%%  load %.2f", perf.CPUUsage, perf.LoadAverage),
		fmt.Sprintf("memory  %5.1f%%  %.1f / %.1f GB", perf.MemoryUsage, perf.MemoryUsed, perf.MemoryTotal),
		fmt.Sprintf("disk    %5.1f%%  %.0f / %.0f GB", perf.DiskUsage, perf.DiskUsed, perf.DiskTotal),
		fmt.Sprintf("network %d connections · rx %d · tx %d", perf.NetworkConnections, perf.NetworkRxBytes, perf.NetworkTxBytes),
		fmt.Sprintf("processes %d · database %s (%d connections)", perf.ProcessCount, perf.DBStatus, perf.DBConnections))

	sections = append(sections, "", dimStyle.Render(a.originLine(st.synthetic, st.lastUpdated)))
	return lipgloss.NewStyle().Width(maxInt(20, width)).Render(strings.Join(sections, "\n"))
}
