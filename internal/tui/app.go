package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/config"
	"github.com/kweiss/vaultmon/internal/logbook"
)

// Background task names used with the refresh scheduler.
const (
	taskDashboard        = "dashboard"
	taskCollectionStatus = "collection-status"
	taskHealth           = "health"
)

const logPanelLines = 5

type healthProbeMsg struct {
	health api.Health
	err    error
}

// mutationDoneMsg reports the async completion of a write that was already
// applied locally.
type mutationDoneMsg struct {
	what string
	err  error
}

type exportDoneMsg struct {
	path string
	err  error
}

// App is the bubbletea model for the whole console.
type App struct {
	cfg     *config.Config
	log     *logbook.Logbook
	backend Backend
	feed    StatusFeed

	registry  *pageRegistry
	nav       navState
	scheduler *refreshScheduler
	presenter *presenter
	navMenu   list.Model

	timeout   time.Duration
	exportDir string

	sidebarCollapsed bool
	backendUp        bool
	width            int
	height           int
	quitting         bool

	dashboard   dashboardState
	collection  collectionState
	maintenance maintenanceState
	alerts      alertsState
	system      systemState
}

// Option customizes App construction; tests use these to inject fakes.
type Option func(*App)

// WithBackend overrides the REST client.
func WithBackend(b Backend) Option {
	return func(a *App) { a.backend = b }
}

// WithStatusFeed overrides (or, with nil, disables) the live status feed.
func WithStatusFeed(f StatusFeed) Option {
	return func(a *App) { a.feed = f }
}

// WithExportDir overrides where CSV exports land.
func WithExportDir(dir string) Option {
	return func(a *App) { a.exportDir = dir }
}

// NewApp assembles the console model. Every page is seeded with synthetic
// data so the first frame renders complete.
func NewApp(cfg *config.Config, log *logbook.Logbook, opts ...Option) *App {
	a := &App{
		cfg:              cfg,
		log:              log,
		registry:         newPageRegistry(),
		scheduler:        newRefreshScheduler(),
		presenter:        newPresenter(),
		timeout:          cfg.RequestTimeout(),
		exportDir:        filepath.Join(cfg.HomeDir, "exports"),
		sidebarCollapsed: cfg.SidebarCollapsed(),
		dashboard:        seedDashboard(),
		collection:       seedCollection(),
		maintenance:      seedMaintenance(),
		alerts:           seedAlerts(),
		system:           seedSystem(),
	}
	a.nav.active = defaultPage
	a.backend = api.NewClient(cfg.BaseURL(), cfg.RequestTimeout())

	for _, opt := range opts {
		opt(a)
	}

	a.navMenu = newNavMenu(a.registry)
	a.presenter.SetBadge(badgeBackend, "backend ?", badgeDimStyle)
	a.setCollectionBadge(a.collection.status)
	a.presenter.SetBadge(badgeFeed, "feed off", badgeDimStyle)
	return a
}

type navItem struct {
	entry pageEntry
}

func (i navItem) Title() string       { return i.entry.Hotkey + " · " + i.entry.Title }
func (i navItem) Description() string { return i.entry.Desc }
func (i navItem) FilterValue() string { return i.entry.Title }

func newNavMenu(registry *pageRegistry) list.Model {
	entries := registry.All()
	items := make([]list.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, navItem{entry: entry})
	}
	delegate := list.NewDefaultDelegate()
	menu := list.New(items, delegate, 28, 18)
	menu.Title = "vaultmon"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)
	menu.DisableQuitKeybindings()
	return menu
}

// Init arms the background schedule, probes the backend once, starts the
// live feed and loads the landing page.
func (a *App) Init() tea.Cmd {
	if a.feed != nil {
		a.feed.Start()
	}
	cmds := []tea.Cmd{
		a.navigate(defaultPage),
		a.probeHealth(),
		a.scheduler.Schedule(taskDashboard, a.cfg.DashboardPoll(),
			func() bool { return a.nav.active == PageDashboard }, a.loadDashboard),
		a.scheduler.Schedule(taskCollectionStatus, a.cfg.CollectionStatusPoll(),
			func() bool { return a.nav.active == PageCollection }, a.pollCollectionStatus),
		a.scheduler.Schedule(taskHealth, a.cfg.HealthPoll(), nil, a.probeHealth),
	}
	return tea.Batch(cmds...)
}

// navigate makes id the active page and kicks off its loader. An unknown id
// is ignored apart from a logbook entry. The active page is switched
// synchronously; loader completions carry data only and never change which
// page is shown.
func (a *App) navigate(id PageID) tea.Cmd {
	entry, ok := a.registry.Lookup(id)
	if !ok {
		a.logWarn("navigate: unknown page %q", id)
		return nil
	}
	a.nav.active = id
	for i, item := range a.navMenu.Items() {
		if nav, ok := item.(navItem); ok && nav.entry.ID == id {
			a.navMenu.Select(i)
			break
		}
	}
	return entry.Load(a)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.navMenu.SetSize(28, maxInt(6, msg.Height-8))
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case taskTickMsg:
		action, next := a.scheduler.HandleTick(msg)
		return a, tea.Batch(action, next)

	case bannerExpireMsg:
		a.presenter.HandleExpire(msg)
		return a, nil

	case dashboardDataMsg:
		a.applyDashboardData(msg)
		return a, nil
	case collectionDataMsg:
		a.applyCollectionData(msg)
		return a, nil
	case collectionStatusMsg:
		a.applyCollectionStatus(msg)
		a.updateFeedBadge()
		return a, nil
	case maintenanceDataMsg:
		a.applyMaintenanceData(msg)
		return a, nil
	case alertsDataMsg:
		a.applyAlertsData(msg)
		return a, nil
	case systemDataMsg:
		a.applySystemData(msg)
		return a, nil

	case healthProbeMsg:
		a.applyHealthProbe(msg)
		return a, nil

	case mutationDoneMsg:
		if msg.err != nil {
			a.logError("%s: backend write failed: %v", msg.what, msg.err)
			return a, a.notify(BannerWarning,
				fmt.Sprintf("backend unreachable, %s saved locally only", msg.what))
		}
		a.logInfo("%s: confirmed by backend", msg.what)
		return a, nil

	case exportDoneMsg:
		if msg.err != nil {
			a.logError("export failed: %v", msg.err)
			return a, a.notify(BannerError, "csv export failed: "+msg.err.Error())
		}
		a.logInfo("exported maintenance records to %s", msg.path)
		return a, a.notify(BannerSuccess, "exported to "+msg.path)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.teardown()
	}

	// Text-entry modes swallow everything except ctrl+c.
	if a.nav.active == PageCollection && a.collection.editing {
		cmd, _ := a.updateCollectionKeys(msg)
		return a, cmd
	}
	if a.nav.active == PageMaintenance && a.maintenance.showForm {
		return a, a.updateMaintenanceForm(msg)
	}

	switch msg.String() {
	case "q":
		return a, a.teardown()
	case "b":
		a.sidebarCollapsed = !a.sidebarCollapsed
		if err := a.cfg.SetSidebarCollapsed(a.sidebarCollapsed); err != nil {
			a.logError("persist sidebar preference: %v", err)
		}
		return a, nil
	case "r":
		if entry, ok := a.registry.Lookup(a.nav.active); ok {
			return a, entry.Load(a)
		}
		return a, nil
	case "x":
		a.presenter.DismissOldest()
		return a, nil
	case "left", "h":
		return a, a.navigateRelative(-1)
	case "right", "l":
		return a, a.navigateRelative(1)
	}

	if entry, ok := a.registry.ByHotkey(msg.String()); ok {
		return a, a.navigate(entry.ID)
	}

	switch a.nav.active {
	case PageCollection:
		if cmd, consumed := a.updateCollectionKeys(msg); consumed {
			return a, cmd
		}
	case PageMaintenance:
		if cmd, consumed := a.updateMaintenanceKeys(msg); consumed {
			return a, cmd
		}
	}
	return a, nil
}

// navigateRelative moves delta steps through the page order.
func (a *App) navigateRelative(delta int) tea.Cmd {
	entries := a.registry.All()
	for i, entry := range entries {
		if entry.ID == a.nav.active {
			next := entries[cycleIndex(i, delta, len(entries))]
			return a.navigate(next.ID)
		}
	}
	return nil
}

// teardown cancels all background work and stops the feed before quitting.
func (a *App) teardown() tea.Cmd {
	a.quitting = true
	a.scheduler.CancelAll()
	if a.feed != nil {
		a.feed.Stop()
	}
	a.logInfo("console shutting down")
	return tea.Quit
}

func (a *App) probeHealth() tea.Cmd {
	backend := a.backend
	timeout := a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		health, err := backend.Health(ctx)
		return healthProbeMsg{health: health, err: err}
	}
}

func (a *App) applyHealthProbe(msg healthProbeMsg) {
	up := msg.err == nil && msg.health.Healthy()
	switch {
	case up && !a.backendUp:
		a.logInfo("backend reachable (%s)", a.cfg.BaseURL())
	case !up && a.backendUp:
		a.logWarn("backend unreachable: %v", msg.err)
	}
	a.backendUp = up
	if up {
		a.presenter.SetBadge(badgeBackend, "backend up", badgeOKStyle)
	} else {
		a.presenter.SetBadge(badgeBackend, "backend down", badgeDownStyle)
	}
	a.updateFeedBadge()
}

func (a *App) updateFeedBadge() {
	if a.feed != nil && a.feed.Connected() {
		a.presenter.SetBadge(badgeFeed, "feed live", badgeOKStyle)
	} else {
		a.presenter.SetBadge(badgeFeed, "feed off", badgeDimStyle)
	}
}

func (a *App) setCollectionBadge(status api.CollectionStatus) {
	switch {
	case status.IsPaused:
		a.presenter.SetBadge(badgeCollection, "collection paused", badgeWarnStyle)
	case status.IsRunning:
		a.presenter.SetBadge(badgeCollection, "collection running", badgeOKStyle)
	default:
		a.presenter.SetBadge(badgeCollection, "collection stopped", badgeDownStyle)
	}
}

func (a *App) notify(kind BannerKind, message string) tea.Cmd {
	return a.presenter.Notify(kind, message, 0)
}

func (a *App) logInfo(format string, args ...any)  { a.log.Info(format, args...) }
func (a *App) logWarn(format string, args ...any)  { a.log.Warn(format, args...) }
func (a *App) logError(format string, args ...any) { a.log.Error(format, args...) }

// ActivePage reports which page is currently shown.
func (a *App) ActivePage() PageID {
	return a.nav.active
}

func (a *App) View() string {
	if a.quitting {
		return "bye\n"
	}

	width := a.width
	if width <= 0 {
		width = 100
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		headerStyle.Render(" vaultmon "),
		"  ",
		a.presenter.renderBadges(),
	)

	bodyWidth := width - 2
	var body string
	if a.sidebarCollapsed {
		body = a.renderActivePage(bodyWidth)
	} else {
		sidebar := sidebarStyle.Render(a.navMenu.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			sidebar, "  ", a.renderActivePage(bodyWidth-32))
	}

	parts := []string{header}
	if banners := a.presenter.renderBanners(); banners != "" {
		parts = append(parts, banners)
	}
	parts = append(parts, body)
	if tail := a.log.Tail(logPanelLines); len(tail) > 0 {
		parts = append(parts, dimStyle.Render(strings.Join(tail, "\n")))
	}
	parts = append(parts, dimStyle.Render("1-5 pages · ◂▸ cycle · b sidebar · r refresh · x dismiss · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

// renderActivePage dispatches to the active page's renderer. Exactly one
// page is drawn per frame.
func (a *App) renderActivePage(width int) string {
	switch a.nav.active {
	case PageCollection:
		return a.renderCollection(width)
	case PageMaintenance:
		return a.renderMaintenance(width)
	case PageAlerts:
		return a.renderAlerts(width)
	case PageSystem:
		return a.renderSystem(width)
	default:
		return a.renderDashboard(width)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#1A1B26")).
			Background(lipgloss.Color("#5B8DEF"))
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B4261")).
			Padding(0, 1)
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7AA2F7"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C0CAF5"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
