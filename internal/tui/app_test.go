package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/config"
	"github.com/kweiss/vaultmon/internal/fallback"
	"github.com/kweiss/vaultmon/internal/logbook"
)

var errBackendDown = errors.New("connection refused")

// fakeBackend serves canned payloads and records every write. With fail set
// it refuses everything, standing in for an unreachable backend.
type fakeBackend struct {
	mu   sync.Mutex
	fail bool

	savedConfigs  []api.CollectionConfigUpdate
	controls      []string
	created       []api.MaintenanceRecord
	statusUpdates []int
	deleted       []int
}

func (f *fakeBackend) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeBackend) failing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeBackend) Health(context.Context) (api.Health, error) {
	if f.failing() {
		return api.Health{}, errBackendDown
	}
	return api.Health{Status: "healthy", Database: "connected"}, nil
}

func (f *fakeBackend) SystemInfo(context.Context) (api.SystemInfo, error) {
	if f.failing() {
		return api.SystemInfo{}, errBackendDown
	}
	return api.SystemInfo{Name: "Test Warehouse", Version: "9.9.9"}, nil
}

func (f *fakeBackend) SystemPerformance(context.Context) (api.SystemPerformance, error) {
	if f.failing() {
		return api.SystemPerformance{}, errBackendDown
	}
	return api.SystemPerformance{CPUUsage: 12.5, MemoryUsage: 41.0, DiskUsage: 55.0}, nil
}

func (f *fakeBackend) LatestEnvironment(context.Context) ([]api.EnvironmentReading, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return []api.EnvironmentReading{
		{SensorID: "LIVE-1", Temperature: 21.0, Humidity: 50.0, LightIntensity: 300.0},
	}, nil
}

func (f *fakeBackend) EnvironmentThresholds(context.Context) (api.EnvironmentThresholds, error) {
	if f.failing() {
		return api.EnvironmentThresholds{}, errBackendDown
	}
	return fallback.Thresholds(), nil
}

func (f *fakeBackend) CollectionConfig(context.Context) (api.CollectionConfig, error) {
	if f.failing() {
		return api.CollectionConfig{}, errBackendDown
	}
	return api.CollectionConfig{SensorInterval: 30, RFIDInterval: 10}, nil
}

func (f *fakeBackend) SaveCollectionConfig(_ context.Context, update api.CollectionConfigUpdate) (api.CollectionConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return api.CollectionConfig{}, errBackendDown
	}
	f.savedConfigs = append(f.savedConfigs, update)
	cfg := api.CollectionConfig{SensorInterval: 30, RFIDInterval: 10}
	if update.SensorInterval != nil {
		cfg.SensorInterval = *update.SensorInterval
	}
	if update.RFIDInterval != nil {
		cfg.RFIDInterval = *update.RFIDInterval
	}
	return cfg, nil
}

func (f *fakeBackend) ResetCollectionConfig(context.Context, string) (api.CollectionConfig, error) {
	if f.failing() {
		return api.CollectionConfig{}, errBackendDown
	}
	return api.CollectionConfig{SensorInterval: 30, RFIDInterval: 10}, nil
}

func (f *fakeBackend) ControlCollection(_ context.Context, action, _ string) (api.ControlResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return api.ControlResult{}, errBackendDown
	}
	f.controls = append(f.controls, action)
	return api.ControlResult{Status: "paused"}, nil
}

func (f *fakeBackend) CollectionStatus(context.Context) (api.CollectionStatus, error) {
	if f.failing() {
		return api.CollectionStatus{}, errBackendDown
	}
	var status api.CollectionStatus
	status.IsRunning = true
	status.CurrentConfig.SensorInterval = 30
	status.CurrentConfig.RFIDInterval = 10
	return status, nil
}

func (f *fakeBackend) MaintenanceRecords(context.Context, api.MaintenanceFilter) (api.MaintenancePage, error) {
	if f.failing() {
		return api.MaintenancePage{}, errBackendDown
	}
	return api.MaintenancePage{
		Records: []api.MaintenanceRecord{
			{ID: 7, DeviceType: api.DeviceSensor, MaintenanceType: api.MaintenanceRoutine,
				Description: "live record", Status: api.StatusScheduled},
		},
		Pagination: api.Pagination{Page: 1, PerPage: 50, Total: 1, Pages: 1},
	}, nil
}

func (f *fakeBackend) CreateMaintenanceRecord(_ context.Context, record api.MaintenanceRecord) (api.MaintenanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return api.MaintenanceRecord{}, errBackendDown
	}
	f.created = append(f.created, record)
	return record, nil
}

func (f *fakeBackend) UpdateMaintenanceStatus(_ context.Context, id int, _, _ string) (api.MaintenanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return api.MaintenanceRecord{}, errBackendDown
	}
	f.statusUpdates = append(f.statusUpdates, id)
	return api.MaintenanceRecord{ID: id}, nil
}

func (f *fakeBackend) DeleteMaintenanceRecord(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errBackendDown
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) MaintenanceStatistics(context.Context) (api.MaintenanceStatistics, error) {
	if f.failing() {
		return api.MaintenanceStatistics{}, errBackendDown
	}
	return api.MaintenanceStatistics{Total: 1}, nil
}

func (f *fakeBackend) ConfigHistory(context.Context, int) ([]api.CollectionConfig, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return []api.CollectionConfig{{SensorInterval: 30, RFIDInterval: 10, UpdatedBy: "system"}}, nil
}

func (f *fakeBackend) OverdueMaintenance(context.Context) ([]api.MaintenanceRecord, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return []api.MaintenanceRecord{
		{ID: 3, DeviceType: api.DeviceRFID, Description: "reader swap", Status: api.StatusOverdue},
	}, nil
}

func (f *fakeBackend) UpcomingMaintenance(context.Context, int) ([]api.MaintenanceRecord, error) {
	if f.failing() {
		return nil, errBackendDown
	}
	return nil, nil
}

var _ Backend = (*fakeBackend)(nil)

// fakeFeed is a canned status feed.
type fakeFeed struct {
	connected bool
	status    api.CollectionStatus
	hasStatus bool
	stopped   bool
}

func (f *fakeFeed) Start()          {}
func (f *fakeFeed) Stop()           { f.stopped = true }
func (f *fakeFeed) Connected() bool { return f.connected }
func (f *fakeFeed) Latest() (api.CollectionStatus, bool) {
	return f.status, f.hasStatus
}

func newTestApp(t *testing.T, backend Backend) *App {
	t.Helper()
	cfg, err := config.NewAt(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	log, err := logbook.New(cfg.LogPath())
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return NewApp(cfg, log,
		WithBackend(backend),
		WithStatusFeed(nil),
		WithExportDir(t.TempDir()))
}

// runCommands drains a command tree back through Update. Timer commands
// (tea.Tick) are abandoned after a short wait so tests never sleep out a
// poll interval or banner expiry.
func runCommands(t *testing.T, app *App, cmds ...tea.Cmd) {
	t.Helper()
	pending := append([]tea.Cmd(nil), cmds...)
	for len(pending) > 0 {
		cmd := pending[0]
		pending = pending[1:]
		if cmd == nil {
			continue
		}
		msgCh := make(chan tea.Msg, 1)
		go func(c tea.Cmd) { msgCh <- c() }(cmd)
		var msg tea.Msg
		select {
		case msg = <-msgCh:
		case <-time.After(250 * time.Millisecond):
			continue
		}
		if msg == nil {
			continue
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			pending = append(pending, batch...)
			continue
		}
		model, next := app.Update(msg)
		if model.(*App) != app {
			t.Fatalf("update returned a different model")
		}
		if next != nil {
			pending = append(pending, next)
		}
	}
}

func bannerTexts(app *App) []string {
	out := make([]string, 0, len(app.presenter.banners))
	for _, b := range app.presenter.banners {
		out = append(out, b.message)
	}
	return out
}

func containsBanner(app *App, substr string) bool {
	for _, text := range bannerTexts(app) {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

func TestHotkeyNavigationSwitchesPage(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	model, cmd := app.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	runCommands(t, model.(*App), cmd)

	if got := app.ActivePage(); got != PageCollection {
		t.Fatalf("expected collection page, got %s", got)
	}
	view := app.renderActivePage(80)
	if !strings.Contains(view, "Collection Control") {
		t.Fatalf("collection page not rendered")
	}
	if strings.Contains(view, "Threshold Violations") {
		t.Fatalf("inactive page content rendered alongside active page")
	}
}

func TestNavigateUnknownPageIsNoOp(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	before := app.ActivePage()
	if cmd := app.navigate(PageID("warp-core")); cmd != nil {
		t.Fatalf("unknown page produced a command")
	}
	if app.ActivePage() != before {
		t.Fatalf("unknown page changed the active page")
	}
}

func TestRapidNavigationIgnoresStaleLoaderData(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	slowLoad := app.navigate(PageCollection)
	app.navigate(PageDashboard)

	// The collection loader finishes after the operator has moved on. Its
	// data is applied but the visible page must stay put.
	runCommands(t, app, slowLoad)
	if got := app.ActivePage(); got != PageDashboard {
		t.Fatalf("stale loader completion switched pages to %s", got)
	}
}

func TestDashboardFallsBackToSyntheticData(t *testing.T) {
	backend := &fakeBackend{fail: true}
	app := newTestApp(t, backend)
	runCommands(t, app, app.loadDashboard())

	st := app.dashboard
	if !st.synthetic {
		t.Fatalf("expected synthetic data while backend is down")
	}
	if len(st.readings) == 0 {
		t.Fatalf("fallback produced no readings")
	}
	for _, reading := range st.readings {
		if reading.Temperature < 15 || reading.Temperature > 35 {
			t.Fatalf("synthetic temperature %.1f outside plausible band", reading.Temperature)
		}
		if reading.Humidity < 20 || reading.Humidity > 90 {
			t.Fatalf("synthetic humidity %.1f outside plausible band", reading.Humidity)
		}
	}
	if app.presenter.BannerCount() != 0 {
		t.Fatalf("background read failure raised a banner: %v", bannerTexts(app))
	}
}

func TestDashboardUsesLiveDataWhenBackendUp(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	runCommands(t, app, app.loadDashboard())

	if app.dashboard.synthetic {
		t.Fatalf("live fetch marked synthetic")
	}
	if len(app.dashboard.readings) != 1 || app.dashboard.readings[0].SensorID != "LIVE-1" {
		t.Fatalf("live readings not applied: %+v", app.dashboard.readings)
	}
}

func TestSaveCollectionConfigRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)
	app.navigate(PageCollection)

	app.collection.editing = true
	app.collection.sensorInput.SetValue("45")
	app.collection.rfidInput.SetValue("15")
	runCommands(t, app, app.saveCollectionConfig())

	if app.collection.cfg.SensorInterval != 45 || app.collection.cfg.RFIDInterval != 15 {
		t.Fatalf("local config not updated: %+v", app.collection.cfg)
	}
	if app.collection.status.CurrentConfig.SensorInterval != 45 {
		t.Fatalf("status config not kept in step")
	}
	if len(backend.savedConfigs) != 1 {
		t.Fatalf("expected one save request, got %d", len(backend.savedConfigs))
	}
	if got := *backend.savedConfigs[0].SensorInterval; got != 45 {
		t.Fatalf("backend received sensor interval %d", got)
	}
	if !containsBanner(app, "intervals updated") {
		t.Fatalf("missing success banner: %v", bannerTexts(app))
	}
}

func TestSaveCollectionConfigRejectsOutOfRange(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)
	app.navigate(PageCollection)
	before := app.collection.cfg

	app.collection.editing = true
	app.collection.sensorInput.SetValue("999")
	app.collection.rfidInput.SetValue("10")
	runCommands(t, app, app.saveCollectionConfig())

	if app.collection.cfg.SensorInterval != before.SensorInterval {
		t.Fatalf("invalid input changed local config")
	}
	if len(backend.savedConfigs) != 0 {
		t.Fatalf("invalid input reached the backend")
	}
	if !containsBanner(app, "sensor interval must be") {
		t.Fatalf("missing validation banner: %v", bannerTexts(app))
	}
}

func TestPauseWhileBackendDownStaysOptimistic(t *testing.T) {
	backend := &fakeBackend{fail: true}
	app := newTestApp(t, backend)
	app.navigate(PageCollection)

	runCommands(t, app, app.toggleCollection())

	if !app.collection.status.IsPaused {
		t.Fatalf("pause not applied locally")
	}
	if !containsBanner(app, "collection paused") {
		t.Fatalf("missing immediate success banner: %v", bannerTexts(app))
	}
	if !containsBanner(app, "saved locally only") {
		t.Fatalf("missing backend-unreachable warning: %v", bannerTexts(app))
	}
	if text, _ := app.presenter.Badge(badgeCollection); text != "collection paused" {
		t.Fatalf("collection badge is %q", text)
	}
}

func TestHealthProbeDrivesBackendBadge(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)

	runCommands(t, app, app.probeHealth())
	if text, _ := app.presenter.Badge(badgeBackend); text != "backend up" {
		t.Fatalf("badge after healthy probe: %q", text)
	}

	backend.setFail(true)
	runCommands(t, app, app.probeHealth())
	if text, _ := app.presenter.Badge(badgeBackend); text != "backend down" {
		t.Fatalf("badge after failed probe: %q", text)
	}
}

func TestCollectionStatusPrefersLiveFeed(t *testing.T) {
	backend := &fakeBackend{}
	feed := &fakeFeed{connected: true, hasStatus: true}
	feed.status.IsRunning = true
	feed.status.CurrentConfig.SensorInterval = 77
	feed.status.CurrentConfig.RFIDInterval = 7

	app := newTestApp(t, backend)
	app.feed = feed
	runCommands(t, app, app.pollCollectionStatus())

	if got := app.collection.status.CurrentConfig.SensorInterval; got != 77 {
		t.Fatalf("feed frame not applied, sensor interval %d", got)
	}
	if text, _ := app.presenter.Badge(badgeFeed); text != "feed live" {
		t.Fatalf("feed badge is %q", text)
	}
}

func TestMaintenanceCreateIsOptimistic(t *testing.T) {
	backend := &fakeBackend{fail: true}
	app := newTestApp(t, backend)
	app.navigate(PageMaintenance)
	countBefore := len(app.maintenance.page.Records)

	app.maintenance.showForm = true
	app.maintenance.form = newMaintenanceForm()
	app.maintenance.form.description.SetValue("swap dock antenna")
	app.maintenance.form.technician.SetValue("M. Okafor")
	app.maintenance.form.date.SetValue("2026-09-15")
	runCommands(t, app, app.createMaintenanceRecord())

	if got := len(app.maintenance.page.Records); got != countBefore+1 {
		t.Fatalf("record not appended locally, count %d", got)
	}
	last := app.maintenance.page.Records[len(app.maintenance.page.Records)-1]
	if last.Description != "swap dock antenna" || last.Status != api.StatusScheduled {
		t.Fatalf("unexpected appended record: %+v", last)
	}
	if !containsBanner(app, "saved locally only") {
		t.Fatalf("missing backend-unreachable warning: %v", bannerTexts(app))
	}
}

func TestMaintenanceStatusCycleAndDelete(t *testing.T) {
	backend := &fakeBackend{}
	app := newTestApp(t, backend)
	runCommands(t, app, app.loadMaintenance())
	if len(app.maintenance.page.Records) != 1 {
		t.Fatalf("expected one live record, got %d", len(app.maintenance.page.Records))
	}

	runCommands(t, app, app.advanceMaintenanceStatus())
	if got := app.maintenance.page.Records[0].Status; got != api.StatusInProgress {
		t.Fatalf("status after one advance: %s", got)
	}
	if len(backend.statusUpdates) != 1 || backend.statusUpdates[0] != 7 {
		t.Fatalf("status update not sent: %v", backend.statusUpdates)
	}

	runCommands(t, app, app.deleteMaintenanceRecord())
	if len(app.maintenance.page.Records) != 0 {
		t.Fatalf("record not removed locally")
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != 7 {
		t.Fatalf("delete not sent: %v", backend.deleted)
	}
}

func TestSidebarToggleIsPersisted(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	if app.sidebarCollapsed {
		t.Fatalf("sidebar starts collapsed")
	}
	model, _ := app.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	app = model.(*App)
	if !app.sidebarCollapsed {
		t.Fatalf("sidebar toggle not applied")
	}

	reloaded, err := config.NewAt(app.cfg.HomeDir)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if !reloaded.SidebarCollapsed() {
		t.Fatalf("sidebar preference not persisted")
	}
}

func TestTeardownStopsSchedulerAndFeed(t *testing.T) {
	feed := &fakeFeed{connected: true}
	app := newTestApp(t, &fakeBackend{})
	app.feed = feed
	runCommands(t, app, app.scheduler.Schedule(taskHealth, time.Minute, nil, app.probeHealth))

	cmd := app.teardown()
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if msg := cmd(); msg == nil {
		t.Fatalf("expected quit message")
	} else if _, ok := msg.(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg, got %T", msg)
	}
	if app.scheduler.Active(taskHealth) {
		t.Fatalf("scheduler still has tasks after teardown")
	}
	if !feed.stopped {
		t.Fatalf("feed not stopped on teardown")
	}
}

func TestAlertsIncludeOverdueMaintenance(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	runCommands(t, app, app.loadAlerts())

	if len(app.alerts.overdue) != 1 || app.alerts.overdue[0].ID != 3 {
		t.Fatalf("overdue records not applied: %+v", app.alerts.overdue)
	}
	if !strings.Contains(app.renderAlerts(80), "reader swap") {
		t.Fatalf("overdue record not rendered")
	}
}

func TestMaintenanceFilterCycleReloads(t *testing.T) {
	app := newTestApp(t, &fakeBackend{})
	app.navigate(PageMaintenance)

	cmd, consumed := pressFilterKey(app)
	if !consumed || cmd == nil {
		t.Fatalf("filter key must reload the listing")
	}
	if got := app.maintenance.statusFilter; got != api.StatusScheduled {
		t.Fatalf("expected first filter %q, got %q", api.StatusScheduled, got)
	}

	// Full cycle returns to unfiltered.
	for i := 0; i < len(filterCycle)-1; i++ {
		pressFilterKey(app)
	}
	if got := app.maintenance.statusFilter; got != "" {
		t.Fatalf("expected filter cleared after full cycle, got %q", got)
	}
}

func pressFilterKey(app *App) (tea.Cmd, bool) {
	return app.updateMaintenanceKeys(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("f")})
}

func TestAlertsDerivedFromThresholdViolations(t *testing.T) {
	readings := []api.EnvironmentReading{
		{SensorID: "S1", Temperature: 30, Humidity: 50, LightIntensity: 300},
		{SensorID: "S2", Temperature: 21, Humidity: 50, LightIntensity: 300},
	}
	alerts := deriveAlerts(readings, fallback.Thresholds())
	if len(alerts) != 1 {
		t.Fatalf("expected one alert, got %d: %+v", len(alerts), alerts)
	}
	if alerts[0].SensorID != "S1" || alerts[0].Metric != "temperature" {
		t.Fatalf("unexpected alert: %+v", alerts[0])
	}
}
