package tui

import tea "github.com/charmbracelet/bubbletea"

// PageID names one logical screen of the console.
type PageID string

const (
	PageDashboard   PageID = "dashboard"
	PageCollection  PageID = "collection"
	PageMaintenance PageID = "maintenance"
	PageAlerts      PageID = "alerts"
	PageSystem      PageID = "system"
)

// defaultPage is the landing screen after startup.
const defaultPage = PageDashboard

// pageEntry binds a page id to its menu presentation and data loader. The
// page set is fixed at startup; entries are never added or removed during a
// session.
type pageEntry struct {
	ID     PageID
	Title  string
	Desc   string
	Hotkey string
	Load   func(*App) tea.Cmd
}

// pageRegistry is the static, ordered page table.
type pageRegistry struct {
	order   []PageID
	entries map[PageID]pageEntry
}

func newPageRegistry() *pageRegistry {
	entries := []pageEntry{
		{ID: PageDashboard, Title: "Dashboard", Desc: "Environment and collection overview", Hotkey: "1", Load: (*App).loadDashboard},
		{ID: PageCollection, Title: "Collection", Desc: "Sampling intervals and run control", Hotkey: "2", Load: (*App).loadCollection},
		{ID: PageMaintenance, Title: "Maintenance", Desc: "Device maintenance records", Hotkey: "3", Load: (*App).loadMaintenance},
		{ID: PageAlerts, Title: "Alerts", Desc: "Threshold violations", Hotkey: "4", Load: (*App).loadAlerts},
		{ID: PageSystem, Title: "System", Desc: "Backend host performance", Hotkey: "5", Load: (*App).loadSystem},
	}
	reg := &pageRegistry{entries: make(map[PageID]pageEntry, len(entries))}
	for _, entry := range entries {
		reg.order = append(reg.order, entry.ID)
		reg.entries[entry.ID] = entry
	}
	return reg
}

// Lookup resolves a page id.
func (r *pageRegistry) Lookup(id PageID) (pageEntry, bool) {
	entry, ok := r.entries[id]
	return entry, ok
}

// ByHotkey resolves a page by its menu hotkey.
func (r *pageRegistry) ByHotkey(key string) (pageEntry, bool) {
	for _, id := range r.order {
		if r.entries[id].Hotkey == key {
			return r.entries[id], true
		}
	}
	return pageEntry{}, false
}

// All returns the entries in display order.
func (r *pageRegistry) All() []pageEntry {
	out := make([]pageEntry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id])
	}
	return out
}

// navState tracks the single active page. Written only by App.navigate;
// read by scheduler predicates and render code.
type navState struct {
	active PageID
}
