// cmd/vaultmon/main.go
//
// Entry point for the vaultmon console, a terminal dashboard for the
// archive-warehouse monitoring backend. Startup wires the configuration,
// the logbook, the REST client and the live status feed, then hands
// control to the TUI until the operator quits.

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kweiss/vaultmon/internal/api"
	"github.com/kweiss/vaultmon/internal/config"
	"github.com/kweiss/vaultmon/internal/logbook"
	"github.com/kweiss/vaultmon/internal/tui"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logbook.New(cfg.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening logbook: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("vaultmon starting, backend %s", cfg.BaseURL())

	client := api.NewClient(cfg.BaseURL(), cfg.RequestTimeout())
	feed := api.NewStreamClient(cfg.BaseURL(), cfg.WSReconnectDelay(), cfg.WSReconnectMax(),
		func(format string, args ...any) { log.Warn(format, args...) })

	app := tui.NewApp(cfg, log,
		tui.WithBackend(client),
		tui.WithStatusFeed(feed),
	)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("console exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error running console: %v\n", err)
		os.Exit(1)
	}
	log.Info("vaultmon stopped")
}
