// Nyaa TUI is a terminal browser for nyaa.si and sukebei.nyaa.si.
// It searches listings, reads the RSS feed, shows detail pages with their
// file trees and comments, and hands torrents to qBittorrent.
package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/nyaa-tui/internal/cli"
	"github.com/litescript/nyaa-tui/internal/config"
	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/qbit"
	"github.com/litescript/nyaa-tui/internal/theme"
	"github.com/litescript/nyaa-tui/internal/tui"
	"github.com/litescript/nyaa-tui/internal/version"
)

// EnvLog names a file that receives debug logs while the TUI runs
const EnvLog = "NYAA_TUI_LOG"

func main() {
	// Handle --version / -v flag
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "--version" || arg == "-v" {
			fmt.Printf("nyaa-tui v%s\n", version.Version)
			os.Exit(0)
		}
	}

	closeLog := setupLogging()
	defer closeLog()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid config, using defaults: %v\n", err)
		cfg = config.Default()
	}

	site, err := cfg.SiteValue()
	if err != nil {
		site = nyaa.SiteFun
	}
	src := cli.NewClient(cfg, site, cfg.Timeout())
	dl := qbit.NewClient(cfg.QBittorrent.Host, cfg.QBittorrent.Port,
		cfg.QBittorrent.Username, cfg.QBittorrent.Password)

	model := tui.NewModel(cfg, src, dl)
	p := tea.NewProgram(model, tea.WithAltScreen())

	// Start theme watcher
	themeWatcher, err := theme.NewWatcher(func(theme.Palette) {
		p.Send(tui.ThemeChangedMsg{})
	})
	if err == nil {
		defer themeWatcher.Stop()
	} else {
		log.WithError(err).Warn("theme watcher disabled")
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging keeps the terminal to bubbletea: logs are dropped unless
// EnvLog names a file.
func setupLogging() func() {
	path := os.Getenv(EnvLog)
	if path == "" {
		log.SetHandler(discard.New())
		return func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file: %v\n", err)
		log.SetHandler(discard.New())
		return func() {}
	}
	log.SetHandler(text.New(f))
	log.SetLevel(log.DebugLevel)
	return func() { f.Close() }
}
