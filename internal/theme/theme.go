// Package theme provides terminal theming with automatic detection.
// Colors come from the Alacritty, Kitty or Foot configuration of the
// running user, with NYAA_TUI_* environment overrides, and are turned into
// the lipgloss styles the TUI renders listings, file trees and comments
// with.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/nyaa-tui/internal/nyaa"
)

// Palette holds the color scheme for the TUI
type Palette struct {
	BG       string // background
	FG       string // foreground (primary text)
	Muted    string // timestamps, sizes, secondary info
	Accent   string // highlights, folders
	AccentBg string // selection background
	Error    string

	// Row colors follow the site's own listing: green for trusted
	// uploads, red for remakes, amber for hidden ones.
	Trusted string
	Remake  string
	Hidden  string
}

// DefaultPalette returns the fallback amber-on-dark theme
func DefaultPalette() Palette {
	return Palette{
		BG:       "#0a0a0a",
		FG:       "#d4a017",
		Muted:    "#6b6b4f",
		Accent:   "#8bc34a",
		AccentBg: "#1a1a14",
		Error:    "#ff6b6b",
		Trusted:  "#8bc34a",
		Remake:   "#ff6b6b",
		Hidden:   "#ffb347",
	}
}

// Styles holds all lipgloss styles derived from a palette
type Styles struct {
	Header        lipgloss.Style
	SiteBadge     lipgloss.Style
	StatusBar     lipgloss.Style
	SearchPrompt  lipgloss.Style
	SearchInput   lipgloss.Style
	TableHeader   lipgloss.Style
	TableRow      lipgloss.Style
	TableSelected lipgloss.Style
	RowTrusted    lipgloss.Style
	RowRemake     lipgloss.Style
	RowHidden     lipgloss.Style
	Seeders       lipgloss.Style
	Leechers      lipgloss.Style
	HealthGood    lipgloss.Style
	HealthMed     lipgloss.Style
	HealthBad     lipgloss.Style
	Muted         lipgloss.Style
	Error         lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	Folder        lipgloss.Style
	File          lipgloss.Style
	Author        lipgloss.Style
	Uploader      lipgloss.Style
	Banned        lipgloss.Style
}

// NewStyles creates styles from a palette
func NewStyles(p Palette) Styles {
	fg := lipgloss.NewStyle().Foreground(lipgloss.Color(p.FG))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))

	return Styles{
		Header: fg.Bold(true).Padding(0, 1),

		SiteBadge: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.BG)).
			Background(lipgloss.Color(p.Accent)).
			Bold(true).
			Padding(0, 1),

		StatusBar:    muted.Padding(0, 1),
		SearchPrompt: muted,
		SearchInput:  fg,

		TableHeader: muted.
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(p.Muted)),

		TableRow: fg,

		TableSelected: fg.
			Background(lipgloss.Color(p.AccentBg)).
			Bold(true),

		RowTrusted: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Trusted)),
		RowRemake:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Remake)),
		RowHidden:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Hidden)),

		Seeders:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Trusted)),
		Leechers: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Remake)),

		HealthGood: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Trusted)),
		HealthMed:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Hidden)),
		HealthBad:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Remake)),

		Muted: muted,
		Error: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),

		HelpKey:  muted,
		HelpDesc: fg,

		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Muted)).
			Padding(0, 1),

		PanelTitle: fg.Bold(true),

		Folder:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Bold(true),
		File:     fg,
		Author:   fg.Bold(true),
		Uploader: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Trusted)),
		Banned:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)).Strikethrough(true),
	}
}

// Row returns the listing style for a torrent's trust level
func (s Styles) Row(t nyaa.TorrentType) lipgloss.Style {
	switch t {
	case nyaa.TypeTrusted:
		return s.RowTrusted
	case nyaa.TypeRemake:
		return s.RowRemake
	case nyaa.TypeHidden:
		return s.RowHidden
	}
	return s.TableRow
}

// Health returns the style for a 0-100 health score
func (s Styles) Health(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return s.HealthGood
	case score >= 40:
		return s.HealthMed
	}
	return s.HealthBad
}

var (
	mu       sync.RWMutex
	palette  Palette
	current  Styles
	detected bool
)

// Current returns the active styles, detecting the palette on first use
func Current() Styles {
	mu.RLock()
	if detected {
		defer mu.RUnlock()
		return current
	}
	mu.RUnlock()
	Refresh()
	return Current()
}

// CurrentPalette returns the active palette
func CurrentPalette() Palette {
	Current()
	mu.RLock()
	defer mu.RUnlock()
	return palette
}

// Refresh reloads the theme from config files
func Refresh() {
	Set(Detect())
}

// Set installs p as the active palette
func Set(p Palette) {
	mu.Lock()
	palette = p
	current = NewStyles(p)
	detected = true
	mu.Unlock()
}
