// Package tui implements the terminal user interface using Bubble Tea.
// It drives a scraper.Scraper for listings, detail pages and feeds, pages
// through results with the resolved pagination, and hands selected
// torrents to qBittorrent.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/nyaa-tui/internal/config"
	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/qbit"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/theme"
)

// View modes of the search tab
type viewMode int

const (
	viewSearch viewMode = iota
	viewResults
	viewDetails
)

// Tabs
type tabType int

const (
	tabSearch tabType = iota
	tabFeed
	tabCategories
)

// Downloader receives torrents picked in the UI. *qbit.Client satisfies it.
type Downloader interface {
	IsConnected(ctx context.Context) bool
	Add(ctx context.Context, add qbit.AddRequest) error
}

// Model is the main application state
type Model struct {
	cfg config.Config
	src scraper.Scraper
	dl  Downloader

	// Components
	searchInput textinput.Model
	spinner     spinner.Model
	detailView  viewport.Model

	// State
	mode       viewMode
	activeTab  tabType
	returnTab  tabType // tab to go back to when leaving the detail view
	query      nyaa.SearchQuery
	result     *nyaa.SearchResult
	cursor     int
	detail     *nyaa.TorrentInfo
	feed       *nyaa.Feed
	feedCursor int
	categories []nyaa.Category
	catCursor  int
	loading    bool
	seq        int // id of the newest request; older responses are dropped
	err        error
	statusMsg  string
	qbitOnline bool

	// View IDs already handed to the downloader
	sent map[int]bool

	// Dimensions
	width  int
	height int
}

// Messages
type searchResultMsg struct {
	seq    int
	query  nyaa.SearchQuery
	result *nyaa.SearchResult
	err    error
}

type detailMsg struct {
	seq  int
	info *nyaa.TorrentInfo
	err  error
}

type feedMsg struct {
	seq  int
	feed *nyaa.Feed
	err  error
}

type qbitStatusMsg struct {
	online bool
}

type torrentAddedMsg struct {
	viewID int
	name   string
	err    error
}

// ThemeChangedMsg tells the model the palette was reloaded
type ThemeChangedMsg struct{}

// NewModel creates the initial model. dl may be nil, which disables the
// qBittorrent hand-off.
func NewModel(cfg config.Config, src scraper.Scraper, dl Downloader) Model {
	ti := textinput.New()
	ti.Placeholder = "Search " + src.Site().BaseURL() + "..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.CurrentPalette().Accent))

	m := Model{
		cfg:         cfg,
		src:         src,
		dl:          dl,
		searchInput: ti,
		spinner:     sp,
		detailView:  viewport.New(80, 20),
		mode:        viewSearch,
		sent:        make(map[int]bool),
	}

	q, err := cfg.SearchDefaults(src.Site())
	if err != nil {
		m.statusMsg = fmt.Sprintf("Ignoring search defaults: %v", err)
		q = nyaa.SearchQuery{Page: 1}
	}
	m.query = q
	m.categories, _ = nyaa.Categories(src.Site())
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.checkQbitStatus(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		newModel, cmd := m.handleKeyPress(msg)
		if cmd != nil {
			return newModel, cmd
		}
		m = newModel.(Model)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = msg.Width - 20
		m.detailView.Width = msg.Width - 4
		m.detailView.Height = m.contentHeight() - 1
		if m.detail != nil {
			m.detailView.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case searchResultMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = "Search failed: " + describeError(msg.err)
			break
		}
		m.err = nil
		m.query = msg.query
		m.result = msg.result
		m.cursor = 0
		m.mode = viewResults
		m.activeTab = tabSearch
		m.statusMsg = pageSummary(msg.result.Pagination, len(msg.result.Torrents))

	case detailMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = "Could not load torrent: " + describeError(msg.err)
			break
		}
		m.err = nil
		m.detail = msg.info
		m.mode = viewDetails
		m.detailView.SetContent(m.renderDetail())
		m.detailView.GotoTop()
		m.statusMsg = fmt.Sprintf("%d files, %d comments", countFiles(msg.info.Files), len(msg.info.Comments))

	case feedMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = "Feed failed: " + describeError(msg.err)
			break
		}
		m.err = nil
		m.feed = msg.feed
		m.feedCursor = 0
		m.statusMsg = fmt.Sprintf("%d feed entries", len(msg.feed.Torrents))

	case qbitStatusMsg:
		m.qbitOnline = msg.online

	case torrentAddedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("Added: %s", TruncateString(msg.name, 40))
			m.sent[msg.viewID] = true
		}

	case ThemeChangedMsg:
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.CurrentPalette().Accent))
		if m.detail != nil {
			m.detailView.SetContent(m.renderDetail())
		}
	}

	if m.searchInput.Focused() {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// contentHeight is the space left under the header, status and tab bars
func (m Model) contentHeight() int {
	h := m.height - 7
	if h < 5 {
		h = 5
	}
	return h
}
