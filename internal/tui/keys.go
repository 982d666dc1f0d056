package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/nyaa-tui/internal/nyaa"
)

// handled returns a no-op command to signal the key was handled
func handled() tea.Cmd {
	return func() tea.Msg { return nil }
}

// sortCycle is the order the s key steps through; "" is the site default
var sortCycle = []nyaa.SortBy{"", nyaa.SortSeeders, nyaa.SortDate, nyaa.SortSize, nyaa.SortCompleted, nyaa.SortComments, nyaa.SortLeechers}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m, tea.Quit
	}

	// Input mode: only a few keys are ours, the rest go to the text input
	if m.searchInput.Focused() {
		switch key {
		case "enter":
			m.searchInput.Blur()
			q := m.query
			q.Term = strings.TrimSpace(m.searchInput.Value())
			q.Page = 1
			return m.startSearch(q)
		case "esc":
			m.searchInput.Blur()
			return m, handled()
		case "ctrl+u":
			m.searchInput.SetValue("")
			m.result = nil
			m.cursor = 0
			m.mode = viewSearch
			m.statusMsg = ""
			return m, handled()
		case "alt+1", "alt+2", "alt+3":
			m.searchInput.Blur()
			return m.switchTab(key)
		}
		return m, nil
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "alt+1", "alt+2", "alt+3", "1", "2", "3":
		return m.switchTab(key)
	case "/":
		m.activeTab = tabSearch
		if m.mode == viewDetails {
			m.mode = viewResults
		}
		m.searchInput.Focus()
		return m, handled()
	case "t":
		return m.toggleSite()
	}

	if m.mode == viewDetails {
		return m.handleDetailKey(msg)
	}

	switch m.activeTab {
	case tabFeed:
		return m.handleFeedKey(key)
	case tabCategories:
		return m.handleCategoryKey(key)
	}
	return m.handleResultsKey(key)
}

func (m Model) switchTab(key string) (tea.Model, tea.Cmd) {
	switch key[len(key)-1] {
	case '1':
		m.activeTab = tabSearch
	case '2':
		m.activeTab = tabFeed
		if m.feed == nil && !m.loading {
			return m.startFeed()
		}
	case '3':
		m.activeTab = tabCategories
		m.catCursor = m.categoryIndex()
	}
	if m.mode == viewDetails {
		m.mode = viewResults
	}
	return m, handled()
}

func (m Model) handleResultsKey(key string) (tea.Model, tea.Cmd) {
	n := 0
	if m.result != nil {
		n = len(m.result.Torrents)
	}

	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if n > 0 {
			m.cursor = n - 1
		}
	case "n", "right":
		if m.result == nil || m.result.NextPage == nil {
			m.statusMsg = "No next page"
			return m, handled()
		}
		q := m.query
		q.Page = *m.result.NextPage
		return m.startSearch(q)
	case "p", "left":
		if m.result == nil || m.result.PreviousPage == nil {
			m.statusMsg = "No previous page"
			return m, handled()
		}
		q := m.query
		q.Page = *m.result.PreviousPage
		return m.startSearch(q)
	case "f":
		q := m.query
		q.Filter = (q.Filter + 1) % 3
		q.Page = 1
		return m.startSearch(q)
	case "s":
		q := m.query
		q.SortBy = nextSort(q.SortBy)
		q.Page = 1
		return m.startSearch(q)
	case "o":
		q := m.query
		if q.SortOrder == nyaa.Ascending {
			q.SortOrder = nyaa.Descending
		} else {
			q.SortOrder = nyaa.Ascending
		}
		q.Page = 1
		return m.startSearch(q)
	case "enter":
		if m.cursor < n {
			m.returnTab = tabSearch
			return m.startDetail(m.result.Torrents[m.cursor].ViewID)
		}
	case "d":
		if m.cursor < n {
			t := m.result.Torrents[m.cursor]
			return m, m.sendTorrent(t.ViewID, t.Name, t.MagnetLink, t.TorrentURL)
		}
	default:
		return m, nil
	}
	return m, handled()
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "h":
		m.mode = viewResults
		m.activeTab = m.returnTab
		return m, handled()
	case "d":
		if d := m.detail; d != nil {
			return m, m.sendTorrent(d.ViewID, d.Name, d.MagnetLink, d.TorrentURL)
		}
		return m, handled()
	}

	var cmd tea.Cmd
	m.detailView, cmd = m.detailView.Update(msg)
	if cmd == nil {
		cmd = handled()
	}
	return m, cmd
}

func (m Model) handleFeedKey(key string) (tea.Model, tea.Cmd) {
	n := 0
	if m.feed != nil {
		n = len(m.feed.Torrents)
	}

	switch key {
	case "up", "k":
		if m.feedCursor > 0 {
			m.feedCursor--
		}
	case "down", "j":
		if m.feedCursor < n-1 {
			m.feedCursor++
		}
	case "r":
		return m.startFeed()
	case "enter":
		if m.feedCursor < n {
			m.returnTab = tabFeed
			return m.startDetail(m.feed.Torrents[m.feedCursor].ViewID)
		}
	case "d":
		if m.feedCursor < n {
			t := m.feed.Torrents[m.feedCursor]
			return m, m.sendTorrent(t.ViewID, t.Name, "", t.TorrentURL)
		}
	default:
		return m, nil
	}
	return m, handled()
}

func (m Model) handleCategoryKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.catCursor > 0 {
			m.catCursor--
		}
	case "down", "j":
		if m.catCursor < len(m.categories)-1 {
			m.catCursor++
		}
	case "enter":
		if m.catCursor < len(m.categories) {
			q := m.query
			q.Category = m.categories[m.catCursor]
			q.Page = 1
			m.feed = nil
			return m.startSearch(q)
		}
	default:
		return m, nil
	}
	return m, handled()
}

// toggleSite switches between the two instances. Category codes do not
// carry over, so the query falls back to all categories.
func (m Model) toggleSite() (tea.Model, tea.Cmd) {
	next := nyaa.SiteFap
	if m.src.Site() == nyaa.SiteFap {
		next = nyaa.SiteFun
	}
	m.src.SetSite(next)

	m.query.Category = nil
	m.query.Page = 1
	m.categories, _ = nyaa.Categories(next)
	m.catCursor = 0
	m.result = nil
	m.detail = nil
	m.feed = nil
	m.cursor = 0
	m.feedCursor = 0
	m.mode = viewSearch
	m.err = nil
	m.searchInput.Placeholder = "Search " + next.BaseURL() + "..."
	m.statusMsg = "Switched to " + next.BaseURL()
	return m, handled()
}

// categoryIndex is the picker position of the query's category
func (m Model) categoryIndex() int {
	if m.query.Category == nil {
		return 0
	}
	for i, c := range m.categories {
		if c == m.query.Category {
			return i
		}
	}
	return 0
}

func nextSort(cur nyaa.SortBy) nyaa.SortBy {
	for i, k := range sortCycle {
		if k == cur {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}
