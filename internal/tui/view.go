package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/version"
)

// now is swapped in tests to pin relative dates
var now = time.Now

// View renders the UI
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")
	b.WriteString(m.renderTabBar())
	b.WriteString("\n\n")

	height := m.contentHeight()
	if m.mode == viewDetails {
		b.WriteString(m.detailView.View())
		return b.String()
	}

	switch m.activeTab {
	case tabSearch:
		b.WriteString(m.renderSearchTab(height))
	case tabFeed:
		b.WriteString(m.renderFeedTab(height))
	case tabCategories:
		b.WriteString(m.renderCategoriesTab(height))
	}
	return b.String()
}

func (m Model) renderHeader() string {
	styles := GetStyles()
	site := m.src.Site()
	return styles.Header.Render("nyaa-tui v"+version.Version) +
		styles.SiteBadge.Render(site.String()) + " " +
		styles.Muted.Render(site.BaseURL())
}

func (m Model) renderTabBar() string {
	styles := GetStyles()

	resultCount, feedCount := 0, 0
	if m.result != nil {
		resultCount = len(m.result.Torrents)
	}
	if m.feed != nil {
		feedCount = len(m.feed.Torrents)
	}

	tabs := []struct {
		name  string
		tab   tabType
		count int
	}{
		{"[1]Search", tabSearch, resultCount},
		{"[2]Feed", tabFeed, feedCount},
		{"[3]Categories", tabCategories, len(m.categories)},
	}

	var parts []string
	for _, t := range tabs {
		label := t.name
		if t.count > 0 {
			label = fmt.Sprintf("%s(%d)", t.name, t.count)
		}
		if t.tab == m.activeTab {
			parts = append(parts, styles.PanelTitle.Render(label))
		} else {
			parts = append(parts, styles.Muted.Render(label))
		}
	}

	return strings.Join(parts, "  ") + "  " + styles.Muted.Render(m.queryLine())
}

// queryLine describes the active filter, category and sort
func (m Model) queryLine() string {
	parts := []string{"filter:" + m.query.Filter.String()}
	if m.query.Category != nil {
		parts = append(parts, "cat:"+m.query.Category.Title())
	}
	if m.query.SortBy != "" {
		s := "sort:" + string(m.query.SortBy)
		if m.query.SortOrder != "" {
			s += " " + string(m.query.SortOrder)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func (m Model) renderSearchTab(height int) string {
	styles := GetStyles()
	var b strings.Builder

	b.WriteString(styles.SearchPrompt.Render("Search: ") + m.searchInput.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + m.statusMsg)
	case m.err != nil:
		b.WriteString(styles.Error.Render("Error: " + describeError(m.err)))
	case m.mode == viewResults:
		b.WriteString(m.renderResults(height - 1))
	}
	return b.String()
}

// columns shared by the listing and the feed table
const (
	colCategory = 18
	colSize     = 10
	colAge      = 7
	colCount    = 6
	colHealth   = 6
)

func (m Model) nameWidth() int {
	w := m.width - 2 - 2 - colCategory - colSize - colAge - 3*colCount - colHealth - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) tableHeader() string {
	styles := GetStyles()
	header := "    " + strings.Join([]string{
		PadRight("CATEGORY", colCategory),
		PadRight("NAME", m.nameWidth()),
		PadLeft("SIZE", colSize),
		PadLeft("AGE", colAge),
		PadLeft("SEED", colCount),
		PadLeft("LEECH", colCount),
		PadLeft("DONE", colCount),
		PadLeft("HEALTH", colHealth),
	}, " ")
	return styles.TableHeader.Render(header)
}

type tableRow struct {
	viewID    int
	typ       nyaa.TorrentType
	category  nyaa.Category
	name      string
	size      string
	at        time.Time
	seeders   int
	leechers  int
	completed int
}

func (m Model) renderRow(r tableRow, selected bool) string {
	styles := GetStyles()

	row := strings.Join([]string{
		PadRight(shortCategory(r.category), colCategory),
		PadRight(r.name, m.nameWidth()),
		PadLeft(r.size, colSize),
		PadLeft(formatAge(r.at, now()), colAge),
		PadLeft(strconv.Itoa(r.seeders), colCount),
		PadLeft(strconv.Itoa(r.leechers), colCount),
		PadLeft(strconv.Itoa(r.completed), colCount),
	}, " ")
	health := HealthBar(scraper.Health(r.seeders, r.leechers), colHealth)

	mark := "  "
	if m.sent[r.viewID] {
		mark = styles.Uploader.Render("✓ ")
	}
	prefix := mark + typeMarker(r.typ) + " "
	if selected {
		return styles.TableSelected.Render(prefix+row) + " " + health
	}
	return styles.Row(r.typ).Render(prefix+row) + " " + health
}

// window returns the visible [start, end) range keeping cursor on screen
func window(cursor, n, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	return start, min(start+visible, n)
}

func (m Model) renderResults(height int) string {
	styles := GetStyles()

	if m.result == nil || len(m.result.Torrents) == 0 {
		return styles.Muted.Render("No results")
	}

	var b strings.Builder
	b.WriteString(m.tableHeader())
	b.WriteString("\n")

	start, end := window(m.cursor, len(m.result.Torrents), height-4)
	for i := start; i < end; i++ {
		t := m.result.Torrents[i]
		b.WriteString(m.renderRow(tableRow{
			viewID:    t.ViewID,
			typ:       t.Type,
			category:  t.Category,
			name:      t.Name,
			size:      t.Size,
			at:        t.Timestamp,
			seeders:   t.Seeders,
			leechers:  t.Leechers,
			completed: t.Completed,
		}, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderPager())
	return b.String()
}

// renderPager shows the resolved page state and which moves are possible
func (m Model) renderPager() string {
	styles := GetStyles()
	p := m.result.Pagination

	var parts []string
	parts = append(parts, fmt.Sprintf("%d-%d of %d", p.DisplayingFrom, p.DisplayingTo, p.TotalResults))
	if p.CurrentPage != nil {
		page := "page " + strconv.Itoa(*p.CurrentPage)
		if p.AvailablePages != nil {
			page += "/" + strconv.Itoa(*p.AvailablePages)
		}
		parts = append(parts, page)
	}
	if p.PreviousPage != nil {
		parts = append(parts, fmt.Sprintf("[p]rev %d", *p.PreviousPage))
	}
	if p.NextPage != nil {
		parts = append(parts, fmt.Sprintf("[n]ext %d", *p.NextPage))
	}
	return styles.Muted.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderFeedTab(height int) string {
	styles := GetStyles()

	switch {
	case m.loading:
		return m.spinner.View() + " " + m.statusMsg
	case m.err != nil && m.feed == nil:
		return styles.Error.Render("Error: " + describeError(m.err))
	case m.feed == nil || len(m.feed.Torrents) == 0:
		return styles.Muted.Render("Feed is empty. Press r to refresh.")
	}

	var b strings.Builder
	if m.feed.Title != "" {
		b.WriteString(styles.PanelTitle.Render(m.feed.Title))
		b.WriteString("\n")
	}
	b.WriteString(m.tableHeader())
	b.WriteString("\n")

	start, end := window(m.feedCursor, len(m.feed.Torrents), height-4)
	for i := start; i < end; i++ {
		t := m.feed.Torrents[i]
		b.WriteString(m.renderRow(tableRow{
			viewID:    t.ViewID,
			typ:       t.Type,
			category:  t.Category,
			name:      t.Name,
			size:      t.Size,
			at:        t.PublishedAt,
			seeders:   t.Seeders,
			leechers:  t.Leechers,
			completed: t.Completed,
		}, i == m.feedCursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCategoriesTab(height int) string {
	styles := GetStyles()
	var b strings.Builder

	current := m.categoryIndex()
	start, end := window(m.catCursor, len(m.categories), height)
	for i := start; i < end; i++ {
		c := m.categories[i]
		line := fmt.Sprintf("%s  %s", PadRight(c.Code(), 5), c.Title())
		mark := "  "
		if i == current {
			mark = "● "
		}
		if i == m.catCursor {
			b.WriteString(styles.TableSelected.Render(mark + line))
		} else {
			b.WriteString(styles.TableRow.Render(mark + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail builds the scrollable detail page content
func (m Model) renderDetail() string {
	styles := GetStyles()
	d := m.detail
	if d == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.PanelTitle.Render(d.Name))
	b.WriteString("\n\n")

	submitter := "Anonymous"
	if d.Submitter != nil {
		submitter = d.Submitter.Username
	}
	category := ""
	if d.Category != nil {
		category = d.Category.Title()
	}
	fields := [][2]string{
		{"Category", category},
		{"Date", d.Timestamp.Format("2006-01-02 15:04 MST")},
		{"Submitter", submitter},
		{"Information", d.Information},
		{"Size", d.Size},
		{"Seeders", strconv.Itoa(d.Seeders)},
		{"Leechers", strconv.Itoa(d.Leechers)},
		{"Completed", strconv.Itoa(d.Completed)},
		{"Info hash", d.InfoHash},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		b.WriteString(styles.Muted.Render(PadRight(f[0], 12)) + f[1] + "\n")
	}

	if desc := strings.TrimSpace(d.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(styles.PanelTitle.Render("DESCRIPTION"))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(m.detailView.Width-2, 20)).Render(desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.PanelTitle.Render(fmt.Sprintf("FILES (%d)", countFiles(d.Files))))
	b.WriteString("\n")
	renderTree(&b, d.Files, 0)

	b.WriteString("\n")
	b.WriteString(styles.PanelTitle.Render(fmt.Sprintf("COMMENTS (%d)", d.TotalComments)))
	b.WriteString("\n")
	for _, c := range d.Comments {
		b.WriteString(renderComment(c))
		b.WriteString("\n")
	}
	return b.String()
}

func renderTree(b *strings.Builder, entries []nyaa.Entry, depth int) {
	styles := GetStyles()
	indent := strings.Repeat("  ", depth+1)
	for _, e := range entries {
		switch n := e.(type) {
		case nyaa.Folder:
			b.WriteString(indent + styles.Folder.Render("▸ "+n.Name+"/") + "\n")
			renderTree(b, n.Entries, depth+1)
		case nyaa.File:
			b.WriteString(indent + styles.File.Render(n.Name) + "  " + styles.Muted.Render(n.Size) + "\n")
		}
	}
}

func renderComment(c nyaa.Comment) string {
	styles := GetStyles()

	author := styles.Author.Render(c.User.Username)
	if c.Banned {
		author = styles.Banned.Render(c.User.Username)
	}
	tags := []string{string(c.Level)}
	if c.Uploader {
		tags = append(tags, "uploader")
	}
	if c.Banned {
		tags = append(tags, "banned")
	}
	head := fmt.Sprintf("  %s %s %s", author,
		styles.Muted.Render("("+strings.Join(tags, ", ")+")"),
		styles.Muted.Render(c.Timestamp.Format("2006-01-02 15:04")))
	if c.Uploader {
		head += " " + styles.Uploader.Render("★")
	}

	var body []string
	for _, line := range strings.Split(c.Text, "\n") {
		body = append(body, "    "+line)
	}
	return head + "\n" + strings.Join(body, "\n") + "\n"
}

func (m Model) renderStatusBar() string {
	styles := GetStyles()

	qbitStr := styles.HealthBad.Render("● qBit")
	if m.qbitOnline {
		qbitStr = styles.HealthGood.Render("● qBit")
	}

	var modeStr string
	if m.searchInput.Focused() {
		modeStr = styles.HealthGood.Render("INPUT")
	} else {
		modeStr = styles.HealthMed.Render("CMD")
	}

	var help string
	switch {
	case m.searchInput.Focused():
		help = "[esc]CMD [ctrl+u]Clear [enter]Search"
	case m.mode == viewDetails:
		help = "[↑↓]Scroll [d]Download [esc]Back [q]Quit"
	case m.activeTab == tabFeed:
		help = "[enter]Details [d]Download [r]Refresh [t]Site [q]Quit"
	case m.activeTab == tabCategories:
		help = "[enter]Browse category [t]Site [q]Quit"
	case m.mode == viewResults:
		help = "[n/p]Page [f]Filter [s]Sort [o]Order [enter]Details [d]Download [t]Site [q]Quit"
	default:
		help = "[/]Search [t]Site [q]Quit"
	}

	leftPart := modeStr
	if m.statusMsg != "" {
		leftPart += "  " + m.statusMsg
	}
	padding := max(m.width-lipgloss.Width(leftPart)-lipgloss.Width(qbitStr)-4, 1)
	line1 := styles.StatusBar.Render(leftPart + strings.Repeat(" ", padding) + qbitStr)

	line2 := styles.HelpKey.Render(help)
	return line1 + "\n" + strings.Repeat(" ", max(m.width-lipgloss.Width(line2)-2, 0)) + line2
}
