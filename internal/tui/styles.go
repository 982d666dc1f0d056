package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/theme"
)

// GetStyles returns current themed styles
func GetStyles() theme.Styles {
	return theme.Current()
}

// HealthBar renders a visual health indicator
func HealthBar(health int, width int) string {
	styles := GetStyles()

	filled := min(max(health*width/100, 0), width)

	bar := styles.Health(health).Render(strings.Repeat("█", filled))
	empty := styles.Muted.Render(strings.Repeat("░", width-filled))

	return bar + empty
}

// TruncateString truncates a string to max display width with an ellipsis
func TruncateString(s string, limit int) string {
	if lipgloss.Width(s) <= limit {
		return s
	}
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// PadRight pads a string to a specific display width
func PadRight(s string, width int) string {
	s = TruncateString(s, width)
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}

// PadLeft pads a string on the left to a specific display width
func PadLeft(s string, width int) string {
	s = TruncateString(s, width)
	return strings.Repeat(" ", max(0, width-lipgloss.Width(s))) + s
}

// typeMarker is the one-character trust column of a listing
func typeMarker(t nyaa.TorrentType) string {
	switch t {
	case nyaa.TypeTrusted:
		return "+"
	case nyaa.TypeRemake:
		return "!"
	case nyaa.TypeHidden:
		return "~"
	case nyaa.TypeBatch:
		return "B"
	}
	return " "
}

// shortCategory drops the major name of "Major - Minor" titles
func shortCategory(c nyaa.Category) string {
	if c == nil {
		return ""
	}
	title := c.Title()
	if _, minor, ok := strings.Cut(title, " - "); ok {
		return minor
	}
	return title
}

// formatAge renders how long ago t was, relative to now
func formatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case t.IsZero():
		return "-"
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 60*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return t.Format("2006-01")
}

// pageSummary is the status line after a listing loads
func pageSummary(p nyaa.Pagination, rows int) string {
	if rows == 0 {
		return "No results found"
	}
	s := fmt.Sprintf("Showing %d-%d of %d", p.DisplayingFrom, p.DisplayingTo, p.TotalResults)
	if p.CurrentPage != nil && p.AvailablePages != nil {
		s += fmt.Sprintf(" (page %d/%d)", *p.CurrentPage, *p.AvailablePages)
	}
	return s
}

func countFiles(entries []nyaa.Entry) int {
	n := 0
	nyaa.WalkFiles(entries, func([]string, nyaa.File) { n++ })
	return n
}
