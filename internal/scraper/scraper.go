// Package scraper fetches Nyaa pages and feeds over HTTP and hands them to
// the nyaa extraction engine. It defines the Scraper interface the TUI, the
// CLI and the API server are written against.
package scraper

import (
	"context"

	"github.com/litescript/nyaa-tui/internal/nyaa"
)

// Scraper is a source of Nyaa records bound to one site at a time.
type Scraper interface {
	// Name returns the source name shown in the UI
	Name() string

	// Site returns the instance queries currently go to
	Site() nyaa.Site

	// SetSite switches the instance for subsequent queries
	SetSite(site nyaa.Site)

	// Search fetches one listing page
	Search(ctx context.Context, q nyaa.SearchQuery) (*nyaa.SearchResult, error)

	// TorrentInfo fetches a detail page by view ID
	TorrentInfo(ctx context.Context, viewID int) (*nyaa.TorrentInfo, error)

	// Feed fetches the RSS listing for q
	Feed(ctx context.Context, q nyaa.FeedQuery) (*nyaa.Feed, error)
}

// Health returns a health score 0-100 based on seeders/leechers ratio
func Health(seeders, leechers int) int {
	if seeders <= 0 {
		return 0
	}
	if leechers <= 0 {
		return 100
	}

	ratio := float64(seeders) / float64(seeders+leechers) * 100
	if ratio > 100 {
		ratio = 100
	}
	return int(ratio)
}
