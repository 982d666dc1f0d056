package scraper

import (
	"context"
	"sync"

	"github.com/litescript/nyaa-tui/internal/nyaa"
)

// StaticScraper serves records held in memory instead of fetching them.
// Packages built on Scraper use it to run without network access.
type StaticScraper struct {
	mu   sync.Mutex
	site nyaa.Site

	// Pages maps a listing page number to its result.
	Pages map[int]*nyaa.SearchResult

	// Torrents maps a view ID to its detail page.
	Torrents map[int]*nyaa.TorrentInfo

	FeedResult *nyaa.Feed

	// Err, when set, is returned by every call.
	Err error

	searches []nyaa.SearchQuery
}

// NewStaticScraper creates an empty static scraper bound to site.
func NewStaticScraper(site nyaa.Site) *StaticScraper {
	return &StaticScraper{
		site:     site,
		Pages:    make(map[int]*nyaa.SearchResult),
		Torrents: make(map[int]*nyaa.TorrentInfo),
	}
}

// Name returns the scraper name.
func (s *StaticScraper) Name() string {
	return "Static (" + s.Site().String() + ")"
}

func (s *StaticScraper) Site() nyaa.Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.site
}

func (s *StaticScraper) SetSite(site nyaa.Site) {
	s.mu.Lock()
	s.site = site
	s.mu.Unlock()
}

// Search returns the stored page for q.Page, or an empty result.
func (s *StaticScraper) Search(ctx context.Context, q nyaa.SearchQuery) (*nyaa.SearchResult, error) {
	if _, err := q.URL(s.Site()); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, q)
	if s.Err != nil {
		return nil, s.Err
	}
	page := q.Page
	if page == 0 {
		page = 1
	}
	if res, ok := s.Pages[page]; ok {
		return res, nil
	}
	return &nyaa.SearchResult{Torrents: []nyaa.SearchResultTorrent{}}, nil
}

// TorrentInfo returns the stored detail page or a TorrentNotFoundError.
func (s *StaticScraper) TorrentInfo(ctx context.Context, viewID int) (*nyaa.TorrentInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if info, ok := s.Torrents[viewID]; ok {
		return info, nil
	}
	return nil, &nyaa.TorrentNotFoundError{ViewID: viewID}
}

// Feed returns the stored feed, or an empty one.
func (s *StaticScraper) Feed(ctx context.Context, q nyaa.FeedQuery) (*nyaa.Feed, error) {
	if _, err := q.URL(s.Site()); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.FeedResult != nil {
		return s.FeedResult, nil
	}
	return &nyaa.Feed{Torrents: []nyaa.FeedTorrent{}}, nil
}

// Searches returns the queries received so far.
func (s *StaticScraper) Searches() []nyaa.SearchQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]nyaa.SearchQuery(nil), s.searches...)
}

var _ Scraper = (*StaticScraper)(nil)
