package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/litescript/nyaa-tui/internal/nyaa"
)

const (
	// DefaultTimeout matches the site's own slow search responses.
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

	maxBodySize = 16 << 20
)

// HTTPStatusError reports a response outside 2xx (other than the 404 of a
// detail page, which becomes nyaa.TorrentNotFoundError).
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Client is the HTTP Scraper. It is safe for concurrent use; SetSite only
// affects requests started after it returns.
type Client struct {
	mu        sync.RWMutex
	site      nyaa.Site
	http      *http.Client
	userAgent string
	mirrors   map[nyaa.Site]string
	maxBody   int64
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua = strings.TrimSpace(ua); ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMirror sends requests for site to base instead of its public
// address. Records still carry the public addresses.
func WithMirror(site nyaa.Site, base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.mirrors[site] = base
		}
	}
}

// NewClient creates a client bound to site.
func NewClient(site nyaa.Site, opts ...Option) *Client {
	c := &Client{
		site:      site,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		mirrors:   make(map[nyaa.Site]string),
		maxBody:   maxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the source name
func (c *Client) Name() string {
	return "Nyaa (" + c.Site().BaseURL() + ")"
}

// Site returns the current instance
func (c *Client) Site() nyaa.Site {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.site
}

// SetSite switches the instance
func (c *Client) SetSite(site nyaa.Site) {
	c.mu.Lock()
	c.site = site
	c.mu.Unlock()
}

// Search fetches and assembles one listing page
func (c *Client) Search(ctx context.Context, q nyaa.SearchQuery) (*nyaa.SearchResult, error) {
	site := c.Site()
	target, err := q.URL(site)
	if err != nil {
		return nil, err
	}
	body, status, err := c.fetch(ctx, site, target)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(target, status); err != nil {
		return nil, err
	}
	res, err := nyaa.ParseSearchPage(site, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q.Term, err)
	}
	return res, nil
}

// TorrentInfo fetches and assembles a detail page
func (c *Client) TorrentInfo(ctx context.Context, viewID int) (*nyaa.TorrentInfo, error) {
	site := c.Site()
	target := nyaa.ViewURL(site, viewID)
	body, status, err := c.fetch(ctx, site, target)
	if err != nil {
		return nil, err
	}
	if status != http.StatusNotFound {
		if err := checkStatus(target, status); err != nil {
			return nil, err
		}
	}
	info, err := nyaa.ParseTorrentPage(site, viewID, status, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("view %d: %w", viewID, err)
	}
	return info, nil
}

// Feed fetches and assembles an RSS listing
func (c *Client) Feed(ctx context.Context, q nyaa.FeedQuery) (*nyaa.Feed, error) {
	site := c.Site()
	target, err := q.URL(site)
	if err != nil {
		return nil, err
	}
	body, status, err := c.fetch(ctx, site, target)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(target, status); err != nil {
		return nil, err
	}
	feed, err := nyaa.ParseFeed(site, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return feed, nil
}

// fetch GETs target, rewritten onto the site's mirror if one is set, and
// returns the body with the status code.
func (c *Client) fetch(ctx context.Context, site nyaa.Site, target string) ([]byte, int, error) {
	target, err := c.rebase(site, target)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithField("url", target).Debug("request failed")
		return nil, 0, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, 0, fmt.Errorf("read %s: body larger than %d bytes: %w", target, c.maxBody, nyaa.ErrResourceLimit)
	}
	log.WithFields(log.Fields{
		"url":      target,
		"status":   resp.StatusCode,
		"bytes":    len(body),
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("fetched")
	return body, resp.StatusCode, nil
}

func (c *Client) rebase(site nyaa.Site, target string) (string, error) {
	c.mu.RLock()
	mirror, ok := c.mirrors[site]
	c.mu.RUnlock()
	if !ok {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	m, err := url.Parse(mirror)
	if err != nil {
		return "", fmt.Errorf("mirror %q: %w", mirror, err)
	}
	u.Scheme, u.Host = m.Scheme, m.Host
	u.Path = strings.TrimRight(m.Path, "/") + u.Path
	return u.String(), nil
}

func checkStatus(target string, status int) error {
	if status < 200 || status > 299 {
		return &HTTPStatusError{URL: target, StatusCode: status}
	}
	return nil
}

var _ Scraper = (*Client)(nil)
