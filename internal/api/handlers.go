package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/version"
)

// Handler handles HTTP requests for the extraction API
type Handler struct {
	scrapers    map[nyaa.Site]scraper.Scraper
	defaultSite nyaa.Site
	timeout     time.Duration
	started     time.Time
}

// NewHandler creates a handler serving one scraper per site. Requests
// without a site parameter go to defaultSite.
func NewHandler(scrapers map[nyaa.Site]scraper.Scraper, defaultSite nyaa.Site, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = scraper.DefaultTimeout
	}
	return &Handler{
		scrapers:    scrapers,
		defaultSite: defaultSite,
		timeout:     timeout,
		started:     time.Now(),
	}
}

// HealthCheck reports liveness and the sites being served
func (h *Handler) HealthCheck(c *gin.Context) {
	sites := make([]string, 0, len(h.scrapers))
	for _, s := range nyaa.Sites() {
		if _, ok := h.scrapers[s]; ok {
			sites = append(sites, s.String())
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"version":   version.Version,
		"sites":     sites,
	})
}

// Search handles one listing page
func (h *Handler) Search(c *gin.Context) {
	site, src, ok := h.scraperFor(c)
	if !ok {
		return
	}
	q, err := searchQuery(c, site)
	if err != nil {
		h.fail(c, "search", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := src.Search(ctx, q)
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// View handles a detail page
func (h *Handler) View(c *gin.Context) {
	_, src, ok := h.scraperFor(c)
	if !ok {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.fail(c, "view", fmt.Errorf("view id %q: %w", c.Param("id"), nyaa.ErrInvalidQuery))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	info, err := src.TorrentInfo(ctx, id)
	if err != nil {
		h.fail(c, "view", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Feed handles the RSS listing
func (h *Handler) Feed(c *gin.Context) {
	site, src, ok := h.scraperFor(c)
	if !ok {
		return
	}
	q, err := feedQuery(c, site)
	if err != nil {
		h.fail(c, "feed", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	feed, err := src.Feed(ctx, q)
	if err != nil {
		h.fail(c, "feed", err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// Categories lists the site's category table
func (h *Handler) Categories(c *gin.Context) {
	site, err := h.site(c)
	if err != nil {
		h.fail(c, "categories", err)
		return
	}
	cats, err := nyaa.Categories(site)
	if err != nil {
		h.fail(c, "categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"site":       site,
		"categories": cats,
	})
}

func (h *Handler) site(c *gin.Context) (nyaa.Site, error) {
	raw := c.Query("site")
	if raw == "" {
		return h.defaultSite, nil
	}
	return nyaa.ParseSite(raw)
}

// scraperFor resolves the site parameter and its scraper, answering the
// request itself when either is missing.
func (h *Handler) scraperFor(c *gin.Context) (nyaa.Site, scraper.Scraper, bool) {
	site, err := h.site(c)
	if err != nil {
		h.fail(c, "site", err)
		return 0, nil, false
	}
	src, ok := h.scrapers[site]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "site " + site.String() + " is not served here",
			"kind":  "not_found",
		})
		return 0, nil, false
	}
	return site, src, true
}

func searchQuery(c *gin.Context, site nyaa.Site) (nyaa.SearchQuery, error) {
	var q nyaa.SearchQuery
	var err error

	q.Term = c.Query("q")
	q.Username = c.Query("user")
	if q.Filter, err = nyaa.ParseQualityFilter(c.Query("filter")); err != nil {
		return q, err
	}
	if q.Category, err = category(site, c.Query("category")); err != nil {
		return q, err
	}
	if q.SortBy, err = nyaa.ParseSortBy(c.Query("sort")); err != nil {
		return q, err
	}
	if q.SortOrder, err = nyaa.ParseSortOrder(c.Query("order")); err != nil {
		return q, err
	}
	if raw := c.Query("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil {
			return q, fmt.Errorf("page %q: %w", raw, nyaa.ErrInvalidQuery)
		}
	}
	return q, nil
}

func feedQuery(c *gin.Context, site nyaa.Site) (nyaa.FeedQuery, error) {
	var q nyaa.FeedQuery
	var err error

	q.Term = c.Query("q")
	q.Username = c.Query("user")
	if q.Filter, err = nyaa.ParseQualityFilter(c.Query("filter")); err != nil {
		return q, err
	}
	q.Category, err = category(site, c.Query("category"))
	return q, err
}

func category(site nyaa.Site, code string) (nyaa.Category, error) {
	if code = strings.TrimSpace(code); code == "" {
		return nil, nil
	}
	return nyaa.ResolveCategory(site, code)
}

// fail maps an error onto a status code and logs it
func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, kind := classify(err)
	log.WithError(err).WithFields(log.Fields{
		"op":     op,
		"status": status,
		"kind":   kind,
	}).Warn("request failed")
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  kind,
	})
}

// classify returns the HTTP status and error kind reported for err
func classify(err error) (int, string) {
	var upstream *scraper.HTTPStatusError
	switch {
	case errors.Is(err, nyaa.ErrTorrentNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, nyaa.ErrUnknownValue):
		return http.StatusBadRequest, "unknown_value"
	case errors.Is(err, nyaa.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid_query"
	case errors.Is(err, nyaa.ErrResourceLimit):
		return http.StatusBadGateway, "resource_limit"
	case errors.Is(err, nyaa.ErrStructure):
		return http.StatusBadGateway, "structure"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "upstream_status"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	}
	return http.StatusBadGateway, "transport"
}
