package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "nyaa", "testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func setupServer(t *testing.T) (*gin.Engine, *scraper.StaticScraper) {
	t.Helper()
	fun := scraper.NewStaticScraper(nyaa.SiteFun)

	page, err := nyaa.ParseSearchPage(nyaa.SiteFun, fixture(t, "search.html"))
	require.NoError(t, err)
	fun.Pages[1] = page

	info, err := nyaa.ParseTorrentPage(nyaa.SiteFun, 1700001, http.StatusOK, fixture(t, "view.html"))
	require.NoError(t, err)
	fun.Torrents[1700001] = info

	feed, err := nyaa.ParseFeed(nyaa.SiteFun, fixture(t, "feed.xml"))
	require.NoError(t, err)
	fun.FeedResult = feed

	handler := NewHandler(map[nyaa.Site]scraper.Scraper{nyaa.SiteFun: fun}, nyaa.SiteFun, time.Second)
	return NewServer(handler), fun
}

func get(t *testing.T, r http.Handler, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	r.ServeHTTP(w, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestHealthAndInfo(t *testing.T) {
	r, _ := setupServer(t)

	w, body := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, []any{"fun"}, body["sites"])

	w, body = get(t, r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nyaa-tui", body["service"])
	assert.Contains(t, body, "endpoints")
}

func TestSearch(t *testing.T) {
	r, src := setupServer(t)

	w, body := get(t, r, "/api/v1/search?q=show&user=uploader&filter=trusted_only&category=1_2&sort=seeders&order=asc")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, src.Searches(), 1)
	q := src.Searches()[0]
	assert.Equal(t, "show", q.Term)
	assert.Equal(t, "uploader", q.Username)
	assert.Equal(t, nyaa.TrustedOnly, q.Filter)
	assert.Equal(t, nyaa.FunAnimeEnglishTranslated, q.Category)
	assert.Equal(t, nyaa.SortSeeders, q.SortBy)
	assert.Equal(t, nyaa.Ascending, q.SortOrder)

	torrents, ok := body["torrents"].([]any)
	require.True(t, ok)
	assert.Len(t, torrents, 3)
	assert.EqualValues(t, 300, body["total_results"])
	assert.EqualValues(t, 2, body["current_page"])

	first := torrents[0].(map[string]any)
	assert.Equal(t, "[Group] Show - 01 [1080p].mkv", first["name"])
	cat := first["category"].(map[string]any)
	assert.Equal(t, "fun", cat["site"])
}

func TestSearchBadParameters(t *testing.T) {
	r, src := setupServer(t)

	tests := []struct {
		name   string
		target string
		kind   string
	}{
		{"unknown filter", "/api/v1/search?filter=perfect", "unknown_value"},
		{"unknown category", "/api/v1/search?category=9_9", "unknown_value"},
		{"unknown sort", "/api/v1/search?sort=name", "unknown_value"},
		{"unknown order", "/api/v1/search?order=sideways", "unknown_value"},
		{"page not a number", "/api/v1/search?page=two", "invalid_query"},
		{"negative page", "/api/v1/search?page=-1", "invalid_query"},
		{"unknown site", "/api/v1/search?site=kittens", "unknown_value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := get(t, r, tt.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
	assert.Empty(t, src.Searches())
}

func TestSiteNotServed(t *testing.T) {
	r, _ := setupServer(t)

	w, body := get(t, r, "/api/v1/search?site=fap")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["kind"])
}

func TestView(t *testing.T) {
	r, _ := setupServer(t)

	w, body := get(t, r, "/api/v1/view/1700001")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1700001, body["view_id"])
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", body["info_hash"])
	assert.NotEmpty(t, body["files"])

	w, body = get(t, r, "/api/v1/view/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["kind"])

	w, body = get(t, r, "/api/v1/view/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_query", body["kind"])
}

func TestFeed(t *testing.T) {
	r, _ := setupServer(t)

	w, body := get(t, r, "/api/v1/feed?q=show&filter=no_remakes")
	require.Equal(t, http.StatusOK, w.Code)
	torrents, ok := body["torrents"].([]any)
	require.True(t, ok)
	assert.Len(t, torrents, 3)
}

func TestCategories(t *testing.T) {
	r, _ := setupServer(t)

	w, body := get(t, r, "/api/v1/categories?site=fap")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fap", body["site"])

	cats := body["categories"].([]any)
	require.NotEmpty(t, cats)
	first := cats[0].(map[string]any)
	assert.Equal(t, "0_0", first["code"])
	assert.Equal(t, "fap", first["site"])
}

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"http status", &scraper.HTTPStatusError{URL: "https://nyaa.si/", StatusCode: 503}, http.StatusBadGateway, "upstream_status"},
		{"layout", &nyaa.ParseError{Section: "pagination", Err: nyaa.ErrStructure}, http.StatusBadGateway, "structure"},
		{"tree depth", &nyaa.ParseError{Section: "files", Err: nyaa.ErrTreeTooDeep}, http.StatusBadGateway, "resource_limit"},
		{"transport", errors.New("connection refused"), http.StatusBadGateway, "transport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, src := setupServer(t)
			src.Err = tt.err

			w, body := get(t, r, "/api/v1/search?q=show")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r, _ := setupServer(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/v1/search", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
