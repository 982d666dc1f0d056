package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/litescript/nyaa-tui/internal/config"
	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/version"
)

const testConfig = `
site = "fun"

[network]
timeout_seconds = 5

[search]
filter = "no_remakes"
sort_by = "seeders"
`

type harness struct {
	app     *App
	out     *bytes.Buffer
	static  map[nyaa.Site]*scraper.StaticScraper
	timeout time.Duration
	config  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("NYAA_SITE", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))

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

	h := &harness{
		out: &bytes.Buffer{},
		static: map[nyaa.Site]*scraper.StaticScraper{
			nyaa.SiteFun: fun,
			nyaa.SiteFap: scraper.NewStaticScraper(nyaa.SiteFap),
		},
		config: path,
	}
	h.app = New(h.out, &bytes.Buffer{})
	h.app.NewScraper = func(_ config.Config, site nyaa.Site, timeout time.Duration) scraper.Scraper {
		h.timeout = timeout
		return h.static[site]
	}
	return h
}

func (h *harness) run(args ...string) error {
	return h.app.Run(context.Background(), append([]string{"--config", h.config}, args...))
}

func fixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "nyaa", "testdata", name))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSearchAppliesConfigDefaults(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("search", "show", "01"))

	searches := h.static[nyaa.SiteFun].Searches()
	require.Len(t, searches, 1)
	q := searches[0]
	assert.Equal(t, "show 01", q.Term)
	assert.Equal(t, nyaa.NoRemakes, q.Filter)
	assert.Equal(t, nyaa.SortSeeders, q.SortBy)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 5*time.Second, h.timeout)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &raw))
	assert.EqualValues(t, 300, raw["total_results"])
	assert.Len(t, raw["torrents"], 3)
}

func TestSearchFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--timeout", "2s", "search",
		"--user", "uploader", "--filter", "trusted_only", "--category", "1_2",
		"--sort", "size", "--order", "asc", "--page", "2"))

	q := h.static[nyaa.SiteFun].Searches()[0]
	assert.Equal(t, "uploader", q.Username)
	assert.Equal(t, nyaa.TrustedOnly, q.Filter)
	assert.Equal(t, nyaa.FunAnimeEnglishTranslated, q.Category)
	assert.Equal(t, nyaa.SortSize, q.SortBy)
	assert.Equal(t, nyaa.Ascending, q.SortOrder)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 2*time.Second, h.timeout)
}

func TestSearchRejectsUnknownValues(t *testing.T) {
	h := newHarness(t)

	err := h.run("search", "--category", "9_9")
	assert.ErrorIs(t, err, nyaa.ErrUnknownValue)

	err = h.run("search", "--sort", "name")
	assert.ErrorIs(t, err, nyaa.ErrUnknownValue)

	err = h.run("--site", "kittens", "search")
	assert.ErrorIs(t, err, nyaa.ErrUnknownValue)

	assert.Empty(t, h.static[nyaa.SiteFun].Searches())
}

func TestViewCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("view", "https://nyaa.si/view/1700001"))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &raw))
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", raw["info_hash"])

	err := h.run("view", "42")
	assert.ErrorIs(t, err, nyaa.ErrTorrentNotFound)
}

func TestViewID(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1700001", 1700001, true},
		{"https://nyaa.si/view/1700001", 1700001, true},
		{"https://sukebei.nyaa.si/view/42/", 42, true},
		{"https://nyaa.si/view/42#comments", 42, true},
		{"abc", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := viewID(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, nyaa.ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeedCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("feed", "--user", "uploader", "show"))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &raw))
	assert.Len(t, raw["torrents"], 3)
}

func TestCategoriesYAML(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--site", "fap", "--format", "yaml", "categories"))

	var cats []map[string]string
	require.NoError(t, yaml.Unmarshal(h.out.Bytes(), &cats))
	require.NotEmpty(t, cats)
	assert.Equal(t, "0_0", cats[0]["code"])
	assert.Equal(t, "fap", cats[0]["site"])
	assert.Equal(t, "All Categories", cats[0]["title"])
}

func TestHelpAndBadInvocations(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.app.Run(context.Background(), []string{"--help"}))
	assert.Contains(t, h.out.String(), "search")
	assert.Contains(t, h.out.String(), "serve")

	assert.Error(t, h.run("--format", "xml", "categories"))
	assert.Error(t, h.run("view"))
	assert.Error(t, h.run())
}

func TestInvalidConfig(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.config, []byte("site = \"kittens\"\n"), 0o644))

	err := h.run("categories")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version"))
	var info version.UpdateInfo
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &info))
	assert.Equal(t, version.Version, info.CurrentVersion)
	assert.False(t, info.UpdateAvailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/"+version.Repo+"/releases/latest", r.URL.Path)
		w.Write([]byte(`{"tag_name": "v99.0.0"}`))
	}))
	defer srv.Close()
	h.app.Updates.BaseURL = srv.URL

	h.out.Reset()
	require.NoError(t, h.run("version", "--check"))
	info = version.UpdateInfo{}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &info))
	assert.Equal(t, "99.0.0", info.LatestVersion)
	assert.True(t, info.UpdateAvailable)
}
