package cli

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

	"github.com/litescript/nyaa-tui/internal/api"
	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/version"
)

type searchCommand struct {
	app *App

	User     string `short:"u" long:"user" description:"Only list torrents uploaded by this user"`
	Filter   string `long:"filter" description:"no_filter, no_remakes or trusted_only"`
	Category string `long:"category" description:"Category code such as 1_2"`
	Sort     string `long:"sort" description:"comments, size, date, seeders, leechers or completed"`
	Order    string `long:"order" description:"asc or desc"`
	Page     int    `short:"p" long:"page" description:"Page number, starting at 1"`

	Args struct {
		Terms []string `positional-arg-name:"term"`
	} `positional-args:"yes"`
}

func (c *searchCommand) Execute([]string) error {
	a := c.app
	q, err := a.cfg.SearchDefaults(a.site)
	if err != nil {
		return fmt.Errorf("search defaults: %w", err)
	}

	q.Term = strings.Join(c.Args.Terms, " ")
	q.Username = c.User
	if c.Filter != "" {
		if q.Filter, err = nyaa.ParseQualityFilter(c.Filter); err != nil {
			return err
		}
	}
	if c.Category != "" {
		if q.Category, err = nyaa.ResolveCategory(a.site, c.Category); err != nil {
			return err
		}
	}
	if c.Sort != "" {
		if q.SortBy, err = nyaa.ParseSortBy(c.Sort); err != nil {
			return err
		}
	}
	if c.Order != "" {
		if q.SortOrder, err = nyaa.ParseSortOrder(c.Order); err != nil {
			return err
		}
	}
	if c.Page != 0 {
		q.Page = c.Page
	}

	ctx, cancel := a.context()
	defer cancel()

	res, err := a.scraper().Search(ctx, q)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"rows":  len(res.Torrents),
		"total": res.TotalResults,
	}).Debug("search done")
	return a.print(res)
}

type viewCommand struct {
	app *App

	Args struct {
		ID string `positional-arg-name:"id" description:"View ID or https://nyaa.si/view/<id> link"`
	} `positional-args:"yes" required:"yes"`
}

func (c *viewCommand) Execute([]string) error {
	a := c.app
	id, err := viewID(c.Args.ID)
	if err != nil {
		return err
	}

	ctx, cancel := a.context()
	defer cancel()

	info, err := a.scraper().TorrentInfo(ctx, id)
	if err != nil {
		return err
	}
	return a.print(info)
}

// viewID accepts a bare ID or a view link
func viewID(s string) (int, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if i := strings.LastIndex(s, "/view/"); i >= 0 {
		s = s[i+len("/view/"):]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("view id %q: %w", s, nyaa.ErrInvalidQuery)
	}
	return id, nil
}

type feedCommand struct {
	app *App

	User     string `short:"u" long:"user" description:"Only list torrents uploaded by this user"`
	Filter   string `long:"filter" description:"no_filter, no_remakes or trusted_only"`
	Category string `long:"category" description:"Category code such as 1_2"`

	Args struct {
		Terms []string `positional-arg-name:"term"`
	} `positional-args:"yes"`
}

func (c *feedCommand) Execute([]string) error {
	a := c.app
	q := nyaa.FeedQuery{
		Term:     strings.Join(c.Args.Terms, " "),
		Username: c.User,
	}
	filter := c.Filter
	if filter == "" {
		filter = a.cfg.Search.Filter
	}
	var err error
	if q.Filter, err = nyaa.ParseQualityFilter(filter); err != nil {
		return err
	}
	if c.Category != "" {
		if q.Category, err = nyaa.ResolveCategory(a.site, c.Category); err != nil {
			return err
		}
	}

	ctx, cancel := a.context()
	defer cancel()

	feed, err := a.scraper().Feed(ctx, q)
	if err != nil {
		return err
	}
	return a.print(feed)
}

type categoriesCommand struct {
	app *App
}

func (c *categoriesCommand) Execute([]string) error {
	cats, err := nyaa.Categories(c.app.site)
	if err != nil {
		return err
	}
	return c.app.print(cats)
}

type serveCommand struct {
	app *App

	Listen string `short:"l" long:"listen" env:"NYAA_TUI_LISTEN" description:"Address to listen on; defaults to [api] listen"`
}

func (c *serveCommand) Execute([]string) error {
	a := c.app
	listen := c.Listen
	if listen == "" {
		listen = a.cfg.API.Listen
	}
	if !a.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	scrapers := make(map[nyaa.Site]scraper.Scraper)
	for _, site := range nyaa.Sites() {
		scrapers[site] = a.NewScraper(a.cfg, site, a.timeout)
	}
	handler := api.NewHandler(scrapers, a.site, a.timeout)

	srv := &http.Server{
		Addr:         listen,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: a.timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("listen", listen).Info("serving API")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type versionCommand struct {
	app *App

	Check bool `long:"check" description:"Ask GitHub for a newer release"`
}

func (c *versionCommand) Execute([]string) error {
	a := c.app
	if !c.Check {
		return a.print(version.UpdateInfo{
			CurrentVersion: version.Version,
			LatestVersion:  version.Version,
		})
	}

	ctx, cancel := a.context()
	defer cancel()

	info, err := a.Updates.Check(ctx)
	if err != nil {
		return err
	}
	if info.UpdateAvailable {
		log.WithField("latest", info.LatestVersion).Info("update available")
	}
	return a.print(info)
}
