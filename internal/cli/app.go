// Package cli implements the nyaa command line: one-shot searches, detail
// pages, feeds and the category table printed as JSON or YAML, plus the
// serve command that runs the HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/litescript/nyaa-tui/internal/config"
	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/scraper"
	"github.com/litescript/nyaa-tui/internal/version"
)

// Options are the flags shared by every command
type Options struct {
	Site    string        `short:"s" long:"site" env:"NYAA_SITE" description:"Site to query (fun or fap); defaults to the configured site"`
	Config  string        `short:"c" long:"config" env:"NYAA_TUI_CONFIG" description:"Path to the TOML config file"`
	Timeout time.Duration `short:"t" long:"timeout" description:"Request timeout, e.g. 20s; defaults to the configured timeout"`
	Format  string        `short:"f" long:"format" choice:"json" choice:"yaml" default:"json" description:"Output format"`
	Verbose bool          `short:"v" long:"verbose" description:"Log requests at debug level"`
}

// App holds the state of one invocation
type App struct {
	Options

	// NewScraper builds the scraper for a site. Tests replace it.
	NewScraper func(cfg config.Config, site nyaa.Site, timeout time.Duration) scraper.Scraper

	// Updates answers "version --check".
	Updates *version.Checker `no-flag:"true"`

	ctx     context.Context
	out     io.Writer
	errOut  io.Writer
	cfg     config.Config
	site    nyaa.Site
	timeout time.Duration
}

// New creates an app printing records to out and logs to errOut
func New(out, errOut io.Writer) *App {
	return &App{
		NewScraper: NewClient,
		Updates:    version.NewChecker(),
		out:        out,
		errOut:     errOut,
	}
}

// NewClient builds the HTTP scraper from the config
func NewClient(cfg config.Config, site nyaa.Site, timeout time.Duration) scraper.Scraper {
	opts := []scraper.Option{
		scraper.WithTimeout(timeout),
		scraper.WithUserAgent(cfg.Network.UserAgent),
	}
	for _, s := range nyaa.Sites() {
		if mirror := cfg.MirrorFor(s); mirror != "" {
			opts = append(opts, scraper.WithMirror(s, mirror))
		}
	}
	return scraper.NewClient(site, opts...)
}

func (a *App) parser() *flags.Parser {
	p := flags.NewParser(a, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "nyaa"
	p.ShortDescription = "Query nyaa.si and sukebei.nyaa.si"

	p.AddCommand("search", "Search listings",
		"Fetch one listing page. Unset flags fall back to the [search] section of the config.",
		&searchCommand{app: a})
	p.AddCommand("view", "Show a torrent",
		"Fetch the detail page of a view ID, including files and comments.",
		&viewCommand{app: a})
	p.AddCommand("feed", "Read the RSS feed",
		"Fetch the RSS listing for a term, user or category.",
		&feedCommand{app: a})
	p.AddCommand("categories", "List categories",
		"Print the category table of the selected site.",
		&categoriesCommand{app: a})
	p.AddCommand("serve", "Run the HTTP API",
		"Serve search, view, feed and categories as JSON over HTTP.",
		&serveCommand{app: a})
	p.AddCommand("version", "Print the version",
		"Print the version; with --check, ask GitHub for a newer release.",
		&versionCommand{app: a})

	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		if cmd == nil {
			return nil
		}
		if err := a.setup(); err != nil {
			return err
		}
		return cmd.Execute(args)
	}
	return p
}

// Run parses args and executes the selected command. Help output is
// written to out and reported as success.
func (a *App) Run(ctx context.Context, args []string) error {
	a.ctx = ctx
	_, err := a.parser().ParseArgs(args)

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(a.out, flagsErr.Message)
		return nil
	}
	return err
}

// setup installs logging and resolves config, site and timeout
func (a *App) setup() error {
	log.SetHandler(clihandler.New(a.errOut))
	log.SetLevel(log.InfoLevel)
	if a.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	var err error
	if a.Config != "" {
		a.cfg, err = config.LoadFile(a.Config)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	siteName := a.Site
	if siteName == "" {
		siteName = a.cfg.Site
	}
	if a.site, err = nyaa.ParseSite(siteName); err != nil {
		return err
	}

	a.timeout = a.Timeout
	if a.timeout <= 0 {
		a.timeout = a.cfg.Timeout()
	}

	log.WithFields(log.Fields{
		"site":    a.site,
		"timeout": a.timeout,
		"config":  a.Config,
	}).Debug("configured")
	return nil
}

func (a *App) scraper() scraper.Scraper {
	return a.NewScraper(a.cfg, a.site, a.timeout)
}

func (a *App) context() (context.Context, context.CancelFunc) {
	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.timeout)
}

// print encodes v in the selected format
func (a *App) print(v any) error {
	switch a.Format {
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
