package main

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/letmevibethatforyou/sitesearch/graphql"
	"github.com/letmevibethatforyou/sitesearch/internal/config"
	"github.com/letmevibethatforyou/sitesearch/render"
	"github.com/letmevibethatforyou/sitesearch/urlstate"
	"github.com/letmevibethatforyou/sitesearch/widget"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	app := &cli.App{
		Name:      "search",
		Usage:     "Run the site search widget against a page URL in the terminal",
		ArgsUsage: "[page-url]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "Page URL carrying q, start and sort; positional arg is a fallback",
				EnvVars: []string{"SEARCH_PAGE_URL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file",
				EnvVars: []string{"SEARCH_CONFIG"},
				Value:   "sitesearch.toml",
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "Search endpoint; overrides the one derived from the page host",
				EnvVars: []string{"SEARCH_ENDPOINT"},
			},
			&cli.BoolFlag{
				Name:  "reset-offset",
				Usage: "Go back to the first page on a new term or sort",
			},
			&cli.BoolFlag{
				Name:  "push-history",
				Usage: "Push a history entry for every URL change",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each search request; defaults to the configured timeout",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Log at debug level",
				EnvVars: []string{"SEARCH_DEBUG"},
			},
			&cli.StringFlag{
				Name:  "write-config",
				Usage: "Write a sample configuration to this path and exit",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	level := slog.LevelWarn
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if path := c.String("write-config"); path != "" {
		return config.SaveTemplate(path)
	}

	pageURL := strings.TrimSpace(c.String("url"))
	if pageURL == "" && c.NArg() > 0 {
		pageURL = strings.TrimSpace(c.Args().First())
	}
	if pageURL == "" {
		return errors.New("a page URL is required")
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("reset-offset") {
		cfg.Widget.ResetOffset = c.Bool("reset-offset")
	}
	if c.IsSet("push-history") {
		cfg.Widget.PushHistory = c.Bool("push-history")
	}
	timeout := cfg.Endpoint.Timeout.Duration
	if d := c.Duration("timeout"); d > 0 {
		timeout = d
	}

	s, err := newSession(cfg, pageURL, c.String("endpoint"), &http.Client{Timeout: timeout}, os.Stdout)
	if err != nil {
		return err
	}

	slog.DebugContext(c.Context, "Starting search session",
		"session", s.widget.SessionID(),
		"url", pageURL,
		"timeout", timeout,
	)
	return s.run(c.Context, os.Stdin)
}

// newSession wires a widget for pageURL. An empty endpoint is resolved from
// the page host.
func newSession(cfg *config.Config, pageURL, endpoint string, hc *http.Client, out io.Writer) (*session, error) {
	history := urlstate.NewMemoryHistory(pageURL)
	locOpts := []urlstate.Option{urlstate.WithHistory(history)}
	if cfg.Widget.PushHistory {
		locOpts = append(locOpts, urlstate.WithPushHistory())
	}
	location, err := urlstate.New(pageURL, locOpts...)
	if err != nil {
		return nil, err
	}

	tag, err := cfg.LanguageTag()
	if err != nil {
		return nil, err
	}

	if endpoint == "" {
		endpoint = cfg.Environment().Resolve(location.URL())
	}
	client := graphql.NewClient(endpoint,
		graphql.WithHTTPClient(hc),
		graphql.WithOperation(cfg.GraphQLOperation()),
		graphql.WithLanguage(tag),
	)
	slog.Debug("Resolved search endpoint", "endpoint", client.Endpoint(), "host", location.Host())

	labels := cfg.RenderLabels()
	templates := render.NewTerminalTemplates()
	recorder := render.NewRecorder()

	w := widget.New(location, client, render.New(recorder, templates, labels),
		widget.WithResetOffset(cfg.Widget.ResetOffset),
	)

	return &session{
		widget:   w,
		location: location,
		history:  history,
		recorder: recorder,
		labels:   labels,
		sorts:    cfg.SortKeys(),
		styles:   templates.Styles,
		out:      out,
	}, nil
}
