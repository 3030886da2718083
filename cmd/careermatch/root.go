package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/api"
	"github.com/jonathan/careermatch/internal/config"
	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/observability"
	"github.com/jonathan/careermatch/internal/session"
)

var (
	configFile string
	verbose    bool
	apiBaseURL string
	scoreMode  string
	storeKind  string
	noColor    bool
)

// app holds what every command needs, resolved once per invocation.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	client   *api.Client
	sessions *session.Manager
	printer  *observability.Printer
}

var current *app

var rootCmd = &cobra.Command{
	Use:           "careermatch",
	Short:         "CareerMatch command line client",
	Long:          "CareerMatch shows AI job matches, skill gaps and course recommendations from the CareerMatch backend, and can serve them to the web front end.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		current = a
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default .careermatch.yaml in . or $HOME)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&apiBaseURL, "api-base-url", "", "Backend base URL")
	flags.StringVar(&scoreMode, "score-mode", "", "Score presentation mode (roll or blend)")
	flags.StringVar(&storeKind, "session-store", "", "Where the session is kept (keyring or file)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colored output")
}

// setup resolves configuration from defaults, the config file, the
// environment and flags, then builds the backend client.
func setup(cmd *cobra.Command) (*app, error) {
	v := config.NewViper(configFile)
	flags := cmd.Flags()
	for key, name := range map[string]string{
		"api_base_url":  "api-base-url",
		"score_mode":    "score-mode",
		"session_store": "session-store",
		"verbose":       "verbose",
	} {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store)

	client, err := api.New(&api.Options{
		BaseURL:           cfg.APIBaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            logger,
		Tokens:            sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout()).WithColor(!noColor && !color.NoColor)

	return &app{
		cfg:      cfg,
		log:      logger,
		client:   client,
		sessions: sessions,
		printer:  printer,
	}, nil
}

func newStore(cfg *config.Config) (session.Store, error) {
	if cfg.SessionStore == config.StoreKeyring {
		return session.NewKeyringStore(), nil
	}
	path := cfg.SessionFile
	if path == "" {
		p, err := session.DefaultSessionFile()
		if err != nil {
			return nil, fmt.Errorf("failed to locate session file: %w", err)
		}
		path = p
	}
	return &session.FileStore{Path: path}, nil
}

// dashboardService builds the dashboard view-model service from config.
func (a *app) dashboardService() (*dashboard.Service, error) {
	table, err := a.cfg.Table()
	if err != nil {
		return nil, err
	}
	return dashboard.New(a.client, dashboard.Options{
		MatchLimit:  a.cfg.MatchLimit,
		CourseLimit: a.cfg.CourseLimit,
		Table:       table,
		Normalizer:  a.cfg.Normalizer(),
		Logger:      a.log,
	}), nil
}

// optionalTokens sends the session token when one exists and nothing
// otherwise, for endpoints that also serve anonymous users.
type optionalTokens struct {
	sessions *session.Manager
}

func (o optionalTokens) AccessToken() (string, error) {
	token, err := o.sessions.AccessToken()
	if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrExpired) {
		return "", nil
	}
	return token, err
}

// loginHint rewrites session errors into an actionable message.
func loginHint(err error) error {
	switch {
	case errors.Is(err, session.ErrNoSession):
		return fmt.Errorf("not logged in, run 'careermatch login' first")
	case errors.Is(err, session.ErrExpired):
		return fmt.Errorf("session expired, run 'careermatch login' again")
	case api.IsUnauthorized(err):
		return fmt.Errorf("the backend rejected the session, run 'careermatch login' again: %w", err)
	}
	return err
}
