package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/careermatch/internal/dashboard"
	"github.com/jonathan/careermatch/internal/server"
	"github.com/jonathan/careermatch/internal/server/ratelimit"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the backend-for-frontend HTTP server",
	Long:  `Start an HTTP server that serves presentable scores, the dashboard and the job board to the web front end.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := current.cfg
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	proxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return err
	}

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	// The server forwards each caller's own token, never the CLI session.
	srv, err := server.New(server.Options{
		Addr:           addr,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      ratelimit.DefaultConfig(cfg.RateLimit),
		TrustedProxies: proxies,
		Client:         current.client.WithTokens(nil),
		Dashboard: dashboard.Options{
			MatchLimit:  cfg.MatchLimit,
			CourseLimit: cfg.CourseLimit,
			Table:       table,
		},
		Normalizer: cfg.Normalizer(),
		Logger:     current.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	current.log.Info("starting server", "addr", addr, "backend", cfg.APIBaseURL, "score_mode", cfg.ScoreMode)
	return srv.Start()
}
