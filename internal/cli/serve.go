package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/treemap/pkg/server"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		logFile string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve treemap sessions over HTTP",
		Long: `Serve the treemap HTTP API.

Clients POST a tree document to /maps and then drive the returned session:
GET /maps/{id} for the layout, /maps/{id}/hit?x=&y= for hit tests, and
POST or DELETE /maps/{id}/zoom to zoom in and out. POST /layout computes a
cached one-shot layout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-file") {
				cfg.LogFile = logFile
			}
			return c.runServe(cmd.Context(), cfg.Addr, cfg.LogFile, cfg.SessionTTL, cfg.CORSOrigins, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated at 10 MB")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, logFile string, ttl time.Duration, origins []string, noCache bool) error {
	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		defer rotator.Close()
		c.Logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:        addr,
		CORSOrigins: origins,
		SessionTTL:  ttl,
	}, runner, nil, c.Logger)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return <-errc
}
