package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/stocklink/pkg/application/services"
	"github.com/vsinha/stocklink/pkg/domain/repositories"
	"github.com/vsinha/stocklink/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/stocklink/pkg/interfaces/api"
)

// ServeConfig holds configuration for the HTTP server
type ServeConfig struct {
	Addr     string
	DBPath   string // runs are kept in memory when empty
	DayFirst bool
	Workers  int
}

// ServeCommand runs the reconciliation HTTP API until its context ends
type ServeCommand struct {
	config ServeConfig
	logger *zap.Logger
	// ready, when set, receives the bound address once listening
	ready func(addr string)
}

// NewServeCommand creates a serve command
func NewServeCommand(config ServeConfig, logger *zap.Logger) *ServeCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ServeCommand{config: config, logger: logger}
}

// Execute serves until ctx is cancelled, then shuts down gracefully
func (c *ServeCommand) Execute(ctx context.Context) error {
	var runs repositories.RunRepository
	if c.config.DBPath != "" {
		store, err := sqlite.New(c.config.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		defer store.Close()
		runs = store
	}

	handler := api.NewHandler(
		services.Config{DayFirst: c.config.DayFirst, Workers: c.config.Workers},
		runs, c.logger)

	listener, err := net.Listen("tcp", c.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.config.Addr, err)
	}

	srv := &http.Server{
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	c.logger.Info("server listening", zap.String("addr", listener.Addr().String()))
	if c.ready != nil {
		c.ready(listener.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	<-errCh
	c.logger.Info("server stopped")
	return nil
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var config ServeConfig

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reconciliation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.config
			flags := cmd.Flags()
			if !flags.Changed("addr") {
				config.Addr = cfg.Server.Addr
			}
			if !flags.Changed("db") {
				config.DBPath = cfg.Output.Database
			}
			if !flags.Changed("day-first") {
				config.DayFirst = cfg.Sources.DayFirst
			}
			if !flags.Changed("workers") {
				config.Workers = cfg.Allocate.Workers
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return NewServeCommand(config, opts.logger).Execute(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.Addr, "addr", ":8080", "Listen address")
	flags.StringVar(&config.DBPath, "db", "", "SQLite database for stored runs")
	flags.BoolVar(&config.DayFirst, "day-first", false, "Read ambiguous dates as day first")
	flags.IntVar(&config.Workers, "workers", 1, "Products allocated concurrently")

	return cmd
}
