package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/etnz/riskfolio/server"
	"github.com/etnz/riskfolio/store"
	"github.com/google/subcommands"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the HTTP API" }
func (*serveCmd) Usage() string {
	return `riskfolio serve [-port <port>]

  Serves the risk profiling API until interrupted. The fund catalog is
  refreshed on the funds.refresh_cron schedule.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. Defaults to the configuration.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.port != 0 {
		cfg.Server.Port = c.port
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, err := store.Open(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Database.SQLitePath).Msg("cannot open user database")
		return subcommands.ExitFailure
	}
	defer users.Close()

	allocator, err := newAllocator(ctx, cfg, log)
	if err != nil {
		// every allocation request fails until the key is set.
		log.Warn().Err(err).Msg("allocations are disabled")
		allocator = &riskfolio.Allocator{Timeout: cfg.Gemini.Timeout, Log: log}
	}

	catalog := newCatalog(cfg, log)
	scheduler := server.NewScheduler(ctx, log)
	if err := scheduler.RegisterRefresh(cfg.Funds.RefreshCron, "funds", catalog); err != nil {
		log.Error().Err(err).Msg("cannot schedule fund refresh")
		return subcommands.ExitFailure
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := server.New(server.Config{
		Addr:           cfg.Addr(),
		RequestTimeout: cfg.Server.RequestTimeout,
		Log:            log,
		Users:          users,
		Scorer:         cfg.Scorer(),
		Allocator:      allocator,
		Funds:          catalog,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server forced to shutdown")
			return subcommands.ExitFailure
		}
	}
	log.Info().Msg("server stopped")
	return subcommands.ExitSuccess
}
