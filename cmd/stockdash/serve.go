package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/api"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/kafka"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/pipeline"
)

// serveCmd implements the "serve" command.
type serveCmd struct{}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serves the dashboard API" }
func (*serveCmd) Usage() string {
	return `serve

Serves the dashboard JSON API on SERVER_HOST:SERVER_PORT. Tables are read
from the database when DB_ENABLED is set, otherwise from the output files.
The summary is cached in Redis when REDIS_ENABLED is set.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var source api.Source = pipeline.FileSource{Config: a.cfg.Pipeline, Saver: a.saver}
	if a.db != nil {
		source = a.db
	}
	var summaryCache api.SummaryCache
	if a.cache != nil {
		summaryCache = a.cache
	}

	handler := api.NewHandler(source, summaryCache, a.log)
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           api.SetupRoutes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		a.log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log.Error("HTTP server shutdown failed", "error", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// watchCmd implements the "watch" command.
type watchCmd struct {
	report reportFlags
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "rebuilds the tables whenever new prices are announced" }
func (*watchCmd) Usage() string {
	return `watch [-plain] [-quiet]

Consumes pipeline events from KAFKA_TOPIC and rebuilds both output tables
on every PRICES_FETCHED event. Requires KAFKA_ENABLED.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	c.report.set(f)
}

func (c *watchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if !a.cfg.Kafka.Enabled {
		a.log.Error("watch requires KAFKA_ENABLED=true")
		return subcommands.ExitFailure
	}

	cfg := a.cfg.Kafka
	consumer := kafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID, a.runner(c.report.out()), a.log)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error("Consumer stopped", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
