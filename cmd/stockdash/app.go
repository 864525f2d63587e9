package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SultanAlanazie/stock-market-dashboard/internal/cache"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/config"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/database"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/fetch"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/kafka"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/pipeline"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/saver"
	"github.com/SultanAlanazie/stock-market-dashboard/internal/slogx"
)

// app holds the configuration and the optional backends a command uses
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	saver    saver.TableSaver
	db       *database.DB
	producer *kafka.Producer
	cache    *cache.SummaryCache
}

// newApp loads configuration and connects every enabled backend
func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &app{
		cfg:   cfg,
		log:   slogx.NewDefault(cfg.LogLevel),
		saver: saver.New(cfg.Pipeline.Format),
	}

	if cfg.Database.Enabled {
		db, err := database.New(cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
		a.db = db
		a.log.Info("Connected to database", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}

	if cfg.Kafka.Enabled {
		a.producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.log.Info("Kafka producer ready", "brokers", strings.Join(cfg.Kafka.Brokers, ","), "topic", cfg.Kafka.Topic)
	}

	if cfg.Redis.Enabled {
		c, err := cache.NewSummaryCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cache = c
		a.log.Info("Connected to redis", "addr", cfg.Redis.Addr)
	}
	return a, nil
}

// runner builds a pipeline runner over the enabled backends. Nil backends
// stay nil interfaces so the runner skips them.
func (a *app) runner(out io.Writer, styled bool) *pipeline.Runner {
	r := &pipeline.Runner{
		Config: a.cfg.Pipeline,
		Saver:  a.saver,
		Logger: a.log,
		Out:    out,
		Styled: styled,
	}
	if a.db != nil {
		r.Store = a.db
	}
	if a.producer != nil {
		r.Publisher = a.producer
	}
	if a.cache != nil {
		r.Cache = a.cache
	}
	return r
}

func (a *app) fetcher() (*fetch.Fetcher, error) {
	provider := fetch.NewProvider(strings.ToLower(a.cfg.Fetch.Provider), a.cfg.Fetch.PolygonAPIKey)
	if provider == nil {
		return nil, fmt.Errorf("unknown provider %q", a.cfg.Fetch.Provider)
	}
	return &fetch.Fetcher{
		Provider: provider,
		Workers:  a.cfg.Fetch.Workers,
		Logger:   a.log,
	}, nil
}

// Close releases every backend that was opened
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("Failed to close kafka producer", "error", err)
		}
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
