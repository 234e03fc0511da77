package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/internal/config"
	"github.com/Catneko-0422/tuerulebase/internal/logging"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/memory"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/redis"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/sqlite"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/observability"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Env bundles what every command needs: the resolved config, a logger,
// the opened store and an engine over it.
type Env struct {
	Config   config.Config
	Logger   *slog.Logger
	Store    ports.RuleStore
	Engine   *tuerulebase.Engine
	Registry *prometheus.Registry

	closeStore func() error
}

// Options tweak Setup for the calling command.
type Options struct {
	Debug bool
	// JSONLogs selects the JSON handler, used by servers.
	JSONLogs bool
}

// Setup opens the configured store, seeds it when it is empty and a seed
// document is configured, and builds an engine with metrics hooks.
func Setup(ctx context.Context, cfg config.Config, opts Options) (*Env, error) {
	logger, err := NewLogger(cfg, opts)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Seed != "" {
		if err := seed(ctx, store, cfg.Seed, logger); err != nil {
			_ = closeStore()
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	hooks := metrics.Hooks(createDebugHooks(logger, opts.Debug))
	engine := tuerulebase.New(
		tuerulebase.WithStore(store),
		tuerulebase.WithLogger(logger),
		tuerulebase.WithHooks(hooks),
		tuerulebase.WithMaxCodeLength(cfg.MaxCodeLength),
	)

	return &Env{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Engine:     engine,
		Registry:   reg,
		closeStore: closeStore,
	}, nil
}

// Close releases the store.
func (e *Env) Close() error {
	if e.closeStore == nil {
		return nil
	}
	return e.closeStore()
}

// OpenStore builds the RuleStore named by cfg.Store.
func OpenStore(cfg config.Config) (ports.RuleStore, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory, "":
		return memory.NewStore(), func() error { return nil }, nil
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil
	case config.StoreRedis:
		s := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithLockTTL(cfg.Redis.LockTTL),
		)
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// NewLogger configures the application logger. Debug forces the debug level.
func NewLogger(cfg config.Config, opts Options) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}
	if opts.JSONLogs {
		return logging.NewJSON(level), nil
	}
	return logging.New(level), nil
}

func seed(ctx context.Context, store ports.RuleStore, path string, logger *slog.Logger) error {
	rules, err := store.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to list rules: %w", err)
	}
	if len(rules) > 0 {
		logger.Debug("Store already holds rules, skipping seed", "path", path, "rules", len(rules))
		return nil
	}

	doc, err := file.Load(path)
	if err != nil {
		return err
	}
	created, err := file.Import(ctx, store, doc)
	if err != nil {
		return fmt.Errorf("failed to seed from %s: %w", path, err)
	}
	logger.Info("Seeded rule store", "path", path, "rules", len(created))
	return nil
}

func createDebugHooks(logger *slog.Logger, debug bool) domain.DecodeHooks {
	if !debug {
		return domain.DecodeHooks{}
	}
	return domain.DecodeHooks{
		OnDecode: func(ctx context.Context, e *domain.DecodeEvent) {
			logger.Debug("Decode", "code", e.Code, "outcome", e.Outcome,
				"root_id", e.RootID, "segments", len(e.Segments), "duration", e.Duration)
		},
	}
}
