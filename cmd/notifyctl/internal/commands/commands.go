package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/notifyroute/internal/behaviorgroup"
	"github.com/wolfeidau/notifyroute/internal/config"
	"github.com/wolfeidau/notifyroute/internal/logger"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
	memorystore "github.com/wolfeidau/notifyroute/internal/store/memory"
	postgresstore "github.com/wolfeidau/notifyroute/internal/store/postgres"
	"github.com/wolfeidau/notifyroute/internal/telemetry"
	"github.com/wolfeidau/notifyroute/internal/util"
)

type Globals struct {
	Debug         bool
	Version       string
	ConfigPath    string
	Telemetry     bool
	StoreType     string
	PostgresStore PostgresStoreFlags
	Features      FeatureFlags
	Out           io.Writer

	// store, when set, is used instead of opening one from configuration.
	store store.Store
}

type PostgresStoreFlags struct {
	// Connection Configuration
	ConnString string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`

	// Connection Pool Configuration
	MaxConns int32 `help:"maximum number of connections in pool (0 uses the config file or default)"`
	MinConns int32 `help:"minimum number of connections in pool (0 uses the config file or default)"`

	// Migration Configuration
	AutoMigrate bool `help:"run database migrations on startup" default:"false" env:"NOTIFYROUTE_POSTGRES_AUTO_MIGRATE"`
}

type FeatureFlags struct {
	AllowDuplicateNames bool `help:"disable behavior group display name unicity" env:"NOTIFYROUTE_ALLOW_DUPLICATE_NAMES"`
}

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	store    store.Store
	repo     *behaviorgroup.Repository
	features *config.FeatureFlipper
	log      zerolog.Logger
	out      io.Writer
	close    func()
}

func (g *Globals) loadConfig() (*config.Config, error) {
	if g.ConfigPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// storeConfig merges the config file with flags; flags win when set.
func (g *Globals) storeConfig(cfg *config.Config) *postgresstore.StoreConfig {
	sc := &postgresstore.StoreConfig{
		PoolConfig: postgresstore.PoolConfig{
			ConnString:     cfg.Database.ConnString,
			MaxConns:       cfg.Database.MaxConns,
			MinConns:       cfg.Database.MinConns,
			ConnectTimeout: util.DurationSeconds(cfg.Database.ConnectTimeout),
		},
		AutoMigrate:         cfg.Database.AutoMigrate || g.PostgresStore.AutoMigrate,
		QueryTimeoutSeconds: util.DurationSeconds(cfg.Database.QueryTimeout),
	}
	if g.PostgresStore.ConnString != "" {
		sc.ConnString = g.PostgresStore.ConnString
	}
	if g.PostgresStore.MaxConns > 0 {
		sc.MaxConns = g.PostgresStore.MaxConns
	}
	if g.PostgresStore.MinConns > 0 {
		sc.MinConns = g.PostgresStore.MinConns
	}
	return sc
}

func (g *Globals) open(ctx context.Context) (context.Context, *runtime, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return ctx, nil, err
	}

	l := logger.SetupFromConfig(cfg.Logging.Level, cfg.Logging.Format, g.Debug)
	log.Logger = l
	ctx = l.WithContext(ctx)

	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if g.Telemetry {
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{ServiceName: "notifyctl", Version: g.Version})
		if err != nil {
			l.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		} else {
			closers = append(closers, func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					l.Error().Err(err).Msg("Failed to shutdown telemetry")
				}
			})
		}
	}

	st := g.store
	if st == nil {
		st, err = g.openStore(ctx, cfg)
		if err != nil {
			closeAll()
			return ctx, nil, err
		}
		closers = append(closers, st.Close)
	}

	features := config.NewFeatureFlipper(cfg.Features)
	if g.Features.AllowDuplicateNames {
		features.SetEnforceBehaviorGroupNameUnicity(false)
	}

	out := g.Out
	if out == nil {
		out = os.Stdout
	}

	return ctx, &runtime{
		store:    st,
		repo:     behaviorgroup.New(st, behaviorgroup.WithNamePolicy(features.EnforceBehaviorGroupNameUnicity)),
		features: features,
		log:      l,
		out:      out,
		close:    closeAll,
	}, nil
}

func (g *Globals) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch g.StoreType {
	case "memory":
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		return memorystore.NewStore(), nil
	default:
		sc := g.storeConfig(cfg)
		if sc.ConnString == "" {
			return nil, errors.New("PostgreSQL connection string is required (--postgres-conn-string, POSTGRES_CONNECTION_STRING or database.conn_string)")
		}
		st, err := postgresstore.NewStore(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL store: %w", err)
		}
		return st, nil
	}
}

// ScopeFlags selects the tenant a command acts for, or the default scope.
type ScopeFlags struct {
	Account string `help:"tenant account id" env:"NOTIFYROUTE_ACCOUNT"`
	Default bool   `help:"act on default behavior groups shared by all tenants"`
}

func (s ScopeFlags) Validate() error {
	if s.Account == "" && !s.Default {
		return errors.New("one of --account or --default is required")
	}
	if s.Account != "" && s.Default {
		return errors.New("--account and --default are mutually exclusive")
	}
	return nil
}

func (s ScopeFlags) scope() models.Scope {
	if s.Default {
		return models.DefaultScope()
	}
	return models.TenantScope(s.Account)
}

// AccountFlags is for read commands that always run as a tenant.
type AccountFlags struct {
	Account string `help:"tenant account id" required:"" env:"NOTIFYROUTE_ACCOUNT"`
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, &store.ValidationError{Field: field, Message: fmt.Sprintf("invalid uuid %q", value)}
	}
	return id, nil
}

func parseIDs(field string, values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseID(field, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
