package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/notifyroute/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL. Update runs in a read-write
// transaction at the server's default isolation; the partial unique index on
// behavior_groups settles concurrent writers racing on the same name.
type Store struct {
	pool *pgxpool.Pool
	cfg  *StoreConfig
}

// NewStore creates a new PostgreSQL-backed store.
// It establishes a connection pool and, when enabled, runs migrations.
func NewStore(ctx context.Context, cfg *StoreConfig) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store config is required")
	}

	// Apply defaults and validate config
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	pool, err := NewPool(ctx, &cfg.PoolConfig)
	if err != nil {
		return nil, err
	}

	s := &Store{pool: pool, cfg: cfg}

	// Run migrations only if explicitly enabled
	if cfg.AutoMigrate {
		if _, err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
	}

	return s, nil
}

// Migrate applies pending schema migrations and returns how many ran.
func (s *Store) Migrate(ctx context.Context) (int, error) {
	applied, err := runMigrations(ctx, s.pool)
	if err != nil {
		return applied, fmt.Errorf("failed to run migrations: %w", err)
	}
	return applied, nil
}

// Update runs fn in a read-write transaction and commits when fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.inTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite}, fn)
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.inTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, fn)
}

func (s *Store) inTx(ctx context.Context, opts pgx.TxOptions, fn func(tx store.Tx) error) error {
	if s.cfg.QueryTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.QueryTimeoutSeconds)*time.Second)
		defer cancel()
	}

	pgTx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", mapPostgresError(err))
	}
	defer pgTx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if err := fn(&tx{tx: pgTx}); err != nil {
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		log.Debug().Err(err).Msg("Transaction commit failed")
		return fmt.Errorf("failed to commit transaction: %w", mapPostgresError(err))
	}

	return nil
}

// Catalog returns the PostgreSQL catalog sharing this store's pool.
func (s *Store) Catalog() store.Catalog {
	return NewCatalog(s.pool)
}

// Close closes the connection pool.
func (s *Store) Close() {
	log.Info().Msg("Closing PostgreSQL store")
	s.pool.Close()
}
