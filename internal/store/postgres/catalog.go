package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

var _ store.Catalog = (*Catalog)(nil)

// Catalog implements store.Catalog using PostgreSQL.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog creates a catalog that shares the connection pool with the store.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{
		pool: pool,
	}
}

// CreateBundle creates a new bundle in the database.
func (c *Catalog) CreateBundle(ctx context.Context, b *models.Bundle) error {
	query := `
		INSERT INTO bundles (id, name, display_name, created)
		VALUES ($1, $2, $3, $4)
	`

	_, err := c.pool.Exec(ctx, query, b.ID, b.Name, b.DisplayName, b.Created)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bundle %q: %w", b.Name, store.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create bundle: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("bundle_id", b.ID.String()).
		Str("name", b.Name).
		Msg("Created bundle")

	return nil
}

// CreateApplication creates a new application in the database.
func (c *Catalog) CreateApplication(ctx context.Context, app *models.Application) error {
	query := `
		INSERT INTO applications (id, bundle_id, name, display_name, created)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := c.pool.Exec(ctx, query, app.ID, app.BundleID, app.Name, app.DisplayName, app.Created)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("application_id", app.ID.String()).
		Str("bundle_id", app.BundleID.String()).
		Msg("Created application")

	return nil
}

// CreateEventType creates a new event type and resolves its bundle.
func (c *Catalog) CreateEventType(ctx context.Context, et *models.EventType) error {
	query := `
		WITH inserted AS (
			INSERT INTO event_types (id, application_id, name, display_name)
			VALUES ($1, $2, $3, $4)
			RETURNING application_id
		)
		SELECT a.bundle_id FROM inserted JOIN applications a ON a.id = inserted.application_id
	`

	err := c.pool.QueryRow(ctx, query, et.ID, et.ApplicationID, et.Name, et.DisplayName).Scan(&et.BundleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.NotFound("application %s not found", et.ApplicationID)
		}
		return fmt.Errorf("failed to create event type: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("event_type_id", et.ID.String()).
		Str("name", et.Name).
		Msg("Created event type")

	return nil
}

// CreateEndpoint creates a new endpoint in the database.
func (c *Catalog) CreateEndpoint(ctx context.Context, ep *models.Endpoint) error {
	query := `
		INSERT INTO endpoints (id, account_id, endpoint_type, name, enabled, created)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := c.pool.Exec(ctx, query, ep.ID, ep.AccountID, string(ep.Type), ep.Name, ep.Enabled, ep.Created)
	if err != nil {
		return fmt.Errorf("failed to create endpoint: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("endpoint_id", ep.ID.String()).
		Str("type", string(ep.Type)).
		Msg("Created endpoint")

	return nil
}

// DeleteEndpoint deletes an endpoint; its behavior group actions cascade.
func (c *Catalog) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	result, err := c.pool.Exec(ctx, `DELETE FROM endpoints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete endpoint: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.NotFound("endpoint %s not found", id)
	}

	log.Debug().Str("endpoint_id", id.String()).Msg("Deleted endpoint")

	return nil
}
