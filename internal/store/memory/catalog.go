package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

// Catalog implements store.Catalog on top of a memory Store.
type Catalog struct {
	s *Store
}

// CreateBundle creates a new bundle in memory.
func (c *Catalog) CreateBundle(ctx context.Context, b *models.Bundle) error {
	return c.s.update(func(st *state) error {
		if _, exists := st.bundles[b.ID]; exists {
			return fmt.Errorf("bundle %s: %w", b.ID, store.ErrAlreadyExists)
		}
		for _, other := range st.bundles {
			if other.Name == b.Name {
				return fmt.Errorf("bundle name %q: %w", b.Name, store.ErrAlreadyExists)
			}
		}
		st.bundles[b.ID] = *b
		return nil
	})
}

// CreateApplication creates a new application in memory.
func (c *Catalog) CreateApplication(ctx context.Context, app *models.Application) error {
	return c.s.update(func(st *state) error {
		if _, exists := st.applications[app.ID]; exists {
			return fmt.Errorf("application %s: %w", app.ID, store.ErrAlreadyExists)
		}
		if _, exists := st.bundles[app.BundleID]; !exists {
			return store.NotFound("bundle %s not found", app.BundleID)
		}
		st.applications[app.ID] = *app
		return nil
	})
}

// CreateEventType creates a new event type in memory.
func (c *Catalog) CreateEventType(ctx context.Context, et *models.EventType) error {
	return c.s.update(func(st *state) error {
		if _, exists := st.eventTypes[et.ID]; exists {
			return fmt.Errorf("event type %s: %w", et.ID, store.ErrAlreadyExists)
		}
		app, exists := st.applications[et.ApplicationID]
		if !exists {
			return store.NotFound("application %s not found", et.ApplicationID)
		}
		row := *et
		row.BundleID = uuid.Nil
		st.eventTypes[et.ID] = row
		et.BundleID = app.BundleID
		return nil
	})
}

// CreateEndpoint creates a new endpoint in memory.
func (c *Catalog) CreateEndpoint(ctx context.Context, ep *models.Endpoint) error {
	return c.s.update(func(st *state) error {
		if _, exists := st.endpoints[ep.ID]; exists {
			return fmt.Errorf("endpoint %s: %w", ep.ID, store.ErrAlreadyExists)
		}
		row := *ep
		row.AccountID = cloneAccountID(ep.AccountID)
		st.endpoints[ep.ID] = row
		return nil
	})
}

// DeleteEndpoint deletes an endpoint and the behavior group actions that
// reference it.
func (c *Catalog) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	return c.s.update(func(st *state) error {
		if _, exists := st.endpoints[id]; !exists {
			return store.NotFound("endpoint %s not found", id)
		}
		for key := range st.actions {
			if key.endpointID == id {
				delete(st.actions, key)
			}
		}
		delete(st.endpoints, id)
		return nil
	})
}
