package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
)

// Store is the transactional repository abstraction behavior groups are kept
// in. Every mutation of a single repository call runs inside one Update.
type Store interface {
	// Update runs fn in a read-write transaction. If fn returns an error the
	// transaction is rolled back and nothing fn wrote is visible.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only snapshot.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Catalog exposes the collaborator entities behavior groups refer to.
	Catalog() Catalog

	// Lifecycle
	Close()
}

// Tx is a unit of work against the store.
type Tx interface {
	// Collaborator lookups. Each returns ErrNotFound when the row is absent.
	GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error)
	GetEventType(ctx context.Context, id uuid.UUID) (*models.EventType, error)
	GetEndpoint(ctx context.Context, id uuid.UUID) (*models.Endpoint, error)

	// Behavior groups
	GetBehaviorGroup(ctx context.Context, id uuid.UUID) (*models.BehaviorGroup, error)
	GetBehaviorGroups(ctx context.Context, ids []uuid.UUID) ([]*models.BehaviorGroup, error)
	BehaviorGroupNameTaken(ctx context.Context, q NameQuery) (bool, error)
	CountBehaviorGroups(ctx context.Context, scope models.Scope, bundleID uuid.UUID) (int, error)
	InsertBehaviorGroup(ctx context.Context, g *models.BehaviorGroup, uniqueName bool) error
	RenameBehaviorGroup(ctx context.Context, id uuid.UUID, displayName string, uniqueName bool) error
	// DeleteBehaviorGroup removes the group and every link row referencing it.
	DeleteBehaviorGroup(ctx context.Context, id uuid.UUID) (bool, error)
	ListBehaviorGroups(ctx context.Context, q ListBehaviorGroupsQuery) ([]*models.BehaviorGroup, error)

	// Event type behaviors
	ListEventTypeBehaviors(ctx context.Context, eventTypeID uuid.UUID, scope models.Scope) ([]models.EventTypeBehavior, error)
	InsertEventTypeBehavior(ctx context.Context, b models.EventTypeBehavior) error
	DeleteEventTypeBehavior(ctx context.Context, eventTypeID, behaviorGroupID uuid.UUID) error
	ListEventTypesByBehaviorGroup(ctx context.Context, behaviorGroupID uuid.UUID) ([]*models.EventType, error)

	// Behavior group actions, ordered by position.
	ListBehaviorGroupActions(ctx context.Context, behaviorGroupID uuid.UUID) ([]models.BehaviorGroupAction, error)
	InsertBehaviorGroupAction(ctx context.Context, a models.BehaviorGroupAction) error
	MoveBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID, position int) error
	DeleteBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID) error
}

// NameQuery looks for a behavior group named DisplayName in the naming scope
// (Scope, BundleID), ignoring ExcludeID when it is set.
type NameQuery struct {
	Scope       models.Scope
	BundleID    uuid.UUID
	DisplayName string
	ExcludeID   uuid.UUID // uuid.Nil = exclude nothing
}

// ListBehaviorGroupsQuery selects behavior groups visible from Scope. Results
// are ordered by creation time descending, then id descending, and carry
// their actions.
type ListBehaviorGroupsQuery struct {
	Scope models.Scope

	// IncludeDefaults adds default groups to a tenant scope.
	IncludeDefaults bool

	// Optional filters. Zero values match everything.
	BundleID    uuid.UUID
	EventTypeID uuid.UUID
	EndpointID  uuid.UUID
}

// Catalog manages the entities that behavior groups reference. Those entities
// belong to other services; the catalog exists so this module can be seeded
// and tested end to end.
type Catalog interface {
	CreateBundle(ctx context.Context, b *models.Bundle) error
	CreateApplication(ctx context.Context, app *models.Application) error
	CreateEventType(ctx context.Context, et *models.EventType) error
	CreateEndpoint(ctx context.Context, ep *models.Endpoint) error
	DeleteEndpoint(ctx context.Context, id uuid.UUID) error
}
