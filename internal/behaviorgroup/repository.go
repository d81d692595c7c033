// Package behaviorgroup keeps behavior groups and their links consistent.
//
// A Repository validates display names within their naming scope, checks that
// event types are only linked to behavior groups of their own bundle, and
// reconciles the two association tables (event type behaviors and behavior
// group actions). Every mutating call runs inside a single store transaction.
package behaviorgroup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/reconcile"
	"github.com/wolfeidau/notifyroute/internal/store"
	"github.com/wolfeidau/notifyroute/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	linkKindEventTypeBehavior   = "event_type_behavior"
	linkKindBehaviorGroupAction = "behavior_group_action"
)

// Repository is the behavior group façade over a store.Store.
type Repository struct {
	store   store.Store
	names   NamePolicy
	now     func() time.Time
	newID   func() (uuid.UUID, error)
	metrics *telemetry.Metrics
}

// Option configures a Repository.
type Option func(*Repository)

// WithNamePolicy sets the policy deciding whether display names are unique.
func WithNamePolicy(p NamePolicy) Option {
	return func(r *Repository) {
		r.names = p
	}
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New creates a Repository. Display names are unique unless a NamePolicy
// says otherwise.
func New(st store.Store, opts ...Option) *Repository {
	r := &Repository{
		store:   st,
		names:   EnforceUniqueNames,
		now:     time.Now,
		newID:   uuid.NewV7,
		metrics: telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create creates a behavior group owned by accountID.
func (r *Repository) Create(ctx context.Context, accountID string, g *models.BehaviorGroup) (*models.BehaviorGroup, error) {
	return r.create(ctx, models.TenantScope(accountID), g)
}

// CreateDefault creates a default behavior group shared by every tenant.
func (r *Repository) CreateDefault(ctx context.Context, g *models.BehaviorGroup) (*models.BehaviorGroup, error) {
	return r.create(ctx, models.DefaultScope(), g)
}

func (r *Repository) create(ctx context.Context, scope models.Scope, g *models.BehaviorGroup) (*models.BehaviorGroup, error) {
	if err := validateNewGroup(g); err != nil {
		return nil, r.fail(ctx, "create", err)
	}

	id, err := r.newID()
	if err != nil {
		return nil, r.fail(ctx, "create", fmt.Errorf("failed to generate behavior group id: %w", err))
	}

	enforce := r.names()
	created := &models.BehaviorGroup{
		ID:          id,
		AccountID:   scope.AccountIDPtr(),
		BundleID:    g.BundleID,
		DisplayName: g.DisplayName,
		Created:     r.now().UTC(),
	}

	err = r.store.Update(ctx, func(tx store.Tx) error {
		if _, err := tx.GetBundle(ctx, g.BundleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return store.NotFound("bundle_id not found")
			}
			return fmt.Errorf("failed to load bundle: %w", err)
		}

		if err := validateUniqueName(ctx, tx, enforce, scope, g.BundleID, g.DisplayName, uuid.Nil); err != nil {
			return err
		}

		position, err := tx.CountBehaviorGroups(ctx, scope, g.BundleID)
		if err != nil {
			return fmt.Errorf("failed to count behavior groups: %w", err)
		}
		created.Position = position

		return tx.InsertBehaviorGroup(ctx, created, enforce)
	})
	if err != nil {
		return nil, r.fail(ctx, "create", err)
	}

	r.succeed(ctx, "create")
	zerolog.Ctx(ctx).Debug().
		Str("behavior_group_id", created.ID.String()).
		Str("scope", scope.String()).
		Str("bundle_id", created.BundleID.String()).
		Msg("Created behavior group")

	return created, nil
}

// Update renames a behavior group owned by accountID. The bundle of a
// behavior group never changes; g.BundleID is ignored.
func (r *Repository) Update(ctx context.Context, accountID string, g *models.BehaviorGroup) error {
	return r.update(ctx, models.TenantScope(accountID), g)
}

// UpdateDefault renames a default behavior group.
func (r *Repository) UpdateDefault(ctx context.Context, g *models.BehaviorGroup) error {
	return r.update(ctx, models.DefaultScope(), g)
}

func (r *Repository) update(ctx context.Context, scope models.Scope, g *models.BehaviorGroup) error {
	if err := validateGroupUpdate(g); err != nil {
		return r.fail(ctx, "update", err)
	}

	enforce := r.names()

	err := r.store.Update(ctx, func(tx store.Tx) error {
		existing, err := loadOwnedGroup(ctx, tx, scope, g.ID)
		if err != nil {
			return err
		}

		if err := validateUniqueName(ctx, tx, enforce, scope, existing.BundleID, g.DisplayName, existing.ID); err != nil {
			return err
		}

		return tx.RenameBehaviorGroup(ctx, existing.ID, g.DisplayName, enforce)
	})
	if err != nil {
		return r.fail(ctx, "update", err)
	}

	r.succeed(ctx, "update")
	zerolog.Ctx(ctx).Debug().
		Str("behavior_group_id", g.ID.String()).
		Str("scope", scope.String()).
		Msg("Updated behavior group")

	return nil
}

// Delete deletes a behavior group owned by accountID together with its links.
// It reports whether a group was removed.
func (r *Repository) Delete(ctx context.Context, accountID string, id uuid.UUID) (bool, error) {
	return r.delete(ctx, models.TenantScope(accountID), id)
}

// DeleteDefault deletes a default behavior group together with its links.
func (r *Repository) DeleteDefault(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.delete(ctx, models.DefaultScope(), id)
}

func (r *Repository) delete(ctx context.Context, scope models.Scope, id uuid.UUID) (bool, error) {
	var deleted bool

	err := r.store.Update(ctx, func(tx store.Tx) error {
		if _, err := loadOwnedGroup(ctx, tx, scope, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}

		var err error
		deleted, err = tx.DeleteBehaviorGroup(ctx, id)
		return err
	})
	if err != nil {
		return false, r.fail(ctx, "delete", err)
	}

	r.succeed(ctx, "delete")
	if deleted {
		zerolog.Ctx(ctx).Info().
			Str("behavior_group_id", id.String()).
			Str("scope", scope.String()).
			Msg("Deleted behavior group (and all its links)")
	}

	return deleted, nil
}

// FindByBundleID returns the behavior groups of bundleID visible to accountID,
// its own groups and the default ones, most recently created first. Each
// group carries its ordered actions.
func (r *Repository) FindByBundleID(ctx context.Context, accountID string, bundleID uuid.UUID) ([]*models.BehaviorGroup, error) {
	return r.list(ctx, store.ListBehaviorGroupsQuery{
		Scope:           models.TenantScope(accountID),
		IncludeDefaults: true,
		BundleID:        bundleID,
	})
}

// FindDefaultsByBundleID returns the default behavior groups of bundleID.
func (r *Repository) FindDefaultsByBundleID(ctx context.Context, bundleID uuid.UUID) ([]*models.BehaviorGroup, error) {
	return r.list(ctx, store.ListBehaviorGroupsQuery{
		Scope:    models.DefaultScope(),
		BundleID: bundleID,
	})
}

// FindBehaviorGroupsByEventTypeID returns the behavior groups visible to
// accountID that are linked to eventTypeID.
func (r *Repository) FindBehaviorGroupsByEventTypeID(ctx context.Context, accountID string, eventTypeID uuid.UUID) ([]*models.BehaviorGroup, error) {
	var groups []*models.BehaviorGroup

	err := r.store.View(ctx, func(tx store.Tx) error {
		if _, err := loadEventType(ctx, tx, eventTypeID); err != nil {
			return err
		}

		var err error
		groups, err = tx.ListBehaviorGroups(ctx, store.ListBehaviorGroupsQuery{
			Scope:           models.TenantScope(accountID),
			IncludeDefaults: true,
			EventTypeID:     eventTypeID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// FindBehaviorGroupsByEndpointID returns the behavior groups visible to
// accountID whose actions reference endpointID.
func (r *Repository) FindBehaviorGroupsByEndpointID(ctx context.Context, accountID string, endpointID uuid.UUID) ([]*models.BehaviorGroup, error) {
	scope := models.TenantScope(accountID)
	var groups []*models.BehaviorGroup

	err := r.store.View(ctx, func(tx store.Tx) error {
		ep, err := tx.GetEndpoint(ctx, endpointID)
		if err != nil {
			return err
		}
		if !scope.Sees(ep.AccountID) {
			return store.NotFound("endpoint %s not found", endpointID)
		}

		groups, err = tx.ListBehaviorGroups(ctx, store.ListBehaviorGroupsQuery{
			Scope:           scope,
			IncludeDefaults: true,
			EndpointID:      endpointID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// FindEventTypesByBehaviorGroupID returns the event types linked to a behavior
// group visible to accountID, ordered by name.
func (r *Repository) FindEventTypesByBehaviorGroupID(ctx context.Context, accountID string, behaviorGroupID uuid.UUID) ([]*models.EventType, error) {
	scope := models.TenantScope(accountID)
	var eventTypes []*models.EventType

	err := r.store.View(ctx, func(tx store.Tx) error {
		g, err := tx.GetBehaviorGroup(ctx, behaviorGroupID)
		if err != nil {
			return err
		}
		if !scope.Sees(g.AccountID) {
			return store.NotFound("behavior group %s not found", behaviorGroupID)
		}

		eventTypes, err = tx.ListEventTypesByBehaviorGroup(ctx, behaviorGroupID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return eventTypes, nil
}

func (r *Repository) list(ctx context.Context, q store.ListBehaviorGroupsQuery) ([]*models.BehaviorGroup, error) {
	var groups []*models.BehaviorGroup

	err := r.store.View(ctx, func(tx store.Tx) error {
		var err error
		groups, err = tx.ListBehaviorGroups(ctx, q)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list behavior groups: %w", err)
	}

	return groups, nil
}

// UpdateEventTypeBehaviors makes the behavior groups of accountID linked to
// eventTypeID exactly behaviorGroupIDs. Links from groups of other scopes are
// left untouched. Every group must belong to the event type's bundle, or
// nothing is changed. It returns the number of link rows written.
func (r *Repository) UpdateEventTypeBehaviors(ctx context.Context, accountID string, eventTypeID uuid.UUID, behaviorGroupIDs []uuid.UUID) (int, error) {
	return r.updateEventTypeBehaviors(ctx, models.TenantScope(accountID), eventTypeID, behaviorGroupIDs)
}

// UpdateDefaultEventTypeBehaviors is UpdateEventTypeBehaviors for default
// behavior groups.
func (r *Repository) UpdateDefaultEventTypeBehaviors(ctx context.Context, eventTypeID uuid.UUID, behaviorGroupIDs []uuid.UUID) (int, error) {
	return r.updateEventTypeBehaviors(ctx, models.DefaultScope(), eventTypeID, behaviorGroupIDs)
}

func (r *Repository) updateEventTypeBehaviors(ctx context.Context, scope models.Scope, eventTypeID uuid.UUID, behaviorGroupIDs []uuid.UUID) (int, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "behaviorgroup.UpdateEventTypeBehaviors", trace.WithAttributes(
		attribute.String("scope", scope.String()),
		attribute.String("event_type_id", eventTypeID.String()),
	))
	defer span.End()

	started := time.Now()
	var (
		plan    reconcile.Plan[uuid.UUID]
		applied int
	)

	err := r.store.Update(ctx, func(tx store.Tx) error {
		eventType, err := loadEventType(ctx, tx, eventTypeID)
		if err != nil {
			return err
		}

		groups, err := resolveOwnedGroups(ctx, tx, scope, behaviorGroupIDs)
		if err != nil {
			return err
		}

		if err := checkBehaviorGroupsBelongToEventTypeBundle(eventType, groups); err != nil {
			return err
		}

		current, err := tx.ListEventTypeBehaviors(ctx, eventType.ID, scope)
		if err != nil {
			return fmt.Errorf("failed to list event type behaviors: %w", err)
		}

		plan = reconcile.Unordered(behaviorTargets(current), behaviorGroupIDs)
		applied, err = reconcile.Apply(ctx, plan, &eventTypeLinks{
			tx:          tx,
			eventTypeID: eventType.ID,
			now:         r.now().UTC(),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, r.fail(ctx, "update_event_type_behaviors", err)
	}

	span.SetAttributes(attribute.Int("applied", applied))
	r.succeed(ctx, "update_event_type_behaviors")
	r.recordPlan(ctx, linkKindEventTypeBehavior, plan, started)
	zerolog.Ctx(ctx).Debug().
		Str("event_type_id", eventTypeID.String()).
		Str("scope", scope.String()).
		Int("inserted", len(plan.Inserts)).
		Int("deleted", len(plan.Deletes)).
		Msg("Reconciled event type behaviors")

	return applied, nil
}

// UpdateBehaviorGroupActions makes the action list of a behavior group owned
// by accountID exactly endpointIDs, in that order. An endpoint may appear at
// most once. It returns the number of link rows written.
func (r *Repository) UpdateBehaviorGroupActions(ctx context.Context, accountID string, behaviorGroupID uuid.UUID, endpointIDs []uuid.UUID) (int, error) {
	return r.updateBehaviorGroupActions(ctx, models.TenantScope(accountID), behaviorGroupID, endpointIDs)
}

// UpdateDefaultBehaviorGroupActions is UpdateBehaviorGroupActions for a
// default behavior group. Only default endpoints can be referenced.
func (r *Repository) UpdateDefaultBehaviorGroupActions(ctx context.Context, behaviorGroupID uuid.UUID, endpointIDs []uuid.UUID) (int, error) {
	return r.updateBehaviorGroupActions(ctx, models.DefaultScope(), behaviorGroupID, endpointIDs)
}

func (r *Repository) updateBehaviorGroupActions(ctx context.Context, scope models.Scope, behaviorGroupID uuid.UUID, endpointIDs []uuid.UUID) (int, error) {
	if len(dedupe(endpointIDs)) != len(endpointIDs) {
		return 0, r.fail(ctx, "update_behavior_group_actions",
			&store.ValidationError{Field: "endpoint_ids", Message: "must not contain duplicates"})
	}

	ctx, span := telemetry.Tracer().Start(ctx, "behaviorgroup.UpdateBehaviorGroupActions", trace.WithAttributes(
		attribute.String("scope", scope.String()),
		attribute.String("behavior_group_id", behaviorGroupID.String()),
	))
	defer span.End()

	started := time.Now()
	var (
		plan    reconcile.Plan[uuid.UUID]
		applied int
	)

	err := r.store.Update(ctx, func(tx store.Tx) error {
		g, err := loadOwnedGroup(ctx, tx, scope, behaviorGroupID)
		if err != nil {
			return err
		}

		for _, id := range endpointIDs {
			ep, err := tx.GetEndpoint(ctx, id)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to load endpoint: %w", err)
			}
			if ep == nil || !scope.Owns(ep.AccountID) {
				return store.NotFound("endpoint %s not found", id)
			}
		}

		current, err := tx.ListBehaviorGroupActions(ctx, g.ID)
		if err != nil {
			return fmt.Errorf("failed to list behavior group actions: %w", err)
		}

		plan, err = reconcile.Ordered(actionEntries(current), endpointIDs)
		if err != nil {
			return &store.ValidationError{Field: "endpoint_ids", Message: err.Error()}
		}

		applied, err = reconcile.Apply(ctx, plan, &actionLinks{
			tx:              tx,
			behaviorGroupID: g.ID,
			now:             r.now().UTC(),
		})
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, r.fail(ctx, "update_behavior_group_actions", err)
	}

	span.SetAttributes(attribute.Int("applied", applied))
	r.succeed(ctx, "update_behavior_group_actions")
	r.recordPlan(ctx, linkKindBehaviorGroupAction, plan, started)
	zerolog.Ctx(ctx).Debug().
		Str("behavior_group_id", behaviorGroupID.String()).
		Str("scope", scope.String()).
		Int("inserted", len(plan.Inserts)).
		Int("deleted", len(plan.Deletes)).
		Int("moved", len(plan.Moves)).
		Msg("Reconciled behavior group actions")

	return applied, nil
}

// loadOwnedGroup loads a behavior group and hides it behind NotFound when it
// belongs to another scope.
func loadOwnedGroup(ctx context.Context, tx store.Tx, scope models.Scope, id uuid.UUID) (*models.BehaviorGroup, error) {
	g, err := tx.GetBehaviorGroup(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.NotFound("behavior group %s not found", id)
		}
		return nil, fmt.Errorf("failed to load behavior group: %w", err)
	}
	if !scope.Owns(g.AccountID) {
		return nil, store.NotFound("behavior group %s not found", id)
	}
	return g, nil
}

func (r *Repository) succeed(ctx context.Context, op string) {
	r.metrics.BehaviorGroupOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

// fail records err against op and returns it unchanged.
func (r *Repository) fail(ctx context.Context, op string, err error) error {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	r.metrics.BehaviorGroupOperationsTotal.Add(ctx, 1, attrs)
	r.metrics.BehaviorGroupErrorsTotal.Add(ctx, 1, attrs)

	switch {
	case errors.Is(err, store.ErrNameConflict):
		r.metrics.NameConflictsTotal.Add(ctx, 1, attrs)
	case errors.Is(err, store.ErrIntegrityViolation):
		r.metrics.IntegrityViolationsTotal.Add(ctx, 1, attrs)
	}

	zerolog.Ctx(ctx).Debug().Err(err).Str("operation", op).Msg("Behavior group operation rejected")
	return err
}

func (r *Repository) recordPlan(ctx context.Context, kind string, plan reconcile.Plan[uuid.UUID], started time.Time) {
	attrs := metric.WithAttributes(attribute.String("kind", kind))
	r.metrics.LinksInsertedTotal.Add(ctx, int64(len(plan.Inserts)), attrs)
	r.metrics.LinksDeletedTotal.Add(ctx, int64(len(plan.Deletes)), attrs)
	r.metrics.LinksMovedTotal.Add(ctx, int64(len(plan.Moves)), attrs)
	r.metrics.ReconcileDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
}
