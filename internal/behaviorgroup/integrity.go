package behaviorgroup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

// checkBehaviorGroupsBelongToEventTypeBundle collects every group whose bundle
// differs from the event type's bundle. Nothing may be linked unless the
// whole set passes.
func checkBehaviorGroupsBelongToEventTypeBundle(eventType *models.EventType, groups []*models.BehaviorGroup) error {
	var offending []uuid.UUID
	for _, g := range groups {
		if g.BundleID != eventType.BundleID {
			offending = append(offending, g.ID)
		}
	}

	if len(offending) == 0 {
		return nil
	}

	sort.Slice(offending, func(i, j int) bool {
		return bytes.Compare(offending[i][:], offending[j][:]) < 0
	})

	return &store.IntegrityViolationError{
		EventTypeID:      eventType.ID,
		BehaviorGroupIDs: offending,
	}
}

// resolveOwnedGroups loads the distinct groups named by ids, failing with
// NotFound when one is missing or is not owned by scope.
func resolveOwnedGroups(ctx context.Context, tx store.Tx, scope models.Scope, ids []uuid.UUID) ([]*models.BehaviorGroup, error) {
	distinct := dedupe(ids)

	groups, err := tx.GetBehaviorGroups(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("failed to load behavior groups: %w", err)
	}

	found := make(map[uuid.UUID]*models.BehaviorGroup, len(groups))
	for _, g := range groups {
		if scope.Owns(g.AccountID) {
			found[g.ID] = g
		}
	}

	out := make([]*models.BehaviorGroup, 0, len(distinct))
	for _, id := range distinct {
		g, ok := found[id]
		if !ok {
			return nil, store.NotFound("behavior group %s not found", id)
		}
		out = append(out, g)
	}

	return out, nil
}

// loadEventType resolves an event type together with its bundle.
func loadEventType(ctx context.Context, tx store.Tx, id uuid.UUID) (*models.EventType, error) {
	et, err := tx.GetEventType(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.NotFound("event type %s not found", id)
		}
		return nil, fmt.Errorf("failed to load event type: %w", err)
	}
	return et, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
