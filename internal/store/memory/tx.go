package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

// tx implements store.Tx over a state snapshot.
type tx struct {
	st       *state
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error) {
	b, exists := t.st.bundles[id]
	if !exists {
		return nil, store.NotFound("bundle %s not found", id)
	}
	return &b, nil
}

func (t *tx) GetEventType(ctx context.Context, id uuid.UUID) (*models.EventType, error) {
	et, exists := t.st.eventTypes[id]
	if !exists {
		return nil, store.NotFound("event type %s not found", id)
	}
	app, exists := t.st.applications[et.ApplicationID]
	if !exists {
		return nil, store.NotFound("application %s not found", et.ApplicationID)
	}
	et.BundleID = app.BundleID
	return &et, nil
}

func (t *tx) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.Endpoint, error) {
	ep, exists := t.st.endpoints[id]
	if !exists {
		return nil, store.NotFound("endpoint %s not found", id)
	}
	ep.AccountID = cloneAccountID(ep.AccountID)
	return &ep, nil
}

func (t *tx) GetBehaviorGroup(ctx context.Context, id uuid.UUID) (*models.BehaviorGroup, error) {
	row, exists := t.st.groups[id]
	if !exists {
		return nil, store.NotFound("behavior group %s not found", id)
	}
	g := row.group
	g.AccountID = cloneAccountID(g.AccountID)
	return &g, nil
}

// GetBehaviorGroups returns the groups that exist among ids, in ids order.
// Missing ids are skipped.
func (t *tx) GetBehaviorGroups(ctx context.Context, ids []uuid.UUID) ([]*models.BehaviorGroup, error) {
	out := make([]*models.BehaviorGroup, 0, len(ids))
	for _, id := range ids {
		row, exists := t.st.groups[id]
		if !exists {
			continue
		}
		g := row.group
		g.AccountID = cloneAccountID(g.AccountID)
		out = append(out, &g)
	}
	return out, nil
}

func (t *tx) BehaviorGroupNameTaken(ctx context.Context, q store.NameQuery) (bool, error) {
	for id, row := range t.st.groups {
		if id == q.ExcludeID {
			continue
		}
		g := row.group
		if g.BundleID == q.BundleID && g.DisplayName == q.DisplayName && q.Scope.Owns(g.AccountID) {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CountBehaviorGroups(ctx context.Context, scope models.Scope, bundleID uuid.UUID) (int, error) {
	count := 0
	for _, row := range t.st.groups {
		if row.group.BundleID == bundleID && scope.Owns(row.group.AccountID) {
			count++
		}
	}
	return count, nil
}

// checkUniqueName emulates the partial unique index on
// (account_id, bundle_id, display_name) WHERE name_unique.
func (t *tx) checkUniqueName(g models.BehaviorGroup) error {
	scope := g.Scope()
	for id, row := range t.st.groups {
		if id == g.ID || !row.nameUnique {
			continue
		}
		other := row.group
		if other.BundleID == g.BundleID && other.DisplayName == g.DisplayName && scope.Owns(other.AccountID) {
			return &store.NameConflictError{DisplayName: g.DisplayName}
		}
	}
	return nil
}

func (t *tx) InsertBehaviorGroup(ctx context.Context, g *models.BehaviorGroup, uniqueName bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.groups[g.ID]; exists {
		return fmt.Errorf("behavior group %s: %w", g.ID, store.ErrAlreadyExists)
	}
	if _, exists := t.st.bundles[g.BundleID]; !exists {
		return store.NotFound("bundle_id not found")
	}

	row := groupRow{group: *g, nameUnique: uniqueName}
	row.group.AccountID = cloneAccountID(g.AccountID)
	row.group.Actions = nil
	if uniqueName {
		if err := t.checkUniqueName(row.group); err != nil {
			return err
		}
	}

	t.st.groups[g.ID] = row
	return nil
}

func (t *tx) RenameBehaviorGroup(ctx context.Context, id uuid.UUID, displayName string, uniqueName bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	row, exists := t.st.groups[id]
	if !exists {
		return store.NotFound("behavior group %s not found", id)
	}

	row.group.DisplayName = displayName
	row.nameUnique = uniqueName
	if uniqueName {
		if err := t.checkUniqueName(row.group); err != nil {
			return err
		}
	}

	t.st.groups[id] = row
	return nil
}

func (t *tx) DeleteBehaviorGroup(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := t.writable(); err != nil {
		return false, err
	}
	if _, exists := t.st.groups[id]; !exists {
		return false, nil
	}

	for key := range t.st.behaviors {
		if key.behaviorGroupID == id {
			delete(t.st.behaviors, key)
		}
	}
	for key := range t.st.actions {
		if key.behaviorGroupID == id {
			delete(t.st.actions, key)
		}
	}
	delete(t.st.groups, id)

	return true, nil
}

func (t *tx) ListBehaviorGroups(ctx context.Context, q store.ListBehaviorGroupsQuery) ([]*models.BehaviorGroup, error) {
	var out []*models.BehaviorGroup
	for id, row := range t.st.groups {
		g := row.group
		visible := q.Scope.Owns(g.AccountID) || (q.IncludeDefaults && g.AccountID == nil)
		if !visible {
			continue
		}
		if q.BundleID != uuid.Nil && g.BundleID != q.BundleID {
			continue
		}
		if q.EventTypeID != uuid.Nil {
			if _, linked := t.st.behaviors[behaviorKey{q.EventTypeID, id}]; !linked {
				continue
			}
		}
		if q.EndpointID != uuid.Nil {
			if _, linked := t.st.actions[actionKey{id, q.EndpointID}]; !linked {
				continue
			}
		}

		g.AccountID = cloneAccountID(g.AccountID)
		g.Actions = t.actionsFor(id)
		out = append(out, &g)
	}

	sortGroups(out)
	return out, nil
}

func (t *tx) ListEventTypeBehaviors(ctx context.Context, eventTypeID uuid.UUID, scope models.Scope) ([]models.EventTypeBehavior, error) {
	var out []models.EventTypeBehavior
	for key, b := range t.st.behaviors {
		if key.eventTypeID != eventTypeID {
			continue
		}
		row, exists := t.st.groups[key.behaviorGroupID]
		if !exists || !scope.Owns(row.group.AccountID) {
			continue
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].BehaviorGroupID.String() < out[j].BehaviorGroupID.String()
	})
	return out, nil
}

func (t *tx) InsertEventTypeBehavior(ctx context.Context, b models.EventTypeBehavior) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.eventTypes[b.EventTypeID]; !exists {
		return store.NotFound("event type %s not found", b.EventTypeID)
	}
	if _, exists := t.st.groups[b.BehaviorGroupID]; !exists {
		return store.NotFound("behavior group %s not found", b.BehaviorGroupID)
	}

	key := behaviorKey{b.EventTypeID, b.BehaviorGroupID}
	if _, exists := t.st.behaviors[key]; exists {
		return fmt.Errorf("event type behavior (%s, %s): %w", b.EventTypeID, b.BehaviorGroupID, store.ErrAlreadyExists)
	}

	t.st.behaviors[key] = b
	return nil
}

func (t *tx) DeleteEventTypeBehavior(ctx context.Context, eventTypeID, behaviorGroupID uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.st.behaviors, behaviorKey{eventTypeID, behaviorGroupID})
	return nil
}

// ListEventTypesByBehaviorGroup returns linked event types ordered by name.
func (t *tx) ListEventTypesByBehaviorGroup(ctx context.Context, behaviorGroupID uuid.UUID) ([]*models.EventType, error) {
	var out []*models.EventType
	for key := range t.st.behaviors {
		if key.behaviorGroupID != behaviorGroupID {
			continue
		}
		et, err := t.GetEventType(ctx, key.eventTypeID)
		if err != nil {
			return nil, err
		}
		out = append(out, et)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (t *tx) actionsFor(behaviorGroupID uuid.UUID) []models.BehaviorGroupAction {
	var out []models.BehaviorGroupAction
	for key, a := range t.st.actions {
		if key.behaviorGroupID == behaviorGroupID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

func (t *tx) ListBehaviorGroupActions(ctx context.Context, behaviorGroupID uuid.UUID) ([]models.BehaviorGroupAction, error) {
	return t.actionsFor(behaviorGroupID), nil
}

func (t *tx) InsertBehaviorGroupAction(ctx context.Context, a models.BehaviorGroupAction) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists := t.st.groups[a.BehaviorGroupID]; !exists {
		return store.NotFound("behavior group %s not found", a.BehaviorGroupID)
	}
	if _, exists := t.st.endpoints[a.EndpointID]; !exists {
		return store.NotFound("endpoint %s not found", a.EndpointID)
	}

	key := actionKey{a.BehaviorGroupID, a.EndpointID}
	if _, exists := t.st.actions[key]; exists {
		return fmt.Errorf("behavior group action (%s, %s): %w", a.BehaviorGroupID, a.EndpointID, store.ErrAlreadyExists)
	}

	t.st.actions[key] = a
	return nil
}

func (t *tx) MoveBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID, position int) error {
	if err := t.writable(); err != nil {
		return err
	}
	key := actionKey{behaviorGroupID, endpointID}
	a, exists := t.st.actions[key]
	if !exists {
		return store.NotFound("behavior group action (%s, %s) not found", behaviorGroupID, endpointID)
	}

	a.Position = position
	t.st.actions[key] = a
	return nil
}

func (t *tx) DeleteBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID) error {
	if err := t.writable(); err != nil {
		return err
	}
	delete(t.st.actions, actionKey{behaviorGroupID, endpointID})
	return nil
}
