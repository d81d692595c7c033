package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

// tx implements store.Tx over a pgx transaction.
type tx struct {
	tx pgx.Tx
}

const behaviorGroupColumns = `g.id, g.account_id, g.bundle_id, g.display_name, g.position, g.created`

func scanBehaviorGroup(row pgx.Row) (*models.BehaviorGroup, error) {
	var g models.BehaviorGroup
	err := row.Scan(&g.ID, &g.AccountID, &g.BundleID, &g.DisplayName, &g.Position, &g.Created)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// nullUUID turns the zero uuid into NULL so optional filters can be written
// as "$n::uuid IS NULL OR ...".
func nullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func (t *tx) GetBundle(ctx context.Context, id uuid.UUID) (*models.Bundle, error) {
	query := `
		SELECT id, name, display_name, created
		FROM bundles
		WHERE id = $1
	`

	var b models.Bundle
	err := t.tx.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.DisplayName, &b.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NotFound("bundle %s not found", id)
		}
		return nil, fmt.Errorf("failed to get bundle: %w", mapPostgresError(err))
	}

	return &b, nil
}

func (t *tx) GetEventType(ctx context.Context, id uuid.UUID) (*models.EventType, error) {
	query := `
		SELECT e.id, e.application_id, e.name, e.display_name, a.bundle_id
		FROM event_types e
		JOIN applications a ON a.id = e.application_id
		WHERE e.id = $1
	`

	var et models.EventType
	err := t.tx.QueryRow(ctx, query, id).Scan(&et.ID, &et.ApplicationID, &et.Name, &et.DisplayName, &et.BundleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NotFound("event type %s not found", id)
		}
		return nil, fmt.Errorf("failed to get event type: %w", mapPostgresError(err))
	}

	return &et, nil
}

func (t *tx) GetEndpoint(ctx context.Context, id uuid.UUID) (*models.Endpoint, error) {
	query := `
		SELECT id, account_id, endpoint_type, name, enabled, created
		FROM endpoints
		WHERE id = $1
	`

	var ep models.Endpoint
	var typ string
	err := t.tx.QueryRow(ctx, query, id).Scan(&ep.ID, &ep.AccountID, &typ, &ep.Name, &ep.Enabled, &ep.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NotFound("endpoint %s not found", id)
		}
		return nil, fmt.Errorf("failed to get endpoint: %w", mapPostgresError(err))
	}
	ep.Type = models.EndpointType(typ)

	return &ep, nil
}

func (t *tx) GetBehaviorGroup(ctx context.Context, id uuid.UUID) (*models.BehaviorGroup, error) {
	query := `SELECT ` + behaviorGroupColumns + ` FROM behavior_groups g WHERE g.id = $1`

	g, err := scanBehaviorGroup(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.NotFound("behavior group %s not found", id)
		}
		return nil, fmt.Errorf("failed to get behavior group: %w", mapPostgresError(err))
	}

	return g, nil
}

// GetBehaviorGroups returns the groups that exist among ids, in ids order.
func (t *tx) GetBehaviorGroups(ctx context.Context, ids []uuid.UUID) ([]*models.BehaviorGroup, error) {
	if len(ids) == 0 {
		return []*models.BehaviorGroup{}, nil
	}

	query := `SELECT ` + behaviorGroupColumns + ` FROM behavior_groups g WHERE g.id = ANY($1::uuid[])`

	groups, err := t.queryBehaviorGroups(ctx, query, uuidStrings(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.BehaviorGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	out := make([]*models.BehaviorGroup, 0, len(groups))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
			delete(byID, id)
		}
	}

	return out, nil
}

func (t *tx) BehaviorGroupNameTaken(ctx context.Context, q store.NameQuery) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM behavior_groups
			WHERE account_id IS NOT DISTINCT FROM $1
			  AND bundle_id = $2
			  AND display_name = $3
			  AND ($4::uuid IS NULL OR id <> $4)
		)
	`

	var taken bool
	err := t.tx.QueryRow(ctx, query, q.Scope.AccountIDPtr(), q.BundleID, q.DisplayName, nullUUID(q.ExcludeID)).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check behavior group name: %w", mapPostgresError(err))
	}

	return taken, nil
}

func (t *tx) CountBehaviorGroups(ctx context.Context, scope models.Scope, bundleID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM behavior_groups
		WHERE account_id IS NOT DISTINCT FROM $1 AND bundle_id = $2
	`

	var count int
	if err := t.tx.QueryRow(ctx, query, scope.AccountIDPtr(), bundleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count behavior groups: %w", mapPostgresError(err))
	}

	return count, nil
}

func (t *tx) InsertBehaviorGroup(ctx context.Context, g *models.BehaviorGroup, uniqueName bool) error {
	query := `
		INSERT INTO behavior_groups (
			id, account_id, bundle_id, display_name, position, created, name_unique
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := t.tx.Exec(ctx, query,
		g.ID,
		g.AccountID,
		g.BundleID,
		g.DisplayName,
		g.Position,
		g.Created,
		uniqueName,
	)
	if err != nil {
		if isNameConflict(err) {
			return &store.NameConflictError{DisplayName: g.DisplayName}
		}
		return fmt.Errorf("failed to insert behavior group: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("behavior_group_id", g.ID.String()).
		Str("bundle_id", g.BundleID.String()).
		Msg("Inserted behavior group")

	return nil
}

func (t *tx) RenameBehaviorGroup(ctx context.Context, id uuid.UUID, displayName string, uniqueName bool) error {
	query := `
		UPDATE behavior_groups
		SET display_name = $2, name_unique = $3
		WHERE id = $1
	`

	result, err := t.tx.Exec(ctx, query, id, displayName, uniqueName)
	if err != nil {
		if isNameConflict(err) {
			return &store.NameConflictError{DisplayName: displayName}
		}
		return fmt.Errorf("failed to rename behavior group: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.NotFound("behavior group %s not found", id)
	}

	return nil
}

// DeleteBehaviorGroup relies on ON DELETE CASCADE to remove link rows.
func (t *tx) DeleteBehaviorGroup(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := t.tx.Exec(ctx, `DELETE FROM behavior_groups WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete behavior group: %w", mapPostgresError(err))
	}

	return result.RowsAffected() > 0, nil
}

func (t *tx) ListBehaviorGroups(ctx context.Context, q store.ListBehaviorGroupsQuery) ([]*models.BehaviorGroup, error) {
	query := `
		SELECT ` + behaviorGroupColumns + `
		FROM behavior_groups g
		WHERE (g.account_id IS NOT DISTINCT FROM $1 OR ($2 AND g.account_id IS NULL))
		  AND ($3::uuid IS NULL OR g.bundle_id = $3)
		  AND ($4::uuid IS NULL OR EXISTS (
			SELECT 1 FROM event_type_behaviors b
			WHERE b.behavior_group_id = g.id AND b.event_type_id = $4
		  ))
		  AND ($5::uuid IS NULL OR EXISTS (
			SELECT 1 FROM behavior_group_actions a
			WHERE a.behavior_group_id = g.id AND a.endpoint_id = $5
		  ))
		ORDER BY g.created DESC, g.id DESC
	`

	groups, err := t.queryBehaviorGroups(ctx, query,
		q.Scope.AccountIDPtr(),
		q.IncludeDefaults,
		nullUUID(q.BundleID),
		nullUUID(q.EventTypeID),
		nullUUID(q.EndpointID),
	)
	if err != nil {
		return nil, err
	}

	if err := t.attachActions(ctx, groups); err != nil {
		return nil, err
	}

	return groups, nil
}

func (t *tx) queryBehaviorGroups(ctx context.Context, query string, args ...any) ([]*models.BehaviorGroup, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query behavior groups: %w", mapPostgresError(err))
	}
	defer rows.Close()

	groups := []*models.BehaviorGroup{}
	for rows.Next() {
		g, err := scanBehaviorGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan behavior group: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating behavior groups: %w", mapPostgresError(err))
	}

	return groups, nil
}

func (t *tx) attachActions(ctx context.Context, groups []*models.BehaviorGroup) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(groups))
	byID := make(map[uuid.UUID]*models.BehaviorGroup, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
		byID[g.ID] = g
	}

	query := `
		SELECT behavior_group_id, endpoint_id, position, created
		FROM behavior_group_actions
		WHERE behavior_group_id = ANY($1::uuid[])
		ORDER BY behavior_group_id, position
	`

	actions, err := t.queryActions(ctx, query, uuidStrings(ids))
	if err != nil {
		return err
	}

	for _, a := range actions {
		g := byID[a.BehaviorGroupID]
		g.Actions = append(g.Actions, a)
	}

	return nil
}

func (t *tx) ListEventTypeBehaviors(ctx context.Context, eventTypeID uuid.UUID, scope models.Scope) ([]models.EventTypeBehavior, error) {
	query := `
		SELECT b.event_type_id, b.behavior_group_id, b.created
		FROM event_type_behaviors b
		JOIN behavior_groups g ON g.id = b.behavior_group_id
		WHERE b.event_type_id = $1 AND g.account_id IS NOT DISTINCT FROM $2
		ORDER BY b.behavior_group_id::text
	`

	rows, err := t.tx.Query(ctx, query, eventTypeID, scope.AccountIDPtr())
	if err != nil {
		return nil, fmt.Errorf("failed to query event type behaviors: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var out []models.EventTypeBehavior
	for rows.Next() {
		var b models.EventTypeBehavior
		if err := rows.Scan(&b.EventTypeID, &b.BehaviorGroupID, &b.Created); err != nil {
			return nil, fmt.Errorf("failed to scan event type behavior: %w", err)
		}
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event type behaviors: %w", mapPostgresError(err))
	}

	return out, nil
}

func (t *tx) InsertEventTypeBehavior(ctx context.Context, b models.EventTypeBehavior) error {
	query := `
		INSERT INTO event_type_behaviors (event_type_id, behavior_group_id, created)
		VALUES ($1, $2, $3)
	`

	if _, err := t.tx.Exec(ctx, query, b.EventTypeID, b.BehaviorGroupID, b.Created); err != nil {
		return fmt.Errorf("failed to insert event type behavior: %w", mapPostgresError(err))
	}

	return nil
}

func (t *tx) DeleteEventTypeBehavior(ctx context.Context, eventTypeID, behaviorGroupID uuid.UUID) error {
	query := `DELETE FROM event_type_behaviors WHERE event_type_id = $1 AND behavior_group_id = $2`

	if _, err := t.tx.Exec(ctx, query, eventTypeID, behaviorGroupID); err != nil {
		return fmt.Errorf("failed to delete event type behavior: %w", mapPostgresError(err))
	}

	return nil
}

func (t *tx) ListEventTypesByBehaviorGroup(ctx context.Context, behaviorGroupID uuid.UUID) ([]*models.EventType, error) {
	query := `
		SELECT e.id, e.application_id, e.name, e.display_name, a.bundle_id
		FROM event_type_behaviors b
		JOIN event_types e ON e.id = b.event_type_id
		JOIN applications a ON a.id = e.application_id
		WHERE b.behavior_group_id = $1
		ORDER BY e.name, e.id::text
	`

	rows, err := t.tx.Query(ctx, query, behaviorGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event types: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var out []*models.EventType
	for rows.Next() {
		var et models.EventType
		if err := rows.Scan(&et.ID, &et.ApplicationID, &et.Name, &et.DisplayName, &et.BundleID); err != nil {
			return nil, fmt.Errorf("failed to scan event type: %w", err)
		}
		out = append(out, &et)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event types: %w", mapPostgresError(err))
	}

	return out, nil
}

func (t *tx) ListBehaviorGroupActions(ctx context.Context, behaviorGroupID uuid.UUID) ([]models.BehaviorGroupAction, error) {
	query := `
		SELECT behavior_group_id, endpoint_id, position, created
		FROM behavior_group_actions
		WHERE behavior_group_id = $1
		ORDER BY position
	`

	return t.queryActions(ctx, query, behaviorGroupID)
}

func (t *tx) queryActions(ctx context.Context, query string, args ...any) ([]models.BehaviorGroupAction, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query behavior group actions: %w", mapPostgresError(err))
	}
	defer rows.Close()

	var out []models.BehaviorGroupAction
	for rows.Next() {
		var a models.BehaviorGroupAction
		if err := rows.Scan(&a.BehaviorGroupID, &a.EndpointID, &a.Position, &a.Created); err != nil {
			return nil, fmt.Errorf("failed to scan behavior group action: %w", err)
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating behavior group actions: %w", mapPostgresError(err))
	}

	return out, nil
}

func (t *tx) InsertBehaviorGroupAction(ctx context.Context, a models.BehaviorGroupAction) error {
	query := `
		INSERT INTO behavior_group_actions (behavior_group_id, endpoint_id, position, created)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := t.tx.Exec(ctx, query, a.BehaviorGroupID, a.EndpointID, a.Position, a.Created); err != nil {
		return fmt.Errorf("failed to insert behavior group action: %w", mapPostgresError(err))
	}

	return nil
}

func (t *tx) MoveBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID, position int) error {
	query := `
		UPDATE behavior_group_actions
		SET position = $3
		WHERE behavior_group_id = $1 AND endpoint_id = $2
	`

	result, err := t.tx.Exec(ctx, query, behaviorGroupID, endpointID, position)
	if err != nil {
		return fmt.Errorf("failed to move behavior group action: %w", mapPostgresError(err))
	}

	if result.RowsAffected() == 0 {
		return store.NotFound("behavior group action (%s, %s) not found", behaviorGroupID, endpointID)
	}

	return nil
}

func (t *tx) DeleteBehaviorGroupAction(ctx context.Context, behaviorGroupID, endpointID uuid.UUID) error {
	query := `DELETE FROM behavior_group_actions WHERE behavior_group_id = $1 AND endpoint_id = $2`

	if _, err := t.tx.Exec(ctx, query, behaviorGroupID, endpointID); err != nil {
		return fmt.Errorf("failed to delete behavior group action: %w", mapPostgresError(err))
	}

	return nil
}
