package behaviorgroup

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/wolfeidau/notifyroute/internal/models"
	"github.com/wolfeidau/notifyroute/internal/store"
)

// NamePolicy reports whether behavior group display names must be unique in
// their naming scope. It is evaluated once per repository call.
type NamePolicy func() bool

// EnforceUniqueNames is the NamePolicy used when none is configured.
func EnforceUniqueNames() bool { return true }

// AllowDuplicateNames disables the naming rule.
func AllowDuplicateNames() bool { return false }

// validateUniqueName fails with a NameConflictError when another group in
// (scope, bundleID) already uses displayName. The lookup is exact and case
// sensitive; excludeID lets a group keep its own name on update.
//
// This is a fast pre-check. The store's unique index on rows written with
// enforcement on is what actually settles concurrent writers.
func validateUniqueName(ctx context.Context, tx store.Tx, enforce bool, scope models.Scope, bundleID uuid.UUID, displayName string, excludeID uuid.UUID) error {
	if !enforce {
		return nil
	}

	taken, err := tx.BehaviorGroupNameTaken(ctx, store.NameQuery{
		Scope:       scope,
		BundleID:    bundleID,
		DisplayName: displayName,
		ExcludeID:   excludeID,
	})
	if err != nil {
		return fmt.Errorf("failed to check display name: %w", err)
	}
	if taken {
		return &store.NameConflictError{DisplayName: displayName}
	}

	return nil
}

func validateDisplayName(displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return &store.ValidationError{Field: "display_name", Message: "must not be blank"}
	}
	return nil
}

// validateNewGroup checks the fields create needs before touching the store.
func validateNewGroup(g *models.BehaviorGroup) error {
	if g == nil {
		return &store.ValidationError{Field: "behavior_group", Message: "must not be null"}
	}
	if err := validateDisplayName(g.DisplayName); err != nil {
		return err
	}
	if g.BundleID == uuid.Nil {
		return &store.ValidationError{Field: "bundle_id", Message: "must not be null"}
	}
	return nil
}

// validateGroupUpdate checks the fields update needs before touching the store.
func validateGroupUpdate(g *models.BehaviorGroup) error {
	if g == nil {
		return &store.ValidationError{Field: "behavior_group", Message: "must not be null"}
	}
	if g.ID == uuid.Nil {
		return &store.ValidationError{Field: "id", Message: "must not be null"}
	}
	return validateDisplayName(g.DisplayName)
}
