package models

import (
	"time"

	"github.com/google/uuid"
)

// BehaviorGroup is a named routing policy inside a bundle. A nil AccountID
// marks a default group shared by every tenant.
type BehaviorGroup struct {
	ID          uuid.UUID // UUIDv7
	AccountID   *string
	BundleID    uuid.UUID // immutable after creation
	DisplayName string
	Position    int
	Created     time.Time

	// Actions is populated by read operations, ordered by position.
	Actions []BehaviorGroupAction
}

// Scope returns the naming scope the group lives in.
func (g *BehaviorGroup) Scope() Scope {
	if g.AccountID == nil {
		return DefaultScope()
	}
	return TenantScope(*g.AccountID)
}

// EventTypeBehavior links an event type to a behavior group.
type EventTypeBehavior struct {
	EventTypeID     uuid.UUID
	BehaviorGroupID uuid.UUID
	Created         time.Time
}

// BehaviorGroupAction links a behavior group to an endpoint. Position is the
// 0-based ordinal of the action within the group's action list.
type BehaviorGroupAction struct {
	BehaviorGroupID uuid.UUID
	EndpointID      uuid.UUID
	Position        int
	Created         time.Time
}
