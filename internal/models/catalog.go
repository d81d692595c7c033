package models

import (
	"time"

	"github.com/google/uuid"
)

// Bundle groups applications and behavior groups. Bundles are created by the
// catalog collaborator and are immutable for the purposes of this module.
type Bundle struct {
	ID          uuid.UUID // UUIDv7
	Name        string    // unique system-wide
	DisplayName string
	Created     time.Time
}

// Application belongs to a bundle and owns event types.
type Application struct {
	ID          uuid.UUID // UUIDv7
	BundleID    uuid.UUID // FK to bundles
	Name        string
	DisplayName string
	Created     time.Time
}

// EventType is something that can happen inside an application.
type EventType struct {
	ID            uuid.UUID // UUIDv7
	ApplicationID uuid.UUID // FK to applications
	Name          string
	DisplayName   string

	// BundleID is resolved through the owning application and is never
	// persisted on the event type itself.
	BundleID uuid.UUID
}
