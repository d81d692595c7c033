package models

import (
	"time"

	"github.com/google/uuid"
)

// EndpointType identifies how an endpoint delivers notifications.
type EndpointType string

const (
	EndpointTypeWebhook           EndpointType = "webhook"
	EndpointTypeEmailSubscription EndpointType = "email_subscription"
	EndpointTypeCamel             EndpointType = "camel"
)

// Endpoint is a delivery target. Its lifecycle is owned by the endpoint
// management collaborator; behavior groups only reference it.
type Endpoint struct {
	ID        uuid.UUID // UUIDv7
	AccountID *string   // nil for default endpoints shared across tenants
	Type      EndpointType
	Name      string
	Enabled   bool
	Created   time.Time
}
