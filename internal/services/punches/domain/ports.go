package domain

import (
	"context"
	"encoding/json"
)

// ServicePort is the ingestion port other modules and transports use
type ServicePort interface {
	// Ingest validates and stores each item independently; clientID names
	// the authenticated clock client and may be empty when auth is off
	Ingest(ctx context.Context, clientID string, items []json.RawMessage) (Result, error)
}
