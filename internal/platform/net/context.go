// Package net carries request scoped values and the JSON envelope shared by transports
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{ name string }

var clientKey = ctxKey{"clock-client"}

// WithClient tags ctx with the clock client that authenticated the request
func WithClient(ctx context.Context, clientID string) context.Context {
	if clientID == "" {
		return ctx
	}
	return context.WithValue(ctx, clientKey, clientID)
}

// ClientID is the authenticated clock client, empty when auth is off
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientKey).(string)
	return id
}

// RequestID is the id chi's RequestID middleware assigned
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }
