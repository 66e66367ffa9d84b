// Package requestctx carries per-request values shared by middleware and handlers.
package requestctx

import (
	"context"

	"hrflow/internal/domain/auth"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	actorKey     ctxKey = "actor"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithActor stores the authenticated caller.
func WithActor(ctx context.Context, actor auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor returns the authenticated caller; anonymous callers get the zero Actor.
func GetActor(ctx context.Context) auth.Actor {
	actor, _ := ctx.Value(actorKey).(auth.Actor)
	return actor
}
