package auth

import (
	"context"

	"github.com/sakif/alive-sleep/internal/model"
)

// RequestContext is the caller as resolved once per request by SyncUser.
// Handlers read it; nothing downstream re-derives the user from cookies.
type RequestContext struct {
	User       *model.User // nil for anonymous requests
	Identity   *Identity
	FirstLogin bool
}

// Authenticated reports whether a local user was resolved.
func (rc RequestContext) Authenticated() bool { return rc.User != nil }

type contextKey struct{}

func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the request's caller. The zero RequestContext
// (anonymous) is returned when SyncUser did not run.
func FromContext(ctx context.Context) RequestContext {
	rc, _ := ctx.Value(contextKey{}).(RequestContext)
	return rc
}
