package api

import (
	"context"

	"fleet-tracking-service/internal/ports"
)

type principalKey struct{}

// Used when authentication is disabled.
var anonymousAdmin = ports.Principal{Subject: "anonymous", Role: ports.RoleAdmin}

func withPrincipal(ctx context.Context, p ports.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFrom(ctx context.Context) (ports.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(ports.Principal)
	return p, ok
}
