package user

import "context"

type contextKey struct{}

// ContextWithActor returns a context carrying the authenticated actor.
// The auth middleware populates it once per request.
func ContextWithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// ActorFromContext extracts the authenticated actor from the context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(contextKey{}).(Actor)
	return a, ok
}
