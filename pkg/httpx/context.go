package httpx

import "context"

// Principal is the authenticated caller, derived from a verified access token
// and carried on the request context. Handlers never look at sessions or
// globals for identity.
type Principal struct {
	UserID        string
	Username      string
	Role          string
	InstitutionID string
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the caller, if the request went through AuthnMiddleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok && p.UserID != ""
}
