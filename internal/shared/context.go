package shared

import "context"

// Identity carries the acting user and organization resolved by the external
// auth gateway. The ledger trusts this value and performs no authorization of
// its own.
type Identity struct {
	UserID int64
	OrgID  int64
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. The zero value
// means no identity was supplied.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}
