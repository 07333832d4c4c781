// Package authctx carries the per-request resolved identity through
// request context. The identity is written once by the resolver
// middleware chain and read-only for everything downstream.
package authctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/seb-lewis/startupcrm/internal/auth/domain"
)

// OrgRef is the minimal projection of the active organization attached
// to a request.
type OrgRef struct {
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name"`
	Slug string       `json:"slug"`
}

// Identity is the tagged result of the auth resolver. A zero Identity
// is unauthenticated; an authenticated Identity always carries a
// non-nil user and session. Org is set only after the organization
// resolver validated membership.
type Identity struct {
	authenticated bool
	user          *authdomain.User
	session       *authdomain.Session
	org           *OrgRef
}

func Unauthenticated() Identity {
	return Identity{}
}

func Authenticated(user *authdomain.User, session *authdomain.Session) Identity {
	if user == nil || session == nil {
		return Identity{}
	}
	return Identity{authenticated: true, user: user, session: session}
}

// WithOrg returns a copy of the identity with the active organization
// attached. It is a no-op for unauthenticated identities.
func (id Identity) WithOrg(org *OrgRef) Identity {
	if !id.authenticated {
		return id
	}
	id.org = org
	return id
}

func (id Identity) IsAuthenticated() bool {
	return id.authenticated
}

// User returns the resolved user, or nil when unauthenticated.
func (id Identity) User() *authdomain.User {
	return id.user
}

// Session returns the resolved session, or nil when unauthenticated.
func (id Identity) Session() *authdomain.Session {
	return id.session
}

// Org returns the active organization projection, or nil when no
// organization is attached.
func (id Identity) Org() *OrgRef {
	if !id.authenticated {
		return nil
	}
	return id.org
}

func (id Identity) IsAdmin() bool {
	return id.authenticated && id.user.IsAdmin
}

type identityKey struct{}

// WithIdentity stores the identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity resolved for this request. The
// second return is false when the resolver chain has not run.
func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// OrgIDFromContext returns the active organization ID, if one is attached.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := FromContext(ctx)
	if !ok || id.Org() == nil {
		return 0, false
	}
	return id.Org().ID, true
}
