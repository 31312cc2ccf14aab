package models

import (
	"context"

	"github.com/paynetra/reports_backend/appctx"
)

// Actor describes the authenticated caller as seen by the filter core:
// just enough to enforce merchant scoping.
type Actor struct {
	UserId     int
	Username   string
	Role       UserRole
	ClientCode string
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == UserRoleAdmin
}

func ActorFromContext(ctx context.Context) *Actor {
	actor := &Actor{}
	if v, ok := appctx.GetInt(ctx, appctx.ContextKeyUserId); ok {
		actor.UserId = v
	}
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyUsername); ok {
		actor.Username = v
	}
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyRole); ok {
		actor.Role = UserRole(v)
	}
	if v, ok := appctx.GetString(ctx, appctx.ContextKeyClientCode); ok {
		actor.ClientCode = v
	}
	return actor
}
