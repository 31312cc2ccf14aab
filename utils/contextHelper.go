package utils

import (
	"context"

	"github.com/paynetra/reports_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyToken      = appctx.ContextKeyToken
	ContextKeyUserId     = appctx.ContextKeyUserId
	ContextKeyUsername   = appctx.ContextKeyUsername
	ContextKeyRole       = appctx.ContextKeyRole
	ContextKeyClientCode = appctx.ContextKeyClientCode
	ContextKeyRequestId  = appctx.ContextKeyRequestId

	ContextKeyIsAdmin           = appctx.ContextKeyIsAdmin
	ContextKeySkipMerchantScope = appctx.ContextKeySkipMerchantScope
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRole)
}

func GetClientCodeFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyClientCode)
}

func GetRequestIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRequestId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyRole, role)
}

func SetClientCodeInContext(ctx context.Context, clientCode string) context.Context {
	return appctx.Set(ctx, ContextKeyClientCode, clientCode)
}

func SetRequestIdInContext(ctx context.Context, requestId string) context.Context {
	return appctx.Set(ctx, ContextKeyRequestId, requestId)
}

func GetIsAdminFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeyIsAdmin)
}

func SetIsAdminInContext(ctx context.Context, isAdmin bool) context.Context {
	return appctx.Set(ctx, ContextKeyIsAdmin, isAdmin)
}

func GetSkipMerchantScopeFromContext(ctx context.Context) (bool, bool) {
	return appctx.GetBool(ctx, ContextKeySkipMerchantScope)
}

func SetSkipMerchantScopeInContext(ctx context.Context, skip bool) context.Context {
	return appctx.Set(ctx, ContextKeySkipMerchantScope, skip)
}
