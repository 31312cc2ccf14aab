package appctx

import "context"

// ContextKey is the shared type for all context keys in this codebase.
// Keeping it in a tiny package avoids import cycles (config <-> utils).
type ContextKey string

func (c ContextKey) String() string { return string(c) }

var (
	ContextKeyToken      = ContextKey("Token")
	ContextKeyUserId     = ContextKey("UserId")
	ContextKeyUsername   = ContextKey("Username")
	ContextKeyRole       = ContextKey("Role")
	ContextKeyClientCode = ContextKey("ClientCode")
	ContextKeyRequestId  = ContextKey("RequestId")

	// ContextKeyIsAdmin is true for admin users. Used for merchant-scope bypass.
	ContextKeyIsAdmin = ContextKey("IsAdmin")

	// ContextKeySkipMerchantScope forces merchant scoping to be disabled for the request.
	// Use sparingly (internal jobs only).
	ContextKeySkipMerchantScope = ContextKey("SkipMerchantScope")
)

func GetString(ctx context.Context, key ContextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok
}

func GetBool(ctx context.Context, key ContextKey) (bool, bool) {
	v, ok := ctx.Value(key).(bool)
	return v, ok
}

func GetInt(ctx context.Context, key ContextKey) (int, bool) {
	v, ok := ctx.Value(key).(int)
	return v, ok
}

func Set(ctx context.Context, key ContextKey, value any) context.Context {
	return context.WithValue(ctx, key, value)
}
