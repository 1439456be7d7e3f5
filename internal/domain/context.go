package domain

import "context"

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const (
	storeContextKey  contextKey = "store"
	userIDContextKey contextKey = "user_id"
	roleContextKey   contextKey = "role"
)

// WithStore attaches the store resolved by the domain-lock middleware.
func WithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey, store)
}

// StoreFromContext returns the resolved store, or nil when the request did
// not pass through the domain-lock middleware.
func StoreFromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey).(*Store)
	return store
}

// WithUserID attaches the authenticated dashboard user's id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDContextKey).(string)
	return userID
}

// WithRole attaches the authenticated user's role.
func WithRole(ctx context.Context, role UserRole) context.Context {
	return context.WithValue(ctx, roleContextKey, role)
}

// RoleFromContext returns the authenticated user's role, or "".
func RoleFromContext(ctx context.Context) UserRole {
	role, _ := ctx.Value(roleContextKey).(UserRole)
	return role
}
