package middleware

import "context"

// ctxKey is used for storing values in request context.
type ctxKey string

const (
	userKey ctxKey = "user"
	roleKey ctxKey = "role"
)

// UserKey returns the context key used to store the user subject.
func UserKey() any { return userKey }

// RoleKey returns the context key used to store the user's role.
func RoleKey() any { return roleKey }

// UserFromContext returns the user subject stored in the context.
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the role stored in the context.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(roleKey).(string); ok {
		return v
	}
	return ""
}
