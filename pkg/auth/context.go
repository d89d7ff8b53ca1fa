package auth

import (
	"context"

	"pollboard/pkg/errors"
)

// UserContext is the authenticated identity attached to a request
type UserContext struct {
	UserID string
	Name   string
	Email  string
}

type contextKey struct{}

var userContextKey = contextKey{}

// SetUserInContext attaches the authenticated user to the context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext returns the authenticated user, or an unauthorized
// error when the request never passed authentication.
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
