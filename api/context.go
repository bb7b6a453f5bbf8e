package api

import (
	"context"

	"github.com/gulf-dental-association/member-portal/users"
)

type ctxKey string

const ctxUserKey ctxKey = "USER"

func ctxWithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, ctxUserKey, user)
}

// getUserFromCtx returns the session user resolved by sessionMiddleware.
// The boolean is false for anonymous requests.
func getUserFromCtx(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(ctxUserKey).(users.User)
	return user, ok
}
