package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"

	sm "github.com/inventia-dev/fieldset/internal/server/middleware"
)

var (
	userKey = sm.UserKey()
	roleKey = sm.RoleKey()
)

// Middleware validates JWT tokens and stores the subject and role in the
// request context.
func Middleware(api huma.API, j *JWT) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		authHdr := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHdr, "Bearer ") {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		token := strings.TrimPrefix(authHdr, "Bearer ")
		claims, err := j.Validate(token)
		if err != nil {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "unauthorized")
			return
		}
		c := context.WithValue(r.Context(), userKey, claims.Subject)
		c = context.WithValue(c, roleKey, claims.Role)
		r = r.WithContext(c)
		next(humachi.NewContext(ctx.Operation(), r, w))
	}
}

// UserFromContext returns the user subject stored in the context.
func UserFromContext(ctx context.Context) string { return sm.UserFromContext(ctx) }
