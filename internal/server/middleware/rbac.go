package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
)

// RBAC enforces access where either the user or their role is allowed.
func RBAC(enf *casbin.Enforcer) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, w := humachi.Unwrap(ctx)
		obj := r.URL.Path
		act := r.Method

		subjects := []string{UserFromContext(r.Context())}
		if role := RoleFromContext(r.Context()); role != "" {
			subjects = append(subjects, role)
		}
		for _, s := range subjects {
			if ok, _ := enf.Enforce(s, obj, act); ok {
				next(ctx)
				return
			}
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	}
}
