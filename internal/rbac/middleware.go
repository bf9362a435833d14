package rbac

import (
	"net/http"
)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, role string) bool {
		return defaultChecker.Has(role, perm)
	})
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, role string) bool {
		return defaultChecker.Any(role, perms...)
	})
}

// RequireOwnerOr lets the request through when isOwner says the caller owns the resource,
// or when the caller's role grants perm.
func RequireOwnerOr(perm string, isOwner func(r *http.Request) bool) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, role string) bool {
		return isOwner(r) || defaultChecker.Has(role, perm)
	})
}

func guard(allow func(r *http.Request, role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allow(r, role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
