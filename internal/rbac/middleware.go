package rbac

import (
	"net/http"
	"strings"
)

var defaultChecker = NewChecker(nil)

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return guard(perm, func(role string) bool { return defaultChecker.Has(role, perm) })
}

// RequireAny enforces that the role has at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return guard(strings.Join(perms, " or "), func(role string) bool { return defaultChecker.Any(role, perms...) })
}

func guard(want string, allowed func(role string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !allowed(role) {
				http.Error(w, "forbidden: needs "+want, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
