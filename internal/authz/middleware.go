// Package authz implements the role gate and the per-course visibility check
// that sit in front of every protected endpoint.
package authz

import (
	"net/http"

	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Middleware wires session resolution and the role gate for HTTP routes.
type Middleware struct {
	Resolver *shared.SessionResolver
}

// Require resolves the bearer session and enforces membership in the given
// role set before the handler runs. An empty set admits any authenticated
// session. Both the anonymous and the wrong-role case answer 401 with a
// generic body; the upstream API never distinguished them.
func (m Middleware) Require(roles ...shared.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.Resolver.Resolve(r)
			if sess == nil {
				httpx.Message(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !sess.Role.In(roles) {
				httpx.Message(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := shared.ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
