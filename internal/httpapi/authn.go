package httpapi

import (
	"net/http"
	"strings"

	"guardpost.dev/internal/auth"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// withAuth reconstructs the request principal from the bearer token, once
// per request. It never rejects: a missing, malformed or expired token just
// leaves the request anonymous, and the authority guards downstream turn
// that into a 403 on protected routes. Public routes are unaffected either
// way.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.codec == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(authHeader)
		if !strings.HasPrefix(header, bearerPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		token := header[len(bearerPrefix):]

		claims, err := a.codec.Verify(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		principal := auth.PrincipalFromClaims(claims)
		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}

// Middleware guards an http.Handler.
type Middleware func(http.Handler) http.Handler

// RequireAuthority admits only principals carrying the named authority.
func RequireAuthority(name string) Middleware {
	return requireFunc(func(p auth.Principal) bool {
		return p.HasAuthority(name)
	})
}

// RequireAnyAuthority admits principals carrying at least one of names.
func RequireAnyAuthority(names ...string) Middleware {
	return requireFunc(func(p auth.Principal) bool {
		return p.HasAnyAuthority(names...)
	})
}

// RequireAllAuthorities admits principals carrying every one of names.
func RequireAllAuthorities(names ...string) Middleware {
	return requireFunc(func(p auth.Principal) bool {
		return p.HasAllAuthorities(names...)
	})
}

// DenyAll rejects every request, authenticated or not.
func DenyAll() Middleware {
	return requireFunc(func(auth.Principal) bool { return false })
}

// requireFunc evaluates allow against the context principal before invoking
// the handler. An anonymous request evaluates against the zero principal, so
// a route requiring any authority denies it; the handler is never reached on
// denial.
func requireFunc(allow func(auth.Principal) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := auth.PrincipalFromContext(r.Context())
			if !allow(principal) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, r, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
