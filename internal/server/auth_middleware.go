package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

const authTypeOpen = "open"

type routeAccess int

const (
	accessPublic routeAccess = iota
	accessMember
	accessWriter
)

// routeAccessFor classifies a request. Reads of the blog list and cover
// images stay public. Blog writes and user provisioning need admin access;
// everything else needs a signed-in caller.
func routeAccessFor(r *http.Request) routeAccess {
	path := r.URL.Path
	switch {
	case path == "/health":
		return accessPublic
	case r.Method == http.MethodPost && (path == "/api/login" || path == "/api/logout"):
		return accessPublic
	case r.Method == http.MethodGet && (path == "/api/blog/getBlog" || strings.HasPrefix(path, "/api/blog/images/")):
		return accessPublic
	case strings.HasPrefix(path, "/api/blog/"), strings.HasPrefix(path, "/api/admin/"):
		return accessWriter
	default:
		return accessMember
	}
}

func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := routeAccessFor(r)

		required, err := s.authService.AuthRequired(r.Context(), s.apiToken != "", s.clock())
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		if !required {
			next.ServeHTTP(w, r.WithContext(contextWithAuthPrincipal(r.Context(), authPrincipal{AuthType: authTypeOpen})))
			return
		}

		principal, ok, err := s.resolvePrincipal(r)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		if !ok {
			if access == accessPublic {
				next.ServeHTTP(w, r)
				return
			}
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("unauthorized")))
			return
		}
		if access == accessWriter && !principal.canWrite() {
			s.writeErrorReq(w, r, http.StatusForbidden, forbidden(fmt.Errorf("admin access required")))
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithAuthPrincipal(r.Context(), principal)))
	})
}

// resolvePrincipal matches the bearer token against the API token first and
// then against live sessions.
func (s *Server) resolvePrincipal(r *http.Request) (authPrincipal, bool, error) {
	token := bearerToken(r)
	if token == "" {
		return authPrincipal{}, false, nil
	}
	if s.apiToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.apiToken)) == 1 {
		return authPrincipal{AuthType: authTypeBearer}, true, nil
	}

	user, err := s.authService.AuthenticateSessionToken(r.Context(), token, s.clock())
	if err != nil {
		return authPrincipal{}, false, err
	}
	if user == nil {
		return authPrincipal{}, false, nil
	}
	return authPrincipal{AuthType: authTypeSession, User: user}, true, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}
