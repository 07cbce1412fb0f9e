package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthChecker guards administrative endpoints.
type AuthChecker interface {
	// Authorized reports whether the request may proceed.
	Authorized(r *http.Request) bool
}

// DenyAll rejects every request. It is the default so that deployments
// must opt in to exposing administrative endpoints.
type DenyAll struct{}

func (DenyAll) Authorized(*http.Request) bool { return false }

// AllowAll accepts every request, for local development.
type AllowAll struct{}

func (AllowAll) Authorized(*http.Request) bool { return true }

// BearerToken authorizes requests carrying a matching bearer token.
type BearerToken struct {
	Token string
}

func (b BearerToken) Authorized(r *http.Request) bool {
	if b.Token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	got, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(b.Token)) == 1
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Authorized(r) {
			s.logger.Warn("unauthorized request", "path", r.URL.Path, "remote", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, statusResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
