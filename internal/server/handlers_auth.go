package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"blogdesk/internal/api"
	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/models"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		s.writeErrorReq(w, r, http.StatusNotImplemented, notImplemented(fmt.Errorf("login not supported")))
		return
	}

	var req api.LoginRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	now := s.clock()
	limiterKey := loginAttemptKey(req.Email, r)
	if !s.loginLimiter.Allow(limiterKey, now) {
		s.writeErrorReq(w, r, http.StatusTooManyRequests, exhausted(fmt.Errorf("too many login attempts; retry later")))
		return
	}

	session, err := s.authService.Login(r.Context(), req.Email, req.Password, now)
	if err != nil {
		message := strings.ToLower(err.Error())
		switch {
		case errors.Is(err, internalauth.ErrInvalidCredentials):
			s.loginLimiter.Fail(limiterKey, now)
			s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(internalauth.ErrInvalidCredentials))
		case strings.Contains(message, "email") || strings.Contains(message, "password"):
			s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidArgument))
		default:
			s.writeStoreError(w, r, err)
		}
		return
	}
	s.loginLimiter.Succeed(limiterKey)

	s.log().Info("user logged in", "email", session.User.Email, "access", session.User.Access)
	s.writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" && token != s.apiToken {
		if err := s.authService.RevokeSessionToken(r.Context(), token, s.clock()); err != nil {
			s.writeStoreError(w, r, err)
			return
		}
	}
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := authPrincipalFromContext(r.Context())
	if !ok {
		s.writeErrorReq(w, r, http.StatusUnauthorized, unauthorized(fmt.Errorf("unauthorized")))
		return
	}
	if principal.User == nil {
		// API token and open mode act with admin rights but carry no account.
		s.writeJSON(w, http.StatusOK, models.Profile{Name: principal.AuthType, Access: models.AccessAdmin})
		return
	}
	s.writeJSON(w, http.StatusOK, principal.User.PublicProfile())
}

func loginAttemptKey(email string, r *http.Request) string {
	user := strings.ToLower(strings.TrimSpace(email))
	if user == "" {
		user = "<empty>"
	}
	ip := requestClientIP(r)
	if ip == "" {
		ip = "<unknown>"
	}
	return ip + "|" + user
}

func requestClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remote)
	if err == nil {
		return strings.TrimSpace(host)
	}
	return remote
}
