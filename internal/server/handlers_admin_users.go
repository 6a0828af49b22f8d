package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"blogdesk/internal/api"
	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/store"
)

func (s *Server) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.AdminUserCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	email, err := internalauth.NormalizeEmail(req.Profile.Email)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidArgument))
		return
	}
	if err := internalauth.ValidatePassword(req.Password); err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidArgument))
		return
	}
	hash, err := internalauth.HashPassword(req.Password)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, err)
		return
	}

	profile := req.Profile
	profile.Email = email
	created, err := s.store.CreateUser(r.Context(), profile, hash, s.clock())
	if err != nil {
		if isUniqueConstraint(err) {
			s.writeErrorReq(w, r, http.StatusConflict, makeAPIError(http.StatusConflict, "conflict", ErrCodeConflict, fmt.Errorf("email already exists")))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}

	s.authService.InvalidateAuthRequiredCache()
	s.log().Info("user provisioned", "email", created.Email, "access", created.Profile.Access)
	s.writeJSON(w, http.StatusCreated, toAPIAdminUser(*created))
}

func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	resp := make([]api.AdminUser, 0, len(users))
	for _, user := range users {
		resp = append(resp, toAPIAdminUser(user))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminSetUserDisabled(w http.ResponseWriter, r *http.Request) {
	email, ok := s.pathEmailOrBadRequest(w, r)
	if !ok {
		return
	}

	var req api.AdminUserSetDisabledRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	updated, err := s.store.SetUserDisabled(r.Context(), email, req.Disabled, s.clock())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if updated == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return
	}

	s.authService.InvalidateAuthRequiredCache()
	s.writeJSON(w, http.StatusOK, toAPIAdminUser(*updated))
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	email, ok := s.pathEmailOrBadRequest(w, r)
	if !ok {
		return
	}

	deleted, err := s.store.DeleteUser(r.Context(), email)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if !deleted {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("user not found"), ErrCodeUserNotFound))
		return
	}

	s.authService.InvalidateAuthRequiredCache()
	s.writeJSON(w, http.StatusOK, api.AdminUserDeleteResponse{Email: email, Deleted: true})
}

func (s *Server) pathEmailOrBadRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := url.PathUnescape(r.PathValue("email"))
	if err != nil {
		raw = r.PathValue("email")
	}
	email, err := internalauth.NormalizeEmail(raw)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidArgument))
		return "", false
	}
	return email, true
}

func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toAPIAdminUser(user store.AuthUser) api.AdminUser {
	return api.AdminUser{
		ID:        user.ID,
		Email:     user.Email,
		Profile:   user.PublicProfile(),
		Disabled:  user.Disabled,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
