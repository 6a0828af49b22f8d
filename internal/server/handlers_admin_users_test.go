package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"blogdesk/internal/api"
	"blogdesk/internal/models"
)

func adminRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAdminUserLifecycle(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	// Open mode lets the first account be provisioned without credentials.
	w := adminRequest(t, h, http.MethodPost, "/api/admin/users", "",
		`{"profile":{"email":"Root@Example.com","name":"Root","access":"admin"},"password":"password-123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created api.AdminUser
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created user: %v", err)
	}
	if created.Email != "root@example.com" || created.Profile.Name != "Root" || created.Disabled {
		t.Fatalf("unexpected created user %+v", created)
	}

	w = adminRequest(t, h, http.MethodPost, "/api/admin/users", "",
		`{"profile":{"email":"second@example.com"},"password":"password-123"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 once a user exists, got %d", w.Code)
	}

	w = adminRequest(t, h, http.MethodPost, "/api/login", "", `{"email":"root@example.com","password":"password-123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d (%s)", w.Code, w.Body.String())
	}
	var session api.LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	token := session.Token

	w = adminRequest(t, h, http.MethodPost, "/api/admin/users", token,
		`{"profile":{"email":"member@example.com","access":"member"},"password":"password-123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	w = adminRequest(t, h, http.MethodPost, "/api/admin/users", token,
		`{"profile":{"email":"MEMBER@example.com"},"password":"password-123"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", w.Code)
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeConflict {
		t.Fatalf("expected error_code %d, got %d", ErrCodeConflict, errResp.ErrorCode)
	}

	w = adminRequest(t, h, http.MethodGet, "/api/admin/users", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var users []api.AdminUser
	if err := json.Unmarshal(w.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	w = adminRequest(t, h, http.MethodPatch, "/api/admin/users/member@example.com", token, `{"disabled":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("disable: %d (%s)", w.Code, w.Body.String())
	}
	var disabled api.AdminUser
	if err := json.Unmarshal(w.Body.Bytes(), &disabled); err != nil {
		t.Fatalf("decode disabled user: %v", err)
	}
	if !disabled.Disabled {
		t.Fatal("expected user to be disabled")
	}

	w = adminRequest(t, h, http.MethodPost, "/api/login", "", `{"email":"member@example.com","password":"password-123"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("disabled user should not log in, got %d", w.Code)
	}

	w = adminRequest(t, h, http.MethodDelete, "/api/admin/users/member@example.com", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d (%s)", w.Code, w.Body.String())
	}
	w = adminRequest(t, h, http.MethodDelete, "/api/admin/users/member@example.com", token, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeUserNotFound {
		t.Fatalf("expected error_code %d, got %d", ErrCodeUserNotFound, errResp.ErrorCode)
	}
}

func TestAdminUserValidation(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name string
		body string
	}{
		{name: "bad email", body: `{"profile":{"email":"nope"},"password":"password-123"}`},
		{name: "short password", body: `{"profile":{"email":"ok@example.com"},"password":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := adminRequest(t, h, http.MethodPost, "/api/admin/users", "", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
			}
		})
	}

	w := adminRequest(t, h, http.MethodPatch, "/api/admin/users/nobody@example.com", "", `{"disabled":true}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", w.Code)
	}
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	srv := newTestServer(t)
	memberToken := seedUser(t, srv, "member@example.com", models.AccessMember)
	h := srv.Handler()

	w := adminRequest(t, h, http.MethodGet, "/api/admin/users", memberToken, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
