package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogdesk/internal/api"
	internalauth "blogdesk/internal/auth"
	"blogdesk/internal/models"
)

func TestLoginSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	hash, err := internalauth.HashPassword("password-123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	profile := models.Profile{Email: "ada@example.com", Name: "Ada", RollNo: "2105001", Access: models.AccessAdmin}
	if _, err := srv.store.CreateUser(context.Background(), profile, hash, time.Now().UTC()); err != nil {
		t.Fatalf("create user: %v", err)
	}
	h := srv.Handler()

	loginReq := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte(`{"email":"Ada@Example.com","password":"password-123"}`)))
	loginW := httptest.NewRecorder()
	h.ServeHTTP(loginW, loginReq)
	if loginW.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d (%s)", loginW.Code, loginW.Body.String())
	}

	var session api.LoginResponse
	if err := json.Unmarshal(loginW.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}
	if session.User.Email != "ada@example.com" || session.User.RollNo != "2105001" || !session.User.IsAdmin() {
		t.Fatalf("unexpected session user %+v", session.User)
	}

	meReq := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+session.Token)
	meW := httptest.NewRecorder()
	h.ServeHTTP(meW, meReq)
	if meW.Code != http.StatusOK {
		t.Fatalf("expected me 200, got %d (%s)", meW.Code, meW.Body.String())
	}
	var me models.Profile
	if err := json.Unmarshal(meW.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.Name != "Ada" || me.ID == "" {
		t.Fatalf("unexpected profile %+v", me)
	}

	logoutReq := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	logoutReq.Header.Set("Authorization", "Bearer "+session.Token)
	logoutW := httptest.NewRecorder()
	h.ServeHTTP(logoutW, logoutReq)
	if logoutW.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d (%s)", logoutW.Code, logoutW.Body.String())
	}

	meReq = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+session.Token)
	meW = httptest.NewRecorder()
	h.ServeHTTP(meW, meReq)
	if meW.Code != http.StatusUnauthorized {
		t.Fatalf("expected me to be unauthorized after logout, got %d", meW.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "ada@example.com", models.AccessMember)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte(`{"email":"ada@example.com","password":"wrong-password"}`)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeUnauthorized {
		t.Fatalf("expected error_code %d, got %d", ErrCodeUnauthorized, errResp.ErrorCode)
	}
}

func TestLoginValidation(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "malformed json", body: `{"email":`, wantCode: ErrCodeInvalidJSON},
		{name: "bad email", body: `{"email":"nope","password":"password-123"}`, wantCode: ErrCodeInvalidArgument},
		{name: "missing password", body: `{"email":"ada@example.com","password":""}`, wantCode: ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
			}
			if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != tt.wantCode {
				t.Fatalf("expected error_code %d, got %d", tt.wantCode, errResp.ErrorCode)
			}
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	srv := newTestServer(t)
	seedUser(t, srv, "ada@example.com", models.AccessMember)
	srv.loginLimiter = newLoginLimiter(2, time.Minute, time.Minute)
	h := srv.Handler()

	attempt := func(password string) int {
		body := []byte(`{"email":"ada@example.com","password":"` + password + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewReader(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	if code := attempt("wrong-1"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code := attempt("wrong-2"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
	if code := attempt("password-123"); code != http.StatusTooManyRequests {
		t.Fatalf("expected lockout to block even correct password, got %d", code)
	}
}

func TestMeWithAPIToken(t *testing.T) {
	srv := newTestServer(t)
	srv.SetAPIToken("shared-token")
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer shared-token")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	var me models.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Name != authTypeBearer || !me.IsAdmin() {
		t.Fatalf("unexpected token profile %+v", me)
	}
}
