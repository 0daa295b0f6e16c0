package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banban-dev/banban/internal/models"
)

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1.2.0", body["version"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

func TestSignup(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "Kim@Banban.test",
		Password: "password123",
		Nickname: "kim",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "kim@banban.test", resp.User.Email)
	assert.True(t, resp.User.IsAdmin, "first account is admin")

	// second account is a regular user
	w = ts.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "lee@banban.test",
		Password: "password123",
		Nickname: "lee",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, decode[LoginResponse](t, w).User.IsAdmin)

	// duplicate email
	w = ts.do(t, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		Email:    "kim@banban.test",
		Password: "password123",
		Nickname: "kim2",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignup_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{"bad email", SignupRequest{Email: "not-an-email", Password: "password123", Nickname: "kim"}},
		{"short password", SignupRequest{Email: "kim@banban.test", Password: "short", Nickname: "kim"}},
		{"missing nickname", SignupRequest{Email: "kim@banban.test", Password: "password123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/auth/signup", "", tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.createUser(t, "kim", false)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "kim@banban.test", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[LoginResponse](t, w)
	assert.Equal(t, "kim", resp.User.Nickname)

	w = ts.do(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kim@banban.test", decode[UserDetail](t, w).Email)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "kim@banban.test", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "nobody@banban.test", Password: "password123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := newTestServer(t)

	var last int
	for i := 0; i < authBurst+1; i++ {
		w := ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "kim@banban.test", Password: "password123"})
		last = w.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// other clients are unaffected
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"kim@banban.test","password":"password123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:4000"
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_Unauthorized(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestMe_DeletedUser(t *testing.T) {
	ts := newTestServer(t)
	user, token := ts.createUser(t, "kim", false)
	require.NoError(t, ts.db.Delete(&models.User{}, "id = ?", user.ID).Error)

	w := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesTokens(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "kim", false)

	w := ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// logging in again issues a token for the new version
	w = ts.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "kim@banban.test", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decode[LoginResponse](t, w).Token

	w = ts.do(t, http.MethodGet, "/api/auth/me", fresh, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInitJWT_PersistsSecret(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.createUser(t, "kim", false)

	var first models.Setting
	require.NoError(t, ts.db.First(&first).Error)

	// a restart reuses the stored secret, so old tokens stay valid
	_, err := newServer(ts.db, ts.config, ts.enqueuer, ts.clock, ts.logger, "1.2.0")
	require.NoError(t, err)

	var count int64
	require.NoError(t, ts.db.Model(&models.Setting{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w := ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
