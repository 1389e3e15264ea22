package authgate_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/admin-panel/internal/config"
	"github.com/magabrotheeeer/admin-panel/internal/http/authgate"
	"github.com/magabrotheeeer/admin-panel/internal/session"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newGate() (*authgate.Gate, *session.Store) {
	store := session.NewStore(session.Options{Env: config.EnvTest, Secret: "gate-secret"})
	return authgate.New(store, newNoopLogger()), store
}

// sessionCookie возвращает пару name=value для пользователя userID.
func sessionCookie(t *testing.T, store *session.Store, userID string) string {
	t.Helper()
	s := store.New()
	s.Set(session.UserIDKey, userID)
	header, err := store.Commit(s)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	rec.Header().Add("Set-Cookie", header)
	c := rec.Result().Cookies()[0]
	return c.Name + "=" + c.Value
}

func TestGate_Protect(t *testing.T) {
	gate, store := newGate()

	tests := []struct {
		name         string
		target       string
		cookie       string
		wantStatus   int
		wantLocation string
		wantUserID   string
	}{
		{
			name:         "no cookie",
			target:       "/users",
			wantStatus:   http.StatusFound,
			wantLocation: "/login?redirectTo=%2Fusers",
		},
		{
			name:         "query string is not preserved",
			target:       "/customers/abc?tab=2",
			wantStatus:   http.StatusFound,
			wantLocation: "/login?redirectTo=%2Fcustomers%2Fabc",
		},
		{
			name:         "tampered cookie",
			target:       "/users",
			cookie:       "_session=eyJhbGciOiJIUzI1NiJ9.eyJ1c2VySWQiOiJ4In0.bad",
			wantStatus:   http.StatusFound,
			wantLocation: "/login?redirectTo=%2Fusers",
		},
		{
			name:       "valid session",
			target:     "/users",
			cookie:     sessionCookie(t, store, "u1"),
			wantStatus: http.StatusOK,
			wantUserID: "u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID, gotCtxUserID string
			h := gate.Protect(authgate.AuthenticatedHandlerFunc(func(w http.ResponseWriter, r *http.Request, userID string) {
				gotUserID = userID
				gotCtxUserID, _ = authgate.UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", tt.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			assert.Equal(t, tt.wantUserID, gotUserID)
			assert.Equal(t, tt.wantUserID, gotCtxUserID)
		})
	}
}

func TestGate_Middleware(t *testing.T) {
	gate, store := newGate()
	called := false
	h := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, ok := authgate.UserIDFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "u9", id)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Cookie", sessionCookie(t, store, "u9"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, called)
}

func TestGate_ProtectBehindMiddleware(t *testing.T) {
	gate, store := newGate()
	var got []string
	h := gate.Middleware(gate.Protect(authgate.AuthenticatedHandlerFunc(
		func(w http.ResponseWriter, r *http.Request, userID string) {
			got = append(got, userID)
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Cookie", sessionCookie(t, store, "u3"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"u3"}, got)
}

func TestGate_ProtectUsesContextUser(t *testing.T) {
	gate, _ := newGate()
	var got string
	h := gate.Protect(authgate.AuthenticatedHandlerFunc(func(w http.ResponseWriter, r *http.Request, userID string) {
		got = userID
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req = req.WithContext(authgate.WithUserID(req.Context(), "u4"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u4", got)
}

func TestGate_RequireUserIDExplicitRedirect(t *testing.T) {
	gate, _ := newGate()
	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()

	_, ok := gate.RequireUserID(rec, req, "/customers")
	assert.False(t, ok)
	assert.Equal(t, "/login?redirectTo=%2Fcustomers", rec.Header().Get("Location"))
}

func TestGate_UserID(t *testing.T) {
	gate, store := newGate()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := gate.UserID(req)
	assert.False(t, ok)

	req.Header.Set("Cookie", sessionCookie(t, store, "u1"))
	id, ok := gate.UserID(req)
	assert.True(t, ok)
	assert.Equal(t, "u1", id)

	// сессия без userId
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", sessionCookie(t, store, ""))
	_, ok = gate.UserID(req)
	assert.False(t, ok)
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{target: "/customers", want: "/customers"},
		{target: "/users/1?tab=2", want: "/users/1?tab=2"},
		{target: "", want: "/users"},
		{target: "https://evil.com", want: "/users"},
		{target: "//evil.com", want: "/users"},
		{target: "/\\evil.com", want: "/users"},
		{target: "users", want: "/users"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, authgate.SafeRedirect(tt.target, "/users"))
		})
	}
}
