package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/alive-sleep/internal/model"
)

type stubResolver struct {
	user  *model.User
	err   error
	calls []string
}

func (s *stubResolver) GetOrCreateUser(_ context.Context, externalID string) (*model.User, error) {
	s.calls = append(s.calls, externalID)
	return s.user, s.err
}

// failTest is an ErrorWriter for paths that must not fail.
func failTest(t *testing.T) ErrorWriter {
	return func(http.ResponseWriter, *http.Request, error) {
		t.Error("unexpected error response")
	}
}

// capture records the RequestContext the final handler saw.
func capture(rc *RequestContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*rc = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSyncUser_ResolvesSession(t *testing.T) {
	sessions := newTestSessions(t)
	now := time.Now()
	resolver := &stubResolver{user: &model.User{ID: "u1", CreatedAt: now, UpdatedAt: now}}
	token, err := sessions.Issue(Identity{Subject: "auth0|abc", Email: "a@example.com"})
	require.NoError(t, err)

	var rc RequestContext
	h := SyncUser(sessions, resolver, false, failTest(t))(capture(&rc))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"auth0|abc"}, resolver.calls)
	require.True(t, rc.Authenticated())
	assert.Equal(t, "u1", rc.User.ID)
	assert.True(t, rc.FirstLogin)
	assert.Equal(t, "a@example.com", rc.Identity.Email)
}

func TestSyncUser_Anonymous(t *testing.T) {
	sessions := newTestSessions(t)
	resolver := &stubResolver{}

	tests := []struct {
		name        string
		cookie      *http.Cookie
		wantCleared bool
	}{
		{name: "no cookie"},
		{name: "bad cookie", cookie: &http.Cookie{Name: SessionCookie, Value: "garbage"}, wantCleared: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rc RequestContext
			h := SyncUser(sessions, resolver, false, failTest(t))(capture(&rc))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, rc.Authenticated())
			assert.Empty(t, resolver.calls)
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == SessionCookie && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.wantCleared, cleared)
		})
	}
}

// TLS ends at the proxy, so the request itself is plain HTTP.
func TestSyncUser_ClearsStaleCookieWithConfiguredSecureFlag(t *testing.T) {
	sessions := newTestSessions(t)
	var rc RequestContext
	h := SyncUser(sessions, &stubResolver{}, true, failTest(t))(capture(&rc))

	req := httptest.NewRequest(http.MethodGet, "http://sleep.example.com/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	require.Nil(t, req.TLS)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
	assert.True(t, cleared.Secure)
}

func TestSyncUser_StoreFailureStopsRequest(t *testing.T) {
	sessions := newTestSessions(t)
	boom := errors.New("store down")
	resolver := &stubResolver{err: boom}
	token, _ := sessions.Issue(Identity{Subject: "auth0|abc"})

	var failed error
	reached := false
	h := SyncUser(sessions, resolver, false, func(w http.ResponseWriter, _ *http.Request, err error) {
		failed = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { reached = true }))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, reached)
	assert.ErrorIs(t, failed, boom)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireUser(t *testing.T) {
	var rejected error
	unauthorized := func(w http.ResponseWriter, _ *http.Request, err error) {
		rejected = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RequireUser(unauthorized)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Error(t, rejected)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRequestContext(req.Context(), RequestContext{User: &model.User{ID: "u1"}}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProvider_URLs(t *testing.T) {
	p := NewProvider(configForTest(), "http://localhost:3000/auth/callback")

	login := p.AuthURL("state-123")
	assert.Contains(t, login, "https://tenant.auth0.com/authorize?")
	assert.Contains(t, login, "state=state-123")
	assert.Contains(t, login, "scope=openid+profile+email")
	assert.Contains(t, login, "redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Fauth%2Fcallback")

	assert.Equal(t,
		"https://tenant.auth0.com/v2/logout?client_id=client-1&returnTo=http%3A%2F%2Flocalhost%3A3000",
		p.LogoutURL("http://localhost:3000"))
}
