package auth

import (
	"context"
	"net/http"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/model"
)

// UserResolver maps a provider subject to a local user, creating it on first
// sight. *service.UserService implements it.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, externalID string) (*model.User, error)
}

// ErrorWriter renders an error response. handler.ErrorWriter provides the JSON one.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// SyncUser builds the RequestContext for every request.
//
// No cookie, or a cookie that fails validation, leaves the request anonymous
// (a stale cookie is also cleared). A valid session is resolved to a local
// user, which stamps lastLoginAt. A resolution failure is handed to fail and
// the request stops there.
//
// This is the only place a login creates the local user, so the first
// request after the callback is the one that sees FirstLogin. secure must
// match the flag the session cookie was set with; behind a TLS-terminating
// proxy r.TLS is nil even though the browser holds a Secure cookie.
func SyncUser(sessions *SessionService, users UserResolver, secure bool, fail ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sessions.Validate(cookie.Value)
			if err != nil {
				ClearSessionCookie(w, secure)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetOrCreateUser(r.Context(), id.Subject)
			if err != nil {
				fail(w, r, err)
				return
			}

			rc := RequestContext{User: user, Identity: id, FirstLogin: user.IsFirstLogin()}
			next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
		})
	}
}

// RequireUser lets only requests with a resolved user through; others get
// the unauthorized handler.
func RequireUser(unauthorized ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).Authenticated() {
				unauthorized(w, r, apperror.Unauthorized("Authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie stores token as an HttpOnly cookie. Secure is set when
// the site is served over TLS.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	SetSessionCookie(w, "", -1, secure)
}
