package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/auth"
)

const (
	stateCookie    = "auth_state"
	returnToCookie = "auth_return_to"
	stateMaxAge    = 600

	defaultReturnTo = "/dashboard"
)

// IdentityProvider is the OIDC side of the login flow. *auth.Provider
// implements it against Auth0.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, error)
	LogoutURL(returnTo string) string
}

// AuthHandler serves /auth/login, /auth/callback and /auth/logout. These are
// browser redirects, not JSON endpoints.
//
// The callback only issues the session cookie. The local user is created by
// auth.SyncUser on the next request, which is what lets that request see
// RequestContext.FirstLogin.
type AuthHandler struct {
	provider IdentityProvider
	sessions *auth.SessionService
	baseURL  string
	secure   bool
	logger   *zap.Logger
}

func NewAuthHandler(
	provider IdentityProvider,
	sessions *auth.SessionService,
	baseURL string,
	secure bool,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		sessions: sessions,
		baseURL:  baseURL,
		secure:   secure,
		logger:   logger,
	}
}

// HandleLogin starts the code flow. ?returnTo picks where the browser lands
// after the callback; only same-site paths are honoured.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	h.setShortCookie(w, stateCookie, state, stateMaxAge)
	h.setShortCookie(w, returnToCookie, localPath(r.URL.Query().Get("returnTo")), stateMaxAge)

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback finishes the code flow and sets the session cookie.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != state.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	h.setShortCookie(w, stateCookie, "", -1)

	returnTo := defaultReturnTo
	if c, err := r.Cookie(returnToCookie); err == nil {
		returnTo = localPath(c.Value)
	}
	h.setShortCookie(w, returnToCookie, "", -1)

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", zap.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	id, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: code exchange failed", zap.Error(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Issue(*id)
	if err != nil {
		h.logger.Error("auth callback: issuing session failed", zap.Error(err))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}
	auth.SetSessionCookie(w, token, int(h.sessions.TTL().Seconds()), h.secure)

	h.logger.Info("user authenticated", zap.String("subject", id.Subject))
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// HandleLogout drops the local session and ends the provider session too.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secure)
	http.Redirect(w, r, h.provider.LogoutURL(h.baseURL+"/"), http.StatusSeeOther)
}

func (h *AuthHandler) setShortCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// localPath keeps open redirects out: anything that is not a path on this
// site becomes the default landing page.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return defaultReturnTo
	}
	return p
}
