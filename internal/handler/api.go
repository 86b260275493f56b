package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/auth"
	"github.com/sakif/alive-sleep/internal/model"
)

// HandleWelcome handles GET /api.
func HandleWelcome(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Alive Sleep Tracker API"})
}

type profile struct {
	Sub   string  `json:"sub"`
	Email *string `json:"email"`
	Name  *string `json:"name"`
}

type meResponse struct {
	User       *model.User `json:"user"`
	FirstLogin bool        `json:"firstLogin"`
	Profile    profile     `json:"profile"`
}

// HandleMe handles GET /api/me. It runs behind auth.RequireUser.
func HandleMe(w http.ResponseWriter, r *http.Request) {
	rc := auth.FromContext(r.Context())
	resp := meResponse{User: rc.User, FirstLogin: rc.FirstLogin}
	if id := rc.Identity; id != nil {
		resp.Profile = profile{Sub: id.Subject, Email: optional(id.Email), Name: optional(id.Name)}
	}
	writeData(w, resp)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Pinger reports whether the store is reachable. *sqlstore.Connector implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /healthz.
func Health(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
