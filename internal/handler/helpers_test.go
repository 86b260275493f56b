package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sakif/alive-sleep/internal/auth"
	"github.com/sakif/alive-sleep/internal/config"
	"github.com/sakif/alive-sleep/internal/identity"
	"github.com/sakif/alive-sleep/internal/insight"
	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/repository/sqlstore"
	"github.com/sakif/alive-sleep/internal/service"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type testAPI struct {
	router *chi.Mux
	users  *service.UserService
	conn   *sqlstore.Connector
}

// newTestAPI mounts the JSON routes over an in-memory store. Requests made
// with as(user) carry that user in their context, as SyncUser would.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zaptest.NewLogger(t)

	conn := sqlstore.NewConnector(config.DriverSQLite, ":memory:", 5*time.Second, sqlstore.WithLogger(logger))
	t.Cleanup(func() { conn.Close() })
	store := sqlstore.New(conn)

	hasher, err := identity.NewHasher("test-key")
	require.NoError(t, err)
	clock := func() time.Time { return testNow }

	users := service.NewUserService(store.Users(), hasher, clock, logger)
	entries := NewEntryHandler(service.NewEntryService(store.Entries(), clock, logger), logger)
	summaries := NewSummaryHandler(service.NewSummaryService(store.Entries(), store.Summaries(), clock, logger), logger)
	insights := NewInsightHandler(insight.NewService(nil, logger))

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/", HandleWelcome)
		r.Get("/insights", insights.HandleList)
		r.Get("/insights/{slug}", insights.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser(ErrorWriter(logger)))
			r.Get("/me", HandleMe)
			r.Get("/sleep-entries", entries.HandleList)
			r.Post("/sleep-entries", entries.HandleUpsert)
			r.Get("/sleep-entries/{date}", entries.HandleGet)
			r.Delete("/sleep-entries/{date}", entries.HandleDelete)
			r.Get("/summary", summaries.HandleList)
			r.Post("/summary", summaries.HandleCompute)
		})
		r.NotFound(NotFound)
	})

	return &testAPI{router: r, users: users, conn: conn}
}

func (a *testAPI) newUser(t *testing.T, externalID string) *model.User {
	t.Helper()
	u, err := a.users.GetOrCreateUser(context.Background(), externalID)
	require.NoError(t, err)
	return u
}

// do sends the request, optionally as user, and returns the recorder.
func (a *testAPI) do(t *testing.T, user *model.User, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if user != nil {
		rc := auth.RequestContext{User: user, Identity: &auth.Identity{Subject: "auth0|" + user.ID, Email: "sleeper@example.com"}}
		req = req.WithContext(auth.WithRequestContext(req.Context(), rc))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// response is the decoded envelope with data left raw.
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Error   *errorBody      `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeData[T any](t *testing.T, resp response) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Data, &v))
	return v
}
