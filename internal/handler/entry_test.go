package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/alive-sleep/internal/model"
)

func TestEntryRoutes_CRUD(t *testing.T) {
	api := newTestAPI(t)
	u := api.newUser(t, "auth0|crud")

	rec := api.do(t, u, http.MethodPost, "/api/sleep-entries",
		`{"entryTime":"2024-01-01","startTime":"2024-01-01T22:00:00","endTime":"2024-01-02T06:30:00","rating":8}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeData[model.SleepEntry](t, decode(t, rec))
	assert.Equal(t, 510, created.Duration)
	assert.Equal(t, u.ID, created.UserID)

	rec = api.do(t, u, http.MethodGet, "/api/sleep-entries/2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[model.SleepEntry](t, decode(t, rec))
	assert.Equal(t, created.ID, got.ID)

	// Same date again updates in place and drops the interval.
	rec = api.do(t, u, http.MethodPost, "/api/sleep-entries", `{"entryTime":"2024-01-01","duration":420}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[model.SleepEntry](t, decode(t, rec))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 420, updated.Duration)
	assert.Nil(t, updated.StartTime)

	rec = api.do(t, u, http.MethodDelete, "/api/sleep-entries/2024-01-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Sleep entry deleted successfully", resp.Message)

	rec = api.do(t, u, http.MethodGet, "/api/sleep-entries/2024-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp = decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.Equal(t, "Sleep entry not found", resp.Error.Message)

	rec = api.do(t, u, http.MethodDelete, "/api/sleep-entries/2024-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntryRoutes_ValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	u := api.newUser(t, "auth0|invalid")

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"empty body", "", "Request body is required"},
		{"malformed json", `{"entryTime":`, "Request body must be valid JSON"},
		{"rating wrong type", `{"entryTime":"2024-01-01","duration":60,"rating":"great"}`, "Rating must be a number between 0 and 10"},
		{"missing date", `{"duration":60}`, "Entry date is required"},
		{"rating out of range", `{"entryTime":"2024-01-01","duration":60,"rating":11}`, "Rating must be a number between 0 and 10"},
		{"nothing to measure", `{"entryTime":"2024-01-01"}`, "Either sleep duration or both start and end time must be provided"},
		{"too long", `{"entryTime":"2024-01-01","duration":1441}`, "Sleep duration cannot exceed 24 hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, u, http.MethodPost, "/api/sleep-entries", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, CodeValidation, resp.Error.Code)
			assert.Equal(t, tt.message, resp.Error.Message)
		})
	}
}

func TestEntryRoutes_ListPagingAndRange(t *testing.T) {
	api := newTestAPI(t)
	u := api.newUser(t, "auth0|list")

	for _, day := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		rec := api.do(t, u, http.MethodPost, "/api/sleep-entries", `{"entryTime":"`+day+`","duration":400}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := api.do(t, u, http.MethodGet, "/api/sleep-entries?page=2&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[model.EntryPage](t, decode(t, rec))
	assert.Equal(t, 5, page.TotalEntries)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.SleepEntries, 2)
	assert.Equal(t, "2024-01-03", page.SleepEntries[0].EntryDate.Format("2006-01-02"))

	rec = api.do(t, u, http.MethodGet, "/api/sleep-entries?startDate=2024-01-02&endDate=2024-01-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decodeData[model.EntryPage](t, decode(t, rec))
	assert.Equal(t, 2, page.TotalEntries)
}

func TestEntryRoutes_BadQuery(t *testing.T) {
	api := newTestAPI(t)
	u := api.newUser(t, "auth0|query")

	for _, target := range []string{
		"/api/sleep-entries?page=0",
		"/api/sleep-entries?page=abc",
		"/api/sleep-entries?limit=101",
		"/api/sleep-entries?page=9223372036854775807&limit=100",
		"/api/sleep-entries?startDate=01-02-2024",
		"/api/sleep-entries/not-a-date",
	} {
		rec := api.do(t, u, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestEntryRoutes_RequireUser(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, nil, http.MethodGet, "/api/sleep-entries", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, CodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Authentication required", resp.Error.Message)
}

func TestEntryRoutes_IsolatedPerUser(t *testing.T) {
	api := newTestAPI(t)
	alice := api.newUser(t, "auth0|alice")
	bob := api.newUser(t, "auth0|bob")

	rec := api.do(t, alice, http.MethodPost, "/api/sleep-entries", `{"entryTime":"2024-01-01","duration":480}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, bob, http.MethodGet, "/api/sleep-entries/2024-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, bob, http.MethodDelete, "/api/sleep-entries/2024-01-01", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
