package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/apperror"
	"github.com/sakif/alive-sleep/internal/auth"
	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/service"
)

// EntryHandler serves /api/sleep-entries. Every route runs behind
// auth.RequireUser, so the request context always carries a user.
type EntryHandler struct {
	entries *service.EntryService
	logger  *zap.Logger
}

func NewEntryHandler(entries *service.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{entries: entries, logger: logger}
}

var entryFieldMessages = map[string]string{
	"rating":    "Rating must be a number between 0 and 10",
	"duration":  "Sleep duration must be a number of minutes",
	"entryTime": "Entry date must be valid",
	"startTime": "Start time must be a valid date",
	"endTime":   "End time must be a valid date",
}

// HandleList handles GET /api/sleep-entries?page&limit&startDate&endDate.
func (h *EntryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parseEntryQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.entries.List(r.Context(), userID(r), q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, page)
}

// HandleGet handles GET /api/sleep-entries/{date}.
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	entry, err := h.entries.GetByDate(r.Context(), userID(r), date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if entry == nil {
		writeError(w, r, h.logger, apperror.NotFound("sleepEntry", "Sleep entry not found"))
		return
	}
	writeData(w, entry)
}

// HandleUpsert handles POST /api/sleep-entries. Posting the same date twice
// updates the existing entry.
func (h *EntryHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var raw model.RawEntry
	if err := decodeJSON(w, r, &raw, entryFieldMessages); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	entry, err := h.entries.Upsert(r.Context(), userID(r), raw)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, entry)
}

// HandleDelete handles DELETE /api/sleep-entries/{date}.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	entry, err := h.entries.DeleteByDate(r.Context(), userID(r), date)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if entry == nil {
		writeError(w, r, h.logger, apperror.NotFound("sleepEntry", "Sleep entry not found"))
		return
	}
	writeDataMessage(w, entry, "Sleep entry deleted successfully")
}

func userID(r *http.Request) string {
	if u := auth.FromContext(r.Context()).User; u != nil {
		return u.ID
	}
	return ""
}
