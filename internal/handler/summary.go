package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sakif/alive-sleep/internal/model"
	"github.com/sakif/alive-sleep/internal/service"
)

type SummaryHandler struct {
	summaries *service.SummaryService
	logger    *zap.Logger
}

func NewSummaryHandler(summaries *service.SummaryService, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, logger: logger}
}

// HandleList handles GET /api/summary?page&limit.
func (h *SummaryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(r, service.DefaultSummaryLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	page, err := h.summaries.List(r.Context(), userID(r), q.Page, q.Limit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, page)
}

// HandleCompute handles POST /api/summary[?date=YYYY-MM-DD]. It summarizes
// the week before date (default: today). A week without entries is not an
// error: data is null.
func (h *SummaryHandler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var (
		summary *model.WeeklySummary
		err     error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		ref, perr := pathDate(raw)
		if perr != nil {
			writeError(w, r, h.logger, perr)
			return
		}
		summary, err = h.summaries.ComputeWeek(r.Context(), userID(r), ref)
	} else {
		summary, err = h.summaries.ComputeLastWeek(r.Context(), userID(r))
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if summary == nil {
		writeDataMessage(w, nil, "No sleep entries recorded for that week")
		return
	}
	writeData(w, summary)
}
