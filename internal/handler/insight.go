package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/alive-sleep/internal/insight"
)

// InsightHandler serves the public article list. It never fails: the
// service falls back to built-in articles.
type InsightHandler struct {
	insights *insight.Service
}

func NewInsightHandler(insights *insight.Service) *InsightHandler {
	return &InsightHandler{insights: insights}
}

// HandleList handles GET /api/insights.
func (h *InsightHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	articles := h.insights.List(r.Context())
	n := len(articles)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: articles, Count: &n})
}

// HandleGet handles GET /api/insights/{slug}.
func (h *InsightHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeData(w, h.insights.BySlug(r.Context(), chi.URLParam(r, "slug")))
}
