package api

import (
	"net/http"
	"strconv"

	"quell-core-api/internal/application"
	"quell-core-api/internal/domain"
	"quell-core-api/internal/infrastructure/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AnalyticsHandler serves the dashboard analytics endpoints plus the
// on-demand batch conversation analysis.
type AnalyticsHandler struct {
	analytics *application.AnalyticsService
	analysis  *application.AnalysisService
	logger    zerolog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	analytics *application.AnalyticsService,
	analysis *application.AnalysisService,
	logger zerolog.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, analysis: analysis, logger: logger}
}

func daysParam(r *http.Request) int {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	return days
}

// Overview handles GET /api/stores/{id}/analytics/overview
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	overview, err := h.analytics.Overview(r.Context(), userID, chi.URLParam(r, "id"), daysParam(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

// MessagesByDay handles GET /api/stores/{id}/analytics/messages
func (h *AnalyticsHandler) MessagesByDay(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	buckets, err := h.analytics.MessagesByDay(r.Context(), userID, chi.URLParam(r, "id"), daysParam(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"days": buckets})
}

// TokenUsage handles GET /api/stores/{id}/analytics/token-usage
func (h *AnalyticsHandler) TokenUsage(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	totals, err := h.analytics.TokenUsage(r.Context(), userID, chi.URLParam(r, "id"), daysParam(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, totals)
}

// RunAnalysis handles POST /api/stores/{id}/analyze
func (h *AnalyticsHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	result, err := h.analysis.RunBatch(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// ListAnalyses handles GET /api/stores/{id}/analyses
func (h *AnalyticsHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID := domain.UserIDFromContext(r.Context())
	analyses, err := h.analysis.ListAnalyses(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"analyses": analyses})
}
