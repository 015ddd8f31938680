package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// ListMatchups returns one page of the canonical matchup table
// @Summary List Matchups
// @Tags Matchups
// @Produce json
// @Param limit query int false "Limit" default(25)
// @Param page query int false "Page" default(1)
// @Success 200 {object} models.MatchupListResponse
// @Router /matchups [get]
func (h *Handler) ListMatchups(w http.ResponseWriter, r *http.Request) {
	limit := 25
	page := 1
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	offset := (page - 1) * limit

	views, total, err := h.matchups.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Errorw("Failed to list matchups", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list matchups")
		return
	}
	if views == nil {
		views = []models.MatchupView{}
	}

	h.jsonResponse(w, http.StatusOK, models.MatchupListResponse{
		Matchups: views,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetMatchup returns the aggregated record for one pair, in either order
// @Summary Get Matchup
// @Tags Matchups
// @Produce json
// @Param a path string true "Character"
// @Param b path string true "Character"
// @Success 200 {object} models.MatchupView
// @Failure 404 {object} map[string]string "Not Found"
// @Router /matchups/{a}/{b} [get]
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	a, errA := url.PathUnescape(chi.URLParam(r, "a"))
	b, errB := url.PathUnescape(chi.URLParam(r, "b"))
	if errA != nil || errB != nil || a == "" || b == "" {
		h.errorResponse(w, http.StatusBadRequest, "Two character names are required")
		return
	}

	view, err := h.matchups.Get(r.Context(), a, b)
	if errors.Is(err, logic.ErrMatchupNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Matchup not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get matchup", "error", err, "a", a, "b", b)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get matchup")
		return
	}

	h.jsonResponse(w, http.StatusOK, view)
}

// RebuildMatchups re-aggregates every stored set into a new matchup table
// @Summary Rebuild Matchups
// @Tags Matchups
// @Accept json
// @Produce json
// @Security AdminToken
// @Param body body models.RebuildRequest false "Options"
// @Success 200 {object} models.RebuildSummary
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /matchups/rebuild [post]
func (h *Handler) RebuildMatchups(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	var req models.RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := ValidateStruct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "min_games must be zero or more")
		return
	}

	minGames := h.minGames
	if req.MinGames != nil {
		minGames = *req.MinGames
	}

	summary, err := h.matchups.Rebuild(r.Context(), minGames)
	if err != nil {
		h.logger.Errorw("Rebuild failed", "error", err, "minGames", minGames)
		h.errorResponse(w, http.StatusInternalServerError, "Rebuild failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}
