package handlers

import (
	"errors"
	"net/http"

	"github.com/smashlab/matchup-api/internal/logic"
	"github.com/smashlab/matchup-api/internal/models"
)

// Predict returns the order-invariant verdict for two characters
// @Summary Predict Matchup
// @Tags Predictions
// @Produce json
// @Param a query string true "Character"
// @Param b query string true "Character"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /predict [get]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	q := models.PredictQuery{
		A: r.URL.Query().Get("a"),
		B: r.URL.Query().Get("b"),
	}
	if err := ValidateStruct(&q); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Query parameters a and b are required")
		return
	}

	res, err := h.predictions.Predict(r.Context(), q.A, q.B)
	var notFound *logic.CharacterNotFoundError
	switch {
	case errors.As(err, &notFound):
		h.errorResponse(w, http.StatusNotFound, notFound.Error())
		return
	case errors.Is(err, logic.ErrCharacterNotFound):
		h.errorResponse(w, http.StatusNotFound, "Character not found")
		return
	case err != nil:
		h.logger.Errorw("Prediction failed", "error", err, "a", q.A, "b", q.B)
		h.errorResponse(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	h.jsonResponse(w, http.StatusOK, res)
}

// ListCharacters returns the attribute table and its schema
// @Summary List Characters
// @Tags Predictions
// @Produce json
// @Success 200 {object} models.CharacterListResponse
// @Router /characters [get]
func (h *Handler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	profiles, schema := h.predictions.Characters(r.Context())
	if profiles == nil {
		profiles = []models.CharacterProfile{}
	}
	h.jsonResponse(w, http.StatusOK, models.CharacterListResponse{
		Characters: profiles,
		Schema:     schema,
	})
}
