package handlers

import (
	"net/http"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/services"
)

type KnockoutHandler struct {
	knockoutService services.KnockoutService
}

func NewKnockoutHandler(ks services.KnockoutService) *KnockoutHandler {
	return &KnockoutHandler{knockoutService: ks}
}

// GenerateBracketHandler godoc
// @Summary Seed and build the knockout bracket
// @Description Without a body the bracket is seeded from the finished group tables.
// @Description Supplied standings override the computed ones.
// @Tags knockout
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.GenerateBracketInput false "Manual standings"
// @Success 201 {object} services.BracketView
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *KnockoutHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateBracketInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	view, err := h.knockoutService.GenerateBracket(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler godoc
// @Summary Current knockout bracket
// @Tags knockout
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} services.BracketView
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *KnockoutHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.knockoutService.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler godoc
// @Summary Record a knockout result and advance the winner
// @Tags knockout
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param round path int true "Round, 1 is the opening round"
// @Param match path int true "Match number within the round"
// @Param input body services.MatchResultInput true "Legs won by each slot"
// @Success 200 {object} services.ResultView
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket/rounds/{round}/matches/{match}/result [put]
func (h *KnockoutHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getIDFromURL(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	number, err := getIDFromURL(r, "match")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.knockoutService.RecordResult(r.Context(), tournamentID, round, number, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
