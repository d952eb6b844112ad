package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/services"
)

type GroupHandler struct {
	groupService services.GroupService
}

func NewGroupHandler(gs services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: gs}
}

// GenerateGroupsHandler godoc
// @Summary Draw entrants into groups
// @Description Entrants are dealt to groups in seed order. An empty body keeps the registration order.
// @Tags groups
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param input body services.GenerateGroupsInput false "Draw options"
// @Success 200 {array} brackets.Group
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/groups [post]
func (h *GroupHandler) GenerateGroupsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateGroupsInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	groups, err := h.groupService.GenerateGroups(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateFixturesHandler godoc
// @Summary Schedule round-robin fixtures for every group
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {array} models.Fixture
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/fixtures [post]
func (h *GroupHandler) GenerateFixturesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixtures, err := h.groupService.GenerateFixtures(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListFixturesHandler godoc
// @Summary List group fixtures
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param group_id query int false "Only this group"
// @Success 200 {array} models.Fixture
// @Router /tournaments/{tournamentID}/fixtures [get]
func (h *GroupHandler) ListFixturesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var groupID *int
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		gid, err := strconv.Atoi(raw)
		if err != nil || gid <= 0 {
			badRequestResponse(w, r, errors.New("invalid group_id query parameter"))
			return
		}
		groupID = &gid
	}

	fixtures, err := h.groupService.ListFixtures(r.Context(), id, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordFixtureResultHandler godoc
// @Summary Record or correct a group fixture result
// @Tags groups
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param fixtureID path int true "Fixture ID"
// @Param input body services.FixtureResultInput true "Legs won by each side"
// @Success 200 {object} models.Fixture
// @Failure 429 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/fixtures/{fixtureID}/result [put]
func (h *GroupHandler) RecordFixtureResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	fixtureID, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.FixtureResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.groupService.RecordFixtureResult(r.Context(), tournamentID, fixtureID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler godoc
// @Summary Group tables
// @Tags groups
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.GroupTable
// @Router /tournaments/{tournamentID}/standings [get]
func (h *GroupHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tables, err := h.groupService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": tables}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
