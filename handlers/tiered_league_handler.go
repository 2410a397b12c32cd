package handlers

import (
	"net/http"

	"github.com/Dosada05/karting-league/services"
)

type TieredLeagueHandler struct {
	leagueService    services.TieredLeagueService
	standingsService services.StandingsService
}

func NewTieredLeagueHandler(ls services.TieredLeagueService, ss services.StandingsService) *TieredLeagueHandler {
	return &TieredLeagueHandler{
		leagueService:    ls,
		standingsService: ss,
	}
}

// CreateTieredLeague godoc
// @Summary Create a tiered league
// @Tags tiered-leagues
// @Accept json
// @Produce json
// @Param input body services.CreateTieredLeagueInput true "Tier configuration"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "League already tiered for this competition"
// @Failure 422 {object} map[string]interface{} "Invalid configuration"
// @Security BearerAuth
// @Router /tiered-leagues [post]
func (h *TieredLeagueHandler) CreateTieredLeague(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTieredLeagueInput
	if !readValidJSON(w, r, &input) {
		return
	}

	league, err := h.leagueService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tiered_league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTieredLeague godoc
// @Summary Get a tiered league
// @Tags tiered-leagues
// @Produce json
// @Param id path int true "Tiered league ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tiered-leagues/{id} [get]
func (h *TieredLeagueHandler) GetTieredLeague(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	league, err := h.leagueService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiered_league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByLeague godoc
// @Summary Tiered leagues of a league
// @Tags tiered-leagues
// @Produce json
// @Param leagueID path int true "League ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /leagues/{leagueID}/tiered-leagues [get]
func (h *TieredLeagueHandler) ListByLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := getIDFromURL(r, "leagueID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	leagues, err := h.leagueService.ListByLeague(r.Context(), leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiered_leagues": leagues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTieredLeague godoc
// @Summary Update tier configuration
// @Description Partial update. number_of_tiers cannot drop below the highest tier that still holds drivers.
// @Tags tiered-leagues
// @Accept json
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param input body services.UpdateTieredLeagueInput true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tiered-leagues/{id} [patch]
func (h *TieredLeagueHandler) UpdateTieredLeague(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTieredLeagueInput
	if !readValidJSON(w, r, &input) {
		return
	}

	league, err := h.leagueService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiered_league": league}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTieredLeague godoc
// @Summary Delete a tiered league
// @Tags tiered-leagues
// @Param id path int true "Tiered league ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tiered-leagues/{id} [delete]
func (h *TieredLeagueHandler) DeleteTieredLeague(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.leagueService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TierNames godoc
// @Summary Tier numbers and names
// @Tags tiered-leagues
// @Produce json
// @Param id path int true "Tiered league ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tiered-leagues/{id}/tier-names [get]
func (h *TieredLeagueHandler) TierNames(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	names, err := h.leagueService.TierNames(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiers": names}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Standings godoc
// @Summary Tier standings
// @Description Points count only races completed since each driver joined their current tier. Without ?tier every tier is returned.
// @Tags tiered-leagues
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param tier query int false "Tier number"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string "Race results unavailable"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/standings [get]
func (h *TieredLeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tier, err := optionalIntQuery(r, "tier")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if tier != nil {
		standings, err := h.standingsService.TierStandings(r.Context(), id, *tier)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	all, err := h.standingsService.AllStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiers": all}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAssignments godoc
// @Summary Current tier assignments
// @Tags tier-assignments
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param tier query int false "Only this tier"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /tiered-leagues/{id}/assignments [get]
func (h *TieredLeagueHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	tier, err := optionalIntQuery(r, "tier")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignments, err := h.leagueService.ListAssignments(r.Context(), id, tier)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assignments": assignments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ActiveTier godoc
// @Summary Current tier of a driver
// @Tags tiered-leagues
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param profileID path int true "Driver profile ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "League not found, or {\"assigned\": false}"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/drivers/{profileID}/tier [get]
func (h *TieredLeagueHandler) ActiveTier(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	profileID, err := getIDFromURL(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	assignment, assigned, err := h.leagueService.GetActiveTier(r.Context(), id, profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if !assigned {
		if err := writeJSON(w, http.StatusNotFound, jsonResponse{"assigned": false}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"assigned": true, "assignment": assignment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
