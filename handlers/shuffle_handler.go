package handlers

import (
	"net/http"

	"github.com/Dosada05/karting-league/repositories"
	"github.com/Dosada05/karting-league/services"
	"github.com/google/uuid"
)

type ShuffleHandler struct {
	shuffleService services.ShuffleService
}

func NewShuffleHandler(ss services.ShuffleService) *ShuffleHandler {
	return &ShuffleHandler{shuffleService: ss}
}

// Shuffle godoc
// @Summary Evaluate and apply a tier shuffle
// @Description Applies a shuffle when any tier has completed its race window. force=true skips the window check but never shuffles twice at the same race count.
// @Tags shuffles
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param force query bool false "Shuffle even if not due"
// @Success 200 {object} services.ShuffleOutcome
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "No drivers assigned"
// @Failure 503 {object} map[string]string "Rolled back, safe to retry"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/shuffle [post]
func (h *ShuffleHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	force, err := boolQuery(r, "force")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.shuffleService.Evaluate(r.Context(), id, services.ShuffleOptions{Force: force})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, outcome, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Preview godoc
// @Summary Preview the next tier shuffle
// @Description Computes the reassignment from current standings without writing anything.
// @Tags shuffles
// @Produce json
// @Param id path int true "Tiered league ID"
// @Success 200 {object} services.ShufflePreview
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string "No drivers assigned"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/shuffle/preview [get]
func (h *ShuffleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preview, err := h.shuffleService.Preview(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, preview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMovements godoc
// @Summary Movement ledger of a tiered league
// @Tags shuffles
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param profile_id query int false "Only this driver"
// @Param shuffle_id query string false "Only this shuffle batch"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /tiered-leagues/{id}/movements [get]
func (h *ShuffleHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var filter repositories.ListMovementsFilter
	if filter.ProfileID, err = optionalIntQuery(r, "profile_id"); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("shuffle_id"); raw != "" {
		shuffleID, err := uuid.Parse(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		filter.ShuffleID = &shuffleID
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v, err := optionalIntQuery(r, name)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		if v != nil {
			*dst = *v
		}
	}

	movements, err := h.shuffleService.ListMovements(r.Context(), id, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"movements": movements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RaceCompleted godoc
// @Summary Notify that a race of a competition finished
// @Description Evaluates every tiered league bound to the competition and applies shuffles that are due.
// @Tags shuffles
// @Produce json
// @Param competitionID path int true "Competition ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /competitions/{competitionID}/race-completed [post]
func (h *ShuffleHandler) RaceCompleted(w http.ResponseWriter, r *http.Request) {
	competitionID, err := getIDFromURL(r, "competitionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcomes, err := h.shuffleService.HandleRaceCompleted(r.Context(), competitionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcomes": outcomes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
