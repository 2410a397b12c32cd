package handlers

import (
	"net/http"

	"github.com/Dosada05/karting-league/services"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(as services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: as}
}

type moveDriverRequest struct {
	ProfileID  int `json:"profile_id" validate:"required,gt=0"`
	TierNumber int `json:"tier_number" validate:"required,gte=1"`
}

// replayStatus answers a repeated request with 200 instead of 201.
func replayStatus(result *services.AssignmentResult) int {
	if result.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// AssignDriver godoc
// @Summary Assign an enrolled driver to a tier
// @Tags tier-assignments
// @Accept json
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param input body services.AssignDriverInput true "Driver and tier"
// @Success 201 {object} services.AssignmentResult
// @Success 200 {object} services.AssignmentResult "Repeated request, nothing changed"
// @Failure 404 {object} map[string]string "League or tier not found, or driver not enrolled"
// @Failure 409 {object} map[string]string "Driver already assigned"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/assignments [post]
func (h *AssignmentHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AssignDriverInput
	if !readValidJSON(w, r, &input) {
		return
	}

	result, err := h.assignmentService.Assign(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, replayStatus(result), result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveDriver godoc
// @Summary Remove a driver from the tiers
// @Description Records a removed movement. Repeating the request after the same race answers with replayed=true.
// @Tags tier-assignments
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param profileID path int true "Driver profile ID"
// @Success 200 {object} services.AssignmentResult
// @Failure 404 {object} map[string]string "League or assignment not found"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/assignments/{profileID} [delete]
func (h *AssignmentHandler) RemoveDriver(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.assignmentService.Remove(r.Context(), id, profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MoveDriver godoc
// @Summary Move a driver to another tier outside a shuffle
// @Tags tier-assignments
// @Accept json
// @Produce json
// @Param id path int true "Tiered league ID"
// @Param input body moveDriverRequest true "Driver and target tier"
// @Success 201 {object} services.AssignmentResult
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Same move already recorded after this race"
// @Security BearerAuth
// @Router /tiered-leagues/{id}/move-driver [post]
func (h *AssignmentHandler) MoveDriver(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input moveDriverRequest
	if !readValidJSON(w, r, &input) {
		return
	}

	result, err := h.assignmentService.Move(r.Context(), id, input.ProfileID, services.MoveDriverInput{TierNumber: input.TierNumber})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, replayStatus(result), result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
