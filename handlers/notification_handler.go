package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/karting-league/middleware"
	"github.com/Dosada05/karting-league/services"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(ns services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

// ListMyNotifications godoc
// @Summary Tier movement notifications of the caller
// @Tags notifications
// @Produce json
// @Param unread query bool false "Only unread"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /me/tier-notifications [get]
func (h *NotificationHandler) ListMyNotifications(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	unreadOnly, err := boolQuery(r, "unread")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	notifications, err := h.notificationService.List(r.Context(), profileID, unreadOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notifications": notifications}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkRead godoc
// @Summary Mark one notification as read
// @Tags notifications
// @Produce json
// @Param notificationID path int true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /me/tier-notifications/{notificationID}/mark-read [post]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	rawID := chi.URLParam(r, "notificationID")
	notificationID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || notificationID <= 0 {
		errorResponse(w, r, http.StatusBadRequest, "invalid notificationID format: "+strconv.Quote(rawID))
		return
	}

	notification, err := h.notificationService.MarkRead(r.Context(), profileID, notificationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"notification": notification}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MarkAllRead godoc
// @Summary Mark every notification of the caller as read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /me/tier-notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	count, err := h.notificationService.MarkAllRead(r.Context(), profileID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"marked_read": count}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
