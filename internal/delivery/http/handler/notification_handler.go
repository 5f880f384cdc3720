package handler

import (
	"net/http"
	"strconv"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
	log                 *logrus.Logger
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		validator:           validator,
		log:                 log,
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	notifications, err := h.notificationUsecase.List(r.Context(), patientID)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.notificationUsecase.MarkRead(r.Context(), patientID, id); err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	patientID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.notificationUsecase.Delete(r.Context(), patientID, id); err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Notification deleted successfully", nil)
}
