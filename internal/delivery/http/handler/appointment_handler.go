package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type AppointmentHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewAppointmentHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator, log *logrus.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
		log:            log,
	}
}

func appointmentIDFromPath(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

// Book reserves a slot for the caller, or for patient_id when an administrator books
// @Summary Book an appointment
// @Tags Appointments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookAppointmentRequest true "Booking Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /appointments [post]
func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.bookingUsecase.Book(r.Context(), actor, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := appointmentIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.bookingUsecase.Cancel(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

// CancelByKeys cancels the active appointment matching patient, physician, date and time
func (h *AppointmentHandler) CancelByKeys(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CancelByKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.bookingUsecase.CancelByKeys(r.Context(), actor, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appointment)
}

// Reschedule moves an appointment the caller owns, or one on the calling administrator's calendar
func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := appointmentIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.bookingUsecase.Reschedule(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := appointmentIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	var req dto.AttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	appointment, err := h.bookingUsecase.MarkAttendance(r.Context(), actor, id, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Attendance recorded successfully", appointment)
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	id, ok := appointmentIDFromPath(r)
	if !ok {
		response.BadRequest(w, "Invalid appointment ID")
		return
	}

	appointment, err := h.bookingUsecase.GetAppointment(r.Context(), actor, id)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

func (h *AppointmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	appointments, err := h.bookingUsecase.ListForPatient(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

// ListAll returns the calling administrator's calendar, optionally narrowed by date
func (h *AppointmentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	query := r.URL.Query()
	req := dto.AppointmentFilterRequest{Date: query.Get("date")}

	if raw := query.Get("physician_id"); raw != "" {
		physicianID, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid physician_id")
			return
		}
		req.PhysicianID = &physicianID
	}

	appointments, err := h.bookingUsecase.ListAll(r.Context(), actor, &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}
