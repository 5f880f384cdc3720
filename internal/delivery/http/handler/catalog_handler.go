package handler

import (
	"net/http"
	"strconv"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUsecase
	slotUsecase    usecase.SlotUsecase
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUsecase, slotUsecase usecase.SlotUsecase, validator *validator.CustomValidator, log *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogUsecase: catalogUsecase,
		slotUsecase:    slotUsecase,
		validator:      validator,
		log:            log,
	}
}

func (h *CatalogHandler) ListSpecialties(w http.ResponseWriter, r *http.Request) {
	specialties, err := h.catalogUsecase.ListSpecialties(r.Context())
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Specialties retrieved successfully", specialties)
}

// ListPhysicians accepts at most one of the specialty_id and user_id query filters
func (h *CatalogHandler) ListPhysicians(w http.ResponseWriter, r *http.Request) {
	var req dto.PhysicianFilterRequest
	query := r.URL.Query()

	if raw := query.Get("specialty_id"); raw != "" {
		specialtyID, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "Invalid specialty_id")
			return
		}
		req.SpecialtyID = &specialtyID
	}
	if raw := query.Get("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid user_id")
			return
		}
		req.LinkedUserID = &userID
	}

	physicians, err := h.catalogUsecase.ListPhysicians(r.Context(), &req)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Physicians retrieved successfully", physicians)
}

func (h *CatalogHandler) ListPatientsOfPhysician(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	physicianID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid physician ID")
		return
	}

	patients, err := h.catalogUsecase.ListPatientsOf(r.Context(), actor, physicianID)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", patients)
}

// GetMyPhysician returns the physician record linked to the calling administrator
func (h *CatalogHandler) GetMyPhysician(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	physician, err := h.catalogUsecase.PhysicianForUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Physician retrieved successfully", physician)
}

// AvailableSlots lists the upcoming open times of a physician's day, generating the day on first use
func (h *CatalogHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	physicianID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid physician ID")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date query parameter is required")
		return
	}

	slots, err := h.slotUsecase.AvailableSlots(r.Context(), physicianID, date)
	if err != nil {
		writeError(w, h.log, h.validator, err)
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}
