package handler

import (
	"errors"
	"net/http"

	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"
	"clinic-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

var kindStatus = map[usecase.ErrorKind]int{
	usecase.KindValidation:     http.StatusBadRequest,
	usecase.KindConflict:       http.StatusConflict,
	usecase.KindNotFound:       http.StatusNotFound,
	usecase.KindState:          http.StatusUnprocessableEntity,
	usecase.KindAuthentication: http.StatusUnauthorized,
	usecase.KindForbidden:      http.StatusForbidden,
	usecase.KindStorage:        http.StatusInternalServerError,
}

// statusForError maps a usecase failure to its HTTP status
func statusForError(err error) int {
	if status, ok := kindStatus[usecase.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError renders a usecase failure. Storage details never reach the client.
func writeError(w http.ResponseWriter, log *logrus.Logger, v *validator.CustomValidator, err error) {
	var ue *usecase.Error
	if !errors.As(err, &ue) || ue.Kind == usecase.KindStorage {
		log.Errorf("Request failed: %+v", err)
		response.InternalServerError(w, "")
		return
	}

	if ue.Kind == usecase.KindValidation {
		if fields := v.FormatValidationErrors(err); len(fields) > 0 {
			response.ValidationError(w, fields)
			return
		}
		if ue.Err != nil {
			response.Fail(w, http.StatusBadRequest, ue.Code, ue.Err.Error())
			return
		}
	}

	response.Fail(w, statusForError(err), ue.Code, ue.Message)
}

// actorFromRequest builds the ledger actor from the authenticated context
func actorFromRequest(r *http.Request) (usecase.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, ok := middleware.GetRoleFromContext(r.Context())
	if !ok || !role.IsValid() {
		return usecase.Actor{}, false
	}
	return usecase.Actor{UserID: userID, Role: role}, true
}
