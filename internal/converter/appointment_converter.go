package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Names are filled only when the relationships were preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		PhysicianID: appointment.PhysicianID,
		Date:        appointment.Date,
		Time:        appointment.Time,
		Status:      string(appointment.Status),
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}

	if appointment.Patient.ID != uuid.Nil {
		response.PatientName = appointment.Patient.FullName()
	}
	if appointment.Physician.ID != 0 {
		response.PhysicianName = appointment.Physician.FullName()
		response.SpecialtyName = appointment.Physician.Specialty.Name
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
