package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// BookAppointmentRequest books PatientID into a physician's slot.
// Patients book for themselves; administrators may supply patient_id.
type BookAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	PhysicianID int       `json:"physician_id" validate:"required,min=1"`
	Date        string    `json:"date" validate:"required,isodate"`
	Time        string    `json:"time" validate:"required,clock"`
}

type CancelByKeysRequest struct {
	PatientID   uuid.UUID `json:"patient_id"`
	PhysicianID int       `json:"physician_id" validate:"required,min=1"`
	Date        string    `json:"date" validate:"required,isodate"`
	Time        string    `json:"time" validate:"required,clock"`
}

type RescheduleRequest struct {
	Date string `json:"date" validate:"required,isodate"`
	Time string `json:"time" validate:"required,clock"`
}

type AttendanceRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=Attended NoShow"`
}

type AppointmentFilterRequest struct {
	Date        string `validate:"omitempty,isodate"`
	PhysicianID *int   `validate:"omitempty,min=1"`
}

// Response DTOs

type AppointmentResponse struct {
	ID            uuid.UUID `json:"id"`
	PatientID     uuid.UUID `json:"patient_id"`
	PatientName   string    `json:"patient_name,omitempty"`
	PhysicianID   int       `json:"physician_id"`
	PhysicianName string    `json:"physician_name,omitempty"`
	SpecialtyName string    `json:"specialty_name,omitempty"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
