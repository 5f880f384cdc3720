package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "Pending"
	AppointmentStatusAttended  AppointmentStatus = "Attended"
	AppointmentStatusNoShow    AppointmentStatus = "NoShow"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
)

// IsAttendanceOutcome reports whether s may be recorded by attendance marking
func (s AppointmentStatus) IsAttendanceOutcome() bool {
	return s == AppointmentStatusAttended || s == AppointmentStatusNoShow
}

// Appointment binds a patient to a physician's slot.
// While not cancelled, the slot (PhysicianID, Date, Time) is Reserved.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	PhysicianID int               `gorm:"not null;index" json:"physician_id"`
	Date        string            `gorm:"type:char(10);not null;index" json:"date"`
	Time        string            `gorm:"type:char(5);not null" json:"time"`
	Status      AppointmentStatus `gorm:"type:varchar(10);not null;default:'Pending';index" json:"status"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient   User      `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Physician Physician `gorm:"foreignKey:PhysicianID" json:"physician,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is still open to changes
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsCancelled checks if appointment was cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// IsFinalized reports a terminal status: Attended, NoShow or Cancelled
func (a *Appointment) IsFinalized() bool {
	return !a.IsPending()
}

// StartsAt returns the appointment instant in loc
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return CombineDateClock(a.Date, a.Time, loc)
}

// AppointmentFilter narrows the administrator listing. Zero values match everything.
type AppointmentFilter struct {
	Date        string
	PhysicianID *int
}
