package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReminderWindow is how far ahead a pending appointment triggers a reminder
const ReminderWindow = 24 * time.Hour

// Notification is a one-time reminder derived from a pending appointment
type Notification struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_notifications_appointment" json:"appointment_id"`
	PatientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"patient_id"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	IsRead        bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ReminderMessage renders the reminder text for an appointment instant
func ReminderMessage(specialty, physician string, at time.Time) string {
	return fmt.Sprintf("You have a %s appointment with %s on %s at %s.",
		specialty, physician, at.Format("02/01/2006"), at.Format(ClockLayout))
}

// IsDueForReminder reports whether at lies in (now, now+ReminderWindow]
func IsDueForReminder(now, at time.Time) bool {
	diff := at.Sub(now)
	return diff > 0 && diff <= ReminderWindow
}
