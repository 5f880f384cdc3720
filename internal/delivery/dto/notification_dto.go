package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID            int64     `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	Unread        int                    `json:"unread"`
}
