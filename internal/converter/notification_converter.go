package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = dto.NotificationResponse{
			ID:            n.ID,
			AppointmentID: n.AppointmentID,
			Message:       n.Message,
			IsRead:        n.IsRead,
			CreatedAt:     n.CreatedAt,
		}
	}
	return responses
}
