package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	CreateIfAbsent(ctx context.Context, db *gorm.DB, notification *entity.Notification) (bool, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Notification, error)
	MarkRead(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error)
}
