package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

// CreateIfAbsent inserts the notification unless one already exists for its appointment.
// Reports whether a row was written.
func (r *notificationRepository) CreateIfAbsent(ctx context.Context, db *gorm.DB, notification *entity.Notification) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "appointment_id"}},
			DoNothing: true,
		}).
		Create(notification)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Notification{}).
		Where("id = ? AND patient_id = ?", id, patientID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *notificationRepository) Delete(ctx context.Context, db *gorm.DB, patientID uuid.UUID, id int64) (int64, error) {
	result := db.WithContext(ctx).
		Where("id = ? AND patient_id = ?", id, patientID).
		Delete(&entity.Notification{})
	return result.RowsAffected, result.Error
}
