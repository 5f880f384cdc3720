package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PhysicianRepository interface {
	Create(ctx context.Context, db *gorm.DB, physician *entity.Physician) error
	FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Physician, error)
	FindByLinkedUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Physician, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error)
	FindPatients(ctx context.Context, db *gorm.DB, physicianID int) ([]entity.User, error)
	UpdateContact(ctx context.Context, db *gorm.DB, physician *entity.Physician) error
}
