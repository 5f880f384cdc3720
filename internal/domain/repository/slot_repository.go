package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"

	"gorm.io/gorm"
)

type SlotRepository interface {
	CountByPhysicianAndDate(ctx context.Context, db *gorm.DB, physicianID int, date string) (int64, error)
	CreateBatch(ctx context.Context, db *gorm.DB, slots []entity.Slot) error
	FindOpen(ctx context.Context, db *gorm.DB, physicianID int, date string) ([]entity.Slot, error)
	Reserve(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error)
	Release(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error)
}
