package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type slotRepository struct{}

func NewSlotRepository() domainRepo.SlotRepository {
	return &slotRepository{}
}

func (r *slotRepository) CountByPhysicianAndDate(ctx context.Context, db *gorm.DB, physicianID int, date string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&entity.Slot{}).
		Where(`physician_id = ? AND "date" = ?`, physicianID, date).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts the slots, silently skipping any (physician, date, time) already present
func (r *slotRepository) CreateBatch(ctx context.Context, db *gorm.DB, slots []entity.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Omit("Physician").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&slots).Error
}

func (r *slotRepository) FindOpen(ctx context.Context, db *gorm.DB, physicianID int, date string) ([]entity.Slot, error) {
	var slots []entity.Slot
	err := db.WithContext(ctx).
		Where(`physician_id = ? AND "date" = ? AND status = ?`, physicianID, date, entity.SlotStatusOpen).
		Order(`"time" ASC`).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Reserve flips an Open slot to Reserved.
// Returns affected rows: 1 = reserved, 0 = missing or already reserved.
func (r *slotRepository) Reserve(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Slot{}).
		Where(`physician_id = ? AND "date" = ? AND "time" = ? AND status = ?`, physicianID, date, clock, entity.SlotStatusOpen).
		Update("status", entity.SlotStatusReserved)
	return result.RowsAffected, result.Error
}

// Release flips a Reserved slot back to Open.
// Returns affected rows: 1 = released, 0 = missing or already open.
func (r *slotRepository) Release(ctx context.Context, db *gorm.DB, physicianID int, date, clock string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Slot{}).
		Where(`physician_id = ? AND "date" = ? AND "time" = ? AND status = ?`, physicianID, date, clock, entity.SlotStatusReserved).
		Update("status", entity.SlotStatusOpen)
	return result.RowsAffected, result.Error
}
