package usecase

import (
	"context"
	"time"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SlotUsecase interface {
	EnsureSlots(ctx context.Context, physicianID int, date string) error
	ListOpenSlots(ctx context.Context, physicianID int, date string) ([]string, error)
	AvailableSlots(ctx context.Context, physicianID int, date string) (*dto.SlotListResponse, error)
}

type slotUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	slotRepo      repository.SlotRepository
	physicianRepo repository.PhysicianRepository
	now           func() time.Time
}

func NewSlotUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	slotRepo repository.SlotRepository,
	physicianRepo repository.PhysicianRepository,
) SlotUsecase {
	return &slotUsecase{
		db:            db,
		log:           log,
		slotRepo:      slotRepo,
		physicianRepo: physicianRepo,
		now:           time.Now,
	}
}

// ensureDaySlots generates a physician's day once. A day that already has
// any slot is left untouched; concurrent generators collide on the unique
// (physician, date, time) index and skip the rows the other inserted.
func ensureDaySlots(ctx context.Context, db *gorm.DB, slotRepo repository.SlotRepository, physicianID int, date string) error {
	count, err := slotRepo.CountByPhysicianAndDate(ctx, db, physicianID, date)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return slotRepo.CreateBatch(ctx, db, entity.NewDaySlots(physicianID, date))
}

func (u *slotUsecase) requirePhysician(ctx context.Context, physicianID int) error {
	physician, err := u.physicianRepo.FindByID(ctx, u.db, physicianID)
	if err != nil {
		u.log.Warnf("Failed to find physician: %+v", err)
		return storageError(err)
	}
	if physician == nil {
		return ErrPhysicianNotFound
	}
	return nil
}

func (u *slotUsecase) EnsureSlots(ctx context.Context, physicianID int, date string) error {
	if _, err := entity.ParseDate(date); err != nil {
		return ErrInvalidDate
	}
	if err := u.requirePhysician(ctx, physicianID); err != nil {
		return err
	}

	if err := ensureDaySlots(ctx, u.db, u.slotRepo, physicianID, date); err != nil {
		u.log.Warnf("Failed to ensure slots for physician %d on %s: %+v", physicianID, date, err)
		return storageError(err)
	}
	return nil
}

// ListOpenSlots returns the open times of the day in ascending order, regardless of the clock
func (u *slotUsecase) ListOpenSlots(ctx context.Context, physicianID int, date string) ([]string, error) {
	if _, err := entity.ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}

	slots, err := u.slotRepo.FindOpen(ctx, u.db, physicianID, date)
	if err != nil {
		u.log.Warnf("Failed to list open slots: %+v", err)
		return nil, storageError(err)
	}

	times := make([]string, len(slots))
	for i, slot := range slots {
		times[i] = slot.Time
	}
	return times, nil
}

// AvailableSlots ensures the day exists and returns the open times still ahead of now
func (u *slotUsecase) AvailableSlots(ctx context.Context, physicianID int, date string) (*dto.SlotListResponse, error) {
	if err := u.EnsureSlots(ctx, physicianID, date); err != nil {
		return nil, err
	}

	times, err := u.ListOpenSlots(ctx, physicianID, date)
	if err != nil {
		return nil, err
	}

	upcoming := entity.UpcomingTimes(u.now(), date, times)
	return &dto.SlotListResponse{
		PhysicianID: physicianID,
		Date:        date,
		Times:       upcoming,
		Total:       len(upcoming),
	}, nil
}
