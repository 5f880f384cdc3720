package repository

import (
	"context"

	"clinic-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindActiveByKeys(ctx context.Context, db *gorm.DB, patientID uuid.UUID, physicianID int, date, clock string) (*entity.Appointment, error)
	FindActiveByPatientAt(ctx context.Context, db *gorm.DB, patientID uuid.UUID, date, clock string) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	FindPendingBetween(ctx context.Context, db *gorm.DB, patientID uuid.UUID, fromDate, toDate string) ([]entity.Appointment, error)
	FindPatientIDsWithPendingBetween(ctx context.Context, db *gorm.DB, fromDate, toDate string) ([]uuid.UUID, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error)
	UpdateSchedule(ctx context.Context, db *gorm.DB, id uuid.UUID, date, clock string) (int64, error)
}
