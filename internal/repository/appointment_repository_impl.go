package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Omit("Patient", "Physician").Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Preload("Patient").Preload("Physician.Specialty").
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindByIDForUpdate locks the appointment row until the surrounding transaction ends
func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByKeys(ctx context.Context, db *gorm.DB, patientID uuid.UUID, physicianID int, date, clock string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Where(`patient_id = ? AND physician_id = ? AND "date" = ? AND "time" = ? AND status != ?`,
			patientID, physicianID, date, clock, entity.AppointmentStatusCancelled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveByPatientAt(ctx context.Context, db *gorm.DB, patientID uuid.UUID, date, clock string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).
		Where(`patient_id = ? AND "date" = ? AND "time" = ? AND status != ?`,
			patientID, date, clock, entity.AppointmentStatusCancelled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Physician.Specialty").
		Where("patient_id = ?", patientID).
		Order(`"date" ASC, "time" ASC`).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).Preload("Patient").Preload("Physician.Specialty")

	if filter != nil {
		if filter.Date != "" {
			query = query.Where(`"date" = ?`, filter.Date)
		}
		if filter.PhysicianID != nil {
			query = query.Where("physician_id = ?", *filter.PhysicianID)
		}
	}

	err := query.Order(`"date" ASC, "time" ASC`).Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindPendingBetween returns a patient's pending appointments dated within [fromDate, toDate]
func (r *appointmentRepository) FindPendingBetween(ctx context.Context, db *gorm.DB, patientID uuid.UUID, fromDate, toDate string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.WithContext(ctx).
		Preload("Physician.Specialty").
		Where(`patient_id = ? AND status = ? AND "date" BETWEEN ? AND ?`,
			patientID, entity.AppointmentStatusPending, fromDate, toDate).
		Order(`"date" ASC, "time" ASC`).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindPatientIDsWithPendingBetween(ctx context.Context, db *gorm.DB, fromDate, toDate string) ([]uuid.UUID, error) {
	var patientIDs []uuid.UUID
	err := db.WithContext(ctx).Model(&entity.Appointment{}).
		Distinct("patient_id").
		Where(`status = ? AND "date" BETWEEN ? AND ?`, entity.AppointmentStatusPending, fromDate, toDate).
		Pluck("patient_id", &patientIDs).Error
	if err != nil {
		return nil, err
	}
	return patientIDs, nil
}

// UpdateStatus atomically moves an appointment from one status to another.
// Returns affected rows: 1 = success, 0 = not in the expected status (prevents double transitions).
func (r *appointmentRepository) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// UpdateSchedule moves a pending appointment to a new date and time
func (r *appointmentRepository) UpdateSchedule(ctx context.Context, db *gorm.DB, id uuid.UUID, date, clock string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, entity.AppointmentStatusPending).
		Updates(map[string]interface{}{
			"date": date,
			"time": clock,
		})
	return result.RowsAffected, result.Error
}
