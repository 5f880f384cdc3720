package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type physicianRepository struct{}

func NewPhysicianRepository() domainRepo.PhysicianRepository {
	return &physicianRepository{}
}

func (r *physicianRepository) Create(ctx context.Context, db *gorm.DB, physician *entity.Physician) error {
	return db.WithContext(ctx).Omit("Specialty", "LinkedUser").Create(physician).Error
}

func (r *physicianRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Physician, error) {
	var physician entity.Physician
	err := db.WithContext(ctx).Preload("Specialty").Where("id = ?", id).First(&physician).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &physician, nil
}

func (r *physicianRepository) FindByLinkedUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.Physician, error) {
	var physician entity.Physician
	err := db.WithContext(ctx).Preload("Specialty").Where("linked_user_id = ?", userID).First(&physician).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &physician, nil
}

// FindAll applies whichever single predicate the filter carries
func (r *physicianRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.PhysicianFilter) ([]entity.Physician, error) {
	var physicians []entity.Physician
	query := db.WithContext(ctx).Preload("Specialty")

	if filter != nil {
		if filter.LinkedUserID != nil {
			query = query.Where("linked_user_id = ?", *filter.LinkedUserID)
		} else if filter.SpecialtyID != nil {
			query = query.Where("specialty_id = ?", *filter.SpecialtyID)
		}
	}

	err := query.Order("id ASC").Find(&physicians).Error
	if err != nil {
		return nil, err
	}
	return physicians, nil
}

// FindPatients returns every user holding at least one appointment with the physician
func (r *physicianRepository) FindPatients(ctx context.Context, db *gorm.DB, physicianID int) ([]entity.User, error) {
	var patients []entity.User
	booked := db.Model(&entity.Appointment{}).Select("patient_id").Where("physician_id = ?", physicianID)

	err := db.WithContext(ctx).
		Where("id IN (?)", booked).
		Order("family_names ASC, given_names ASC").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *physicianRepository) UpdateContact(ctx context.Context, db *gorm.DB, physician *entity.Physician) error {
	return db.WithContext(ctx).Model(&entity.Physician{}).
		Where("id = ?", physician.ID).
		Updates(map[string]interface{}{
			"given_names":  physician.GivenNames,
			"family_names": physician.FamilyNames,
			"phone":        physician.Phone,
			"email":        physician.Email,
		}).Error
}
