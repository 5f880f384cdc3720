package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type specialtyRepository struct{}

func NewSpecialtyRepository() domainRepo.SpecialtyRepository {
	return &specialtyRepository{}
}

func (r *specialtyRepository) FindAll(ctx context.Context, db *gorm.DB) ([]entity.Specialty, error) {
	var specialties []entity.Specialty
	err := db.WithContext(ctx).Order("id ASC").Find(&specialties).Error
	if err != nil {
		return nil, err
	}
	return specialties, nil
}

func (r *specialtyRepository) FindByID(ctx context.Context, db *gorm.DB, id int) (*entity.Specialty, error) {
	var specialty entity.Specialty
	err := db.WithContext(ctx).Where("id = ?", id).First(&specialty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &specialty, nil
}
