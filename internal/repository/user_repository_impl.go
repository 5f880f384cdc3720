package repository

import (
	"context"
	"errors"

	"clinic-booking/internal/domain/entity"
	domainRepo "clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userRepository struct{}

func NewUserRepository() domainRepo.UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*entity.User, error) {
	var user entity.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateProfile writes only the editable contact fields
func (r *userRepository) UpdateProfile(ctx context.Context, db *gorm.DB, user *entity.User) error {
	return db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"given_names":  user.GivenNames,
			"family_names": user.FamilyNames,
			"email":        user.Email,
			"phone":        user.Phone,
		}).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, db *gorm.DB, id uuid.UUID, passwordHash string) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)
	return result.RowsAffected, result.Error
}
