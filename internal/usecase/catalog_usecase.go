package usecase

import (
	"context"

	"clinic-booking/internal/converter"
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
	"clinic-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CatalogUsecase interface {
	ListSpecialties(ctx context.Context) (*dto.SpecialtyListResponse, error)
	ListPhysicians(ctx context.Context, req *dto.PhysicianFilterRequest) (*dto.PhysicianListResponse, error)
	ListPatientsOf(ctx context.Context, actor Actor, physicianID int) (*dto.PatientListResponse, error)
	PhysicianForUser(ctx context.Context, userID uuid.UUID) (*dto.PhysicianResponse, error)
}

type catalogUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	specialtyRepo repository.SpecialtyRepository
	physicianRepo repository.PhysicianRepository
}

func NewCatalogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	specialtyRepo repository.SpecialtyRepository,
	physicianRepo repository.PhysicianRepository,
) CatalogUsecase {
	return &catalogUsecase{
		db:            db,
		log:           log,
		specialtyRepo: specialtyRepo,
		physicianRepo: physicianRepo,
	}
}

func (u *catalogUsecase) ListSpecialties(ctx context.Context) (*dto.SpecialtyListResponse, error) {
	specialties, err := u.specialtyRepo.FindAll(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list specialties: %+v", err)
		return nil, storageError(err)
	}

	return &dto.SpecialtyListResponse{
		Specialties: converter.SpecialtiesToResponses(specialties),
		Total:       len(specialties),
	}, nil
}

// ListPhysicians accepts at most one predicate; an empty filter lists everyone
func (u *catalogUsecase) ListPhysicians(ctx context.Context, req *dto.PhysicianFilterRequest) (*dto.PhysicianListResponse, error) {
	var filter *entity.PhysicianFilter
	if req != nil {
		filter = &entity.PhysicianFilter{
			SpecialtyID:  req.SpecialtyID,
			LinkedUserID: req.LinkedUserID,
		}
	}
	if filter.IsAmbiguous() {
		return nil, ErrAmbiguousFilter
	}

	physicians, err := u.physicianRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to list physicians: %+v", err)
		return nil, storageError(err)
	}

	return &dto.PhysicianListResponse{
		Physicians: converter.PhysiciansToResponses(physicians),
		Total:      len(physicians),
	}, nil
}

// ListPatientsOf is open only to the administrator linked to the physician
func (u *catalogUsecase) ListPatientsOf(ctx context.Context, actor Actor, physicianID int) (*dto.PatientListResponse, error) {
	if !actor.isAdministrator() {
		return nil, ErrAdministratorsOnly
	}

	physician, err := u.physicianRepo.FindByID(ctx, u.db, physicianID)
	if err != nil {
		u.log.Warnf("Failed to find physician: %+v", err)
		return nil, storageError(err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}
	if physician.LinkedUserID == nil || *physician.LinkedUserID != actor.UserID {
		return nil, ErrForeignPhysician
	}

	patients, err := u.physicianRepo.FindPatients(ctx, u.db, physicianID)
	if err != nil {
		u.log.Warnf("Failed to list patients of physician %d: %+v", physicianID, err)
		return nil, storageError(err)
	}

	return &dto.PatientListResponse{
		Patients: converter.PatientsToResponses(patients),
		Total:    len(patients),
	}, nil
}

func (u *catalogUsecase) PhysicianForUser(ctx context.Context, userID uuid.UUID) (*dto.PhysicianResponse, error) {
	physician, err := u.physicianRepo.FindByLinkedUserID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find linked physician: %+v", err)
		return nil, storageError(err)
	}
	if physician == nil {
		return nil, ErrPhysicianNotFound
	}
	return converter.PhysicianToResponse(physician), nil
}
