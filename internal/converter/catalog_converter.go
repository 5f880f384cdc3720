package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

func SpecialtiesToResponses(specialties []entity.Specialty) []dto.SpecialtyResponse {
	responses := make([]dto.SpecialtyResponse, len(specialties))
	for i, s := range specialties {
		responses[i] = dto.SpecialtyResponse{ID: s.ID, Name: s.Name}
	}
	return responses
}

// PhysicianToResponse converts a Physician entity to PhysicianResponse DTO
func PhysicianToResponse(physician *entity.Physician) *dto.PhysicianResponse {
	if physician == nil {
		return nil
	}

	return &dto.PhysicianResponse{
		ID:            physician.ID,
		FullName:      physician.FullName(),
		GivenNames:    physician.GivenNames,
		FamilyNames:   physician.FamilyNames,
		SpecialtyID:   physician.SpecialtyID,
		SpecialtyName: physician.Specialty.Name,
		Email:         physician.Email,
		Phone:         physician.Phone,
		LinkedUserID:  physician.LinkedUserID,
	}
}

func PhysiciansToResponses(physicians []entity.Physician) []dto.PhysicianResponse {
	responses := make([]dto.PhysicianResponse, len(physicians))
	for i := range physicians {
		responses[i] = *PhysicianToResponse(&physicians[i])
	}
	return responses
}
