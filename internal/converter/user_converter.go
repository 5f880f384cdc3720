package converter

import (
	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO.
// physician may be nil for patients and unlinked administrators.
func UserToResponse(user *entity.User, physician *entity.Physician) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:          user.ID,
		Role:        string(user.Role),
		GivenNames:  user.GivenNames,
		FamilyNames: user.FamilyNames,
		FullName:    user.FullName(),
		Email:       user.Email,
		Phone:       user.Phone,
		NationalID:  user.NationalID,
		Photo:       user.Photo,
		Physician:   PhysicianToResponse(physician),
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// PatientToResponse converts a User entity to the reduced PatientResponse DTO
func PatientToResponse(user *entity.User) dto.PatientResponse {
	return dto.PatientResponse{
		ID:          user.ID,
		FullName:    user.FullName(),
		GivenNames:  user.GivenNames,
		FamilyNames: user.FamilyNames,
		Email:       user.Email,
		Phone:       user.Phone,
	}
}

func PatientsToResponses(users []entity.User) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(users))
	for i := range users {
		responses[i] = PatientToResponse(&users[i])
	}
	return responses
}
