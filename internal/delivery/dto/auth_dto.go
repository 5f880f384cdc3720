package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SecurityQA struct {
	Question string `json:"question" validate:"required,max=255"`
	Answer   string `json:"answer" validate:"required,max=255"`
}

type RegisterRequest struct {
	Role              string       `json:"role" validate:"required,oneof=Patient Administrator"`
	GivenNames        string       `json:"given_names" validate:"required,min=2,max=100"`
	FamilyNames       string       `json:"family_names" validate:"required,min=2,max=100"`
	Email             string       `json:"email" validate:"required,email,max=255"`
	Phone             string       `json:"phone" validate:"required,digits10"`
	NationalID        string       `json:"national_id" validate:"required,digits10"`
	Password          string       `json:"password" validate:"required,strongpassword"`
	SpecialtyID       *int         `json:"specialty_id,omitempty" validate:"omitempty,min=1"`
	SecurityQuestions []SecurityQA `json:"security_questions" validate:"required,len=3,dive"`
	Photo             *string      `json:"photo,omitempty" validate:"omitempty,max=2048"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strongpassword"`
}

type UpdateProfileRequest struct {
	GivenNames  string `json:"given_names" validate:"required,min=2,max=100"`
	FamilyNames string `json:"family_names" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"required,digits10"`
}

type RecoveryQuestionsRequest struct {
	Email      string `json:"email" validate:"required,email"`
	NationalID string `json:"national_id" validate:"required,digits10"`
}

type ResetPasswordRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	NationalID  string   `json:"national_id" validate:"required,digits10"`
	Answers     []string `json:"answers" validate:"required,len=3,dive,required"`
	NewPassword string   `json:"new_password" validate:"required,strongpassword"`
}

// Response DTOs

type AuthResult struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	UserID       uuid.UUID `json:"user_id"`
	Role         string    `json:"role"`
}

type UserResponse struct {
	ID          uuid.UUID          `json:"id"`
	Role        string             `json:"role"`
	GivenNames  string             `json:"given_names"`
	FamilyNames string             `json:"family_names"`
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	Phone       string             `json:"phone"`
	NationalID  string             `json:"national_id"`
	Photo       *string            `json:"photo,omitempty"`
	Physician   *PhysicianResponse `json:"physician,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type SecurityQuestionsResponse struct {
	Questions []string `json:"questions"`
}
