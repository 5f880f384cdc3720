package dto

import "github.com/google/uuid"

// Request DTOs

type PhysicianFilterRequest struct {
	SpecialtyID  *int
	LinkedUserID *uuid.UUID
}

// Response DTOs

type SpecialtyResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type SpecialtyListResponse struct {
	Specialties []SpecialtyResponse `json:"specialties"`
	Total       int                 `json:"total"`
}

type PhysicianResponse struct {
	ID            int        `json:"id"`
	FullName      string     `json:"full_name"`
	GivenNames    string     `json:"given_names"`
	FamilyNames   string     `json:"family_names"`
	SpecialtyID   int        `json:"specialty_id"`
	SpecialtyName string     `json:"specialty_name,omitempty"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone,omitempty"`
	LinkedUserID  *uuid.UUID `json:"linked_user_id,omitempty"`
}

type PhysicianListResponse struct {
	Physicians []PhysicianResponse `json:"physicians"`
	Total      int                 `json:"total"`
}

type PatientResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	GivenNames  string    `json:"given_names"`
	FamilyNames string    `json:"family_names"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
}

type PatientListResponse struct {
	Patients []PatientResponse `json:"patients"`
	Total    int               `json:"total"`
}
