package entity

import "github.com/google/uuid"

// Physician is a directory entry, optionally linked to an administrator account
type Physician struct {
	ID           int        `gorm:"primaryKey;autoIncrement" json:"id"`
	GivenNames   string     `gorm:"type:varchar(100);not null" json:"given_names"`
	FamilyNames  string     `gorm:"type:varchar(100);not null" json:"family_names"`
	SpecialtyID  int        `gorm:"not null;index" json:"specialty_id"`
	Phone        string     `gorm:"type:char(10)" json:"phone,omitempty"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex:uq_physicians_email;not null" json:"email"`
	LinkedUserID *uuid.UUID `gorm:"type:uuid;index" json:"linked_user_id,omitempty"`

	// Relationships
	Specialty  Specialty `gorm:"foreignKey:SpecialtyID" json:"specialty,omitempty"`
	LinkedUser *User     `gorm:"foreignKey:LinkedUserID" json:"linked_user,omitempty"`
}

func (Physician) TableName() string {
	return "physicians"
}

// FullName joins given and family names
func (p *Physician) FullName() string {
	return p.GivenNames + " " + p.FamilyNames
}

// PhysicianFilter selects physicians by at most one predicate.
// A nil filter or one with no field set matches every physician.
type PhysicianFilter struct {
	SpecialtyID  *int
	LinkedUserID *uuid.UUID
}

// IsAmbiguous reports whether more than one predicate was supplied
func (f *PhysicianFilter) IsAmbiguous() bool {
	return f != nil && f.SpecialtyID != nil && f.LinkedUserID != nil
}
