package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserRole distinguishes patients from administrator-physicians
type UserRole string

const (
	RolePatient       UserRole = "Patient"
	RoleAdministrator UserRole = "Administrator"
)

// IsValid reports whether r is one of the known roles
func (r UserRole) IsValid() bool {
	return r == RolePatient || r == RoleAdministrator
}

// SecurityQuestionCount is the number of challenge/response pairs stored per user
const SecurityQuestionCount = 3

// User represents the centralized identity table.
// Security answers are stored hashed, never in clear text.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Role         UserRole  `gorm:"type:varchar(20);not null;index" json:"role"`
	GivenNames   string    `gorm:"type:varchar(100);not null" json:"given_names"`
	FamilyNames  string    `gorm:"type:varchar(100);not null" json:"family_names"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:uq_users_email;not null" json:"email"`
	Phone        string    `gorm:"type:char(10);not null" json:"phone"`
	NationalID   string    `gorm:"column:national_id;type:char(10);uniqueIndex:uq_users_national_id;not null" json:"national_id"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	SecurityQ1   string    `gorm:"column:security_q1;type:text" json:"-"`
	SecurityA1   string    `gorm:"column:security_a1;type:text" json:"-"`
	SecurityQ2   string    `gorm:"column:security_q2;type:text" json:"-"`
	SecurityA2   string    `gorm:"column:security_a2;type:text" json:"-"`
	SecurityQ3   string    `gorm:"column:security_q3;type:text" json:"-"`
	SecurityA3   string    `gorm:"column:security_a3;type:text" json:"-"`
	Photo        *string   `gorm:"type:text" json:"photo,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins given and family names
func (u *User) FullName() string {
	return u.GivenNames + " " + u.FamilyNames
}

// IsAdministrator checks if the user acts as a physician administrator
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// SecurityQuestions returns the stored questions in order
func (u *User) SecurityQuestions() []string {
	return []string{u.SecurityQ1, u.SecurityQ2, u.SecurityQ3}
}

// SecurityAnswerHashes returns the stored answer hashes in question order
func (u *User) SecurityAnswerHashes() []string {
	return []string{u.SecurityA1, u.SecurityA2, u.SecurityA3}
}

// SetSecurityPairs stores questions with their already-hashed answers
func (u *User) SetSecurityPairs(questions, answerHashes [SecurityQuestionCount]string) {
	u.SecurityQ1, u.SecurityA1 = questions[0], answerHashes[0]
	u.SecurityQ2, u.SecurityA2 = questions[1], answerHashes[1]
	u.SecurityQ3, u.SecurityA3 = questions[2], answerHashes[2]
}
