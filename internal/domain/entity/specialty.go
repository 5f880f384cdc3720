package entity

// Specialty is a fixed catalog entry seeded by the initial migration
type Specialty struct {
	ID   int    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`

	// Relationships
	Physicians []Physician `gorm:"foreignKey:SpecialtyID" json:"physicians,omitempty"`
}

func (Specialty) TableName() string {
	return "specialties"
}

// DefaultSpecialties is the seeded catalog, in id order
var DefaultSpecialties = []string{
	"Medicina General",
	"Medicina Familiar",
	"Odontología",
	"Obstetricia",
	"Ginecología",
}
