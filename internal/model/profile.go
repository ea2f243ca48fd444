package model

import "time"

// Gender values accepted on profiles.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// DefaultSpecialization is assigned to doctors registering without one.
const DefaultSpecialization = "General"

// DoctorProfile holds doctor-specific details, created alongside the user.
type DoctorProfile struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Specialization  string    `json:"specialization" gorm:"size:100;not null;index"`
	ExperienceYears int       `json:"experience_years" gorm:"not null;default:0"`
	Gender          Gender    `json:"gender" gorm:"type:varchar(10)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PatientProfile holds patient-specific details, created alongside the user.
type PatientProfile struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Phone       string    `json:"phone" gorm:"size:20"`
	DateOfBirth *Date     `json:"date_of_birth,omitempty"`
	Gender      Gender    `json:"gender" gorm:"type:varchar(10)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
