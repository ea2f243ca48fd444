package model

import (
	"strings"
	"time"
)

// Role is the business role of a user. It is assigned at creation and never reassigned.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User represents an authenticated user in the system.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	Role         Role      `json:"role" gorm:"type:varchar(10);not null;default:'patient';index"`
	IsSuperuser  bool      `json:"-" gorm:"not null"`
	IsActive     bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	DoctorProfile  *DoctorProfile  `json:"doctor_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PatientProfile *PatientProfile `json:"patient_profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// OwnerReference returns the user itself.
func (u *User) OwnerReference() uint {
	return u.ID
}
