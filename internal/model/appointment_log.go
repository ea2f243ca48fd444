package model

import "time"

// AppointmentLog records one status transition of an appointment.
// Entries are written in the same transaction as the transition itself.
type AppointmentLog struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	AppointmentID uint              `json:"appointment_id" gorm:"not null;index"`
	ActorID       uint              `json:"actor_id" gorm:"not null;index"`
	FromStatus    AppointmentStatus `json:"from_status,omitempty" gorm:"type:varchar(20)"`
	ToStatus      AppointmentStatus `json:"to_status" gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time         `json:"created_at"`
}
