package model

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Active reports whether an appointment in this status holds its time slot.
func (s AppointmentStatus) Active() bool {
	return s != AppointmentStatusCancelled
}

// Appointment is a patient's claim on a doctor's time slot.
//
// The Scheduled* columns copy the slot's schedule at booking time so that the
// appointment keeps its schedule if the slot is later deleted.
type Appointment struct {
	ID             uint              `json:"id" gorm:"primaryKey"`
	DoctorID       uint              `json:"doctor" gorm:"not null;index"`
	PatientID      uint              `json:"patient" gorm:"not null;uniqueIndex:idx_appointments_patient_slot,priority:1"`
	TimeSlotID     *uint             `json:"timeslot" gorm:"column:timeslot_id;uniqueIndex:idx_appointments_patient_slot,priority:2"`
	Status         AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ScheduledDate  *Date             `json:"scheduled_date,omitempty" gorm:"index"`
	ScheduledStart *Clock            `json:"scheduled_start,omitempty"`
	ScheduledEnd   *Clock            `json:"scheduled_end,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Relations
	Doctor   *User     `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
	Patient  *User     `json:"-" gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE"`
	TimeSlot *TimeSlot `json:"-" gorm:"foreignKey:TimeSlotID;constraint:OnDelete:SET NULL"`
}

// OwnerReference returns the patient who booked the appointment.
func (a *Appointment) OwnerReference() uint {
	return a.PatientID
}

// Participants returns every user with rights over the appointment.
func (a *Appointment) Participants() []uint {
	return []uint{a.PatientID, a.DoctorID}
}

// Schedule copies the slot's window onto the appointment.
func (a *Appointment) Schedule(slot *TimeSlot) {
	id := slot.ID
	date, start, end := slot.Date, slot.StartTime, slot.EndTime
	a.TimeSlotID = &id
	a.ScheduledDate = &date
	a.ScheduledStart = &start
	a.ScheduledEnd = &end
}
