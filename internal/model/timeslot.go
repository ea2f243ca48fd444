package model

import "time"

// TimeSlot is a doctor's bookable window on a given date.
type TimeSlot struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DoctorID    uint      `json:"doctor" gorm:"not null;uniqueIndex:idx_time_slots_window,priority:1;index:idx_time_slots_doctor_date,priority:1"`
	Date        Date      `json:"date" gorm:"not null;uniqueIndex:idx_time_slots_window,priority:2;index:idx_time_slots_doctor_date,priority:2"`
	StartTime   Clock     `json:"start_time" gorm:"not null;uniqueIndex:idx_time_slots_window,priority:3"`
	EndTime     Clock     `json:"end_time" gorm:"not null;uniqueIndex:idx_time_slots_window,priority:4"`
	IsAvailable bool      `json:"is_available" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Doctor *User `json:"-" gorm:"foreignKey:DoctorID;constraint:OnDelete:CASCADE"`
}

// Overlaps reports whether [start, end) intersects the slot's window.
func (t *TimeSlot) Overlaps(start, end Clock) bool {
	return !(t.EndTime <= start || t.StartTime >= end)
}

// StartsAt returns the slot start as an instant in loc.
func (t *TimeSlot) StartsAt(loc *time.Location) time.Time {
	return At(t.Date, t.StartTime, loc)
}

// OwnerReference returns the doctor owning the slot.
func (t *TimeSlot) OwnerReference() uint {
	return t.DoctorID
}
