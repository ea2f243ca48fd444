package handler

import (
	"time"

	"clinic/internal/model"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID             uint                  `json:"id"`
	Username       string                `json:"username"`
	Email          string                `json:"email"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Role           model.Role            `json:"role"`
	IsActive       bool                  `json:"is_active"`
	CreatedAt      time.Time             `json:"created_at"`
	DoctorProfile  *model.DoctorProfile  `json:"doctor_profile,omitempty"`
	PatientProfile *model.PatientProfile `json:"patient_profile,omitempty"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		DoctorProfile:  u.DoctorProfile,
		PatientProfile: u.PatientProfile,
	}
}

func newUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return out
}

// TimeSlotResponse is the public view of a time slot.
type TimeSlotResponse struct {
	ID          uint        `json:"id"`
	Doctor      uint        `json:"doctor"`
	DoctorName  string      `json:"doctor_name"`
	Date        model.Date  `json:"date" swaggertype:"string" example:"2099-01-01"`
	StartTime   model.Clock `json:"start_time" swaggertype:"string" example:"09:00:00"`
	EndTime     model.Clock `json:"end_time" swaggertype:"string" example:"10:00:00"`
	IsAvailable bool        `json:"is_available"`
	CreatedAt   time.Time   `json:"created_at"`
}

func newTimeSlotResponse(s *model.TimeSlot) TimeSlotResponse {
	resp := TimeSlotResponse{
		ID:          s.ID,
		Doctor:      s.DoctorID,
		Date:        s.Date,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsAvailable: s.IsAvailable,
		CreatedAt:   s.CreatedAt,
	}
	if s.Doctor != nil {
		resp.DoctorName = s.Doctor.FullName()
	}
	return resp
}

func newTimeSlotResponses(slots []model.TimeSlot) []TimeSlotResponse {
	out := make([]TimeSlotResponse, 0, len(slots))
	for i := range slots {
		out = append(out, newTimeSlotResponse(&slots[i]))
	}
	return out
}

// AppointmentResponse is the public view of an appointment. The timeslot date and time
// survive deletion of the slot itself.
type AppointmentResponse struct {
	ID           uint                    `json:"id"`
	Doctor       uint                    `json:"doctor"`
	DoctorName   string                  `json:"doctor_name"`
	Patient      uint                    `json:"patient"`
	PatientName  string                  `json:"patient_name"`
	TimeSlot     *uint                   `json:"timeslot"`
	TimeSlotDate *string                 `json:"timeslot_date"`
	TimeSlotTime *string                 `json:"timeslot_time"`
	Status       model.AppointmentStatus `json:"status"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func newAppointmentResponse(a *model.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:        a.ID,
		Doctor:    a.DoctorID,
		Patient:   a.PatientID,
		TimeSlot:  a.TimeSlotID,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Doctor != nil {
		resp.DoctorName = a.Doctor.FullName()
	}
	if a.Patient != nil {
		resp.PatientName = a.Patient.FullName()
	}
	if a.ScheduledDate != nil {
		date := a.ScheduledDate.String()
		resp.TimeSlotDate = &date
	}
	if a.ScheduledStart != nil && a.ScheduledEnd != nil {
		window := a.ScheduledStart.String() + " - " + a.ScheduledEnd.String()
		resp.TimeSlotTime = &window
	}
	return resp
}

func newAppointmentResponses(appts []model.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, newAppointmentResponse(&appts[i]))
	}
	return out
}
