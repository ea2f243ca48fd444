package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinic/internal/model"
)

func TestRolePredicates(t *testing.T) {
	assert.True(t, IsAdmin(model.RoleAdmin, false))
	assert.True(t, IsAdmin(model.RolePatient, true))
	assert.False(t, IsAdmin(model.RoleDoctor, false))
	assert.True(t, IsDoctor(model.RoleDoctor))
	assert.False(t, IsDoctor(model.RoleAdmin))
	assert.True(t, IsPatient(model.RolePatient))
	assert.False(t, IsPatient(model.RoleDoctor))
	assert.False(t, Admin(nil))
}

func TestCanAccess(t *testing.T) {
	admin := &model.User{ID: 1, Role: model.RoleAdmin}
	doctor := &model.User{ID: 2, Role: model.RoleDoctor}
	patient := &model.User{ID: 3, Role: model.RolePatient}
	stranger := &model.User{ID: 4, Role: model.RolePatient}
	otherDoctor := &model.User{ID: 5, Role: model.RoleDoctor}

	appt := &model.Appointment{ID: 10, DoctorID: doctor.ID, PatientID: patient.ID}
	slot := &model.TimeSlot{ID: 20, DoctorID: doctor.ID}

	tests := []struct {
		name  string
		actor *model.User
		obj   Owned
		want  bool
	}{
		{"admin on appointment", admin, appt, true},
		{"patient owner", patient, appt, true},
		{"doctor participant", doctor, appt, true},
		{"other patient", stranger, appt, false},
		{"other doctor", otherDoctor, appt, false},
		{"doctor owns slot", doctor, slot, true},
		{"other doctor on slot", otherDoctor, slot, false},
		{"user on self", stranger, stranger, true},
		{"nil actor", nil, appt, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.actor, tt.obj))
		})
	}
}

func TestAppointmentGates(t *testing.T) {
	doctor := &model.User{ID: 2, Role: model.RoleDoctor}
	patient := &model.User{ID: 3, Role: model.RolePatient}
	appt := &model.Appointment{ID: 10, DoctorID: doctor.ID, PatientID: patient.ID}

	assert.True(t, CanCreateAppointment(patient))
	assert.False(t, CanCreateAppointment(doctor))

	// patients own the appointment but may still never update it
	assert.False(t, CanUpdateAppointment(patient, appt))
	assert.True(t, CanUpdateAppointment(doctor, appt))

	assert.True(t, CanDeleteAppointment(patient, appt))
	assert.True(t, CanDeleteAppointment(doctor, appt))

	assert.True(t, CanManageTimeSlots(doctor))
	assert.False(t, CanManageTimeSlots(patient))
}
