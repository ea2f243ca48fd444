// Package access holds the role predicates and ownership gates applied around
// time slot and appointment operations.
package access

import "clinic/internal/model"

// IsAdmin reports whether the role, or the superuser flag, grants admin rights.
func IsAdmin(role model.Role, superuser bool) bool {
	return role == model.RoleAdmin || superuser
}

// IsDoctor reports whether the role is doctor.
func IsDoctor(role model.Role) bool {
	return role == model.RoleDoctor
}

// IsPatient reports whether the role is patient.
func IsPatient(role model.Role) bool {
	return role == model.RolePatient
}

// Admin reports whether actor is an admin.
func Admin(actor *model.User) bool {
	return actor != nil && IsAdmin(actor.Role, actor.IsSuperuser)
}

// Doctor reports whether actor is a doctor.
func Doctor(actor *model.User) bool {
	return actor != nil && IsDoctor(actor.Role)
}

// Patient reports whether actor is a patient.
func Patient(actor *model.User) bool {
	return actor != nil && IsPatient(actor.Role)
}

// Owned is implemented by every entity that has a single owning user.
type Owned interface {
	OwnerReference() uint
}

// Shared is implemented by entities that more than one user may act on.
type Shared interface {
	Participants() []uint
}

// CanAccess grants admins, the owner, and for shared objects any participant.
func CanAccess(actor *model.User, obj Owned) bool {
	if actor == nil || obj == nil {
		return false
	}
	if Admin(actor) {
		return true
	}
	if obj.OwnerReference() == actor.ID {
		return true
	}
	if shared, ok := obj.(Shared); ok {
		for _, id := range shared.Participants() {
			if id == actor.ID {
				return true
			}
		}
	}
	return false
}

// CanManageTimeSlots gates time slot creation, update and deletion.
func CanManageTimeSlots(actor *model.User) bool {
	return Admin(actor) || Doctor(actor)
}

// CanCreateAppointment gates appointment creation.
func CanCreateAppointment(actor *model.User) bool {
	return Patient(actor)
}

// CanUpdateAppointment applies the admin-or-participant rule, except that patients
// may never update an appointment.
func CanUpdateAppointment(actor *model.User, appt *model.Appointment) bool {
	if Patient(actor) {
		return false
	}
	return CanAccess(actor, appt)
}

// CanDeleteAppointment applies the admin-or-participant rule.
func CanDeleteAppointment(actor *model.User, appt *model.Appointment) bool {
	return CanAccess(actor, appt)
}
