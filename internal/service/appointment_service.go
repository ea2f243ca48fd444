package service

import (
	"context"
	"fmt"
	"time"

	"clinic/internal/access"
	apperrors "clinic/internal/errors"
	"clinic/internal/model"
	"clinic/internal/repository"
)

// CreateAppointmentInput names the doctor and, optionally, the slot to book.
type CreateAppointmentInput struct {
	DoctorID   uint
	TimeSlotID *uint
}

// AppointmentService runs the booking commands. Every command keeps the slot's
// availability flag in step with the appointment status inside one transaction.
type AppointmentService interface {
	Create(ctx context.Context, actor *model.User, input CreateAppointmentInput) (*model.Appointment, error)
	SetStatus(ctx context.Context, actor *model.User, id uint, status model.AppointmentStatus) (*model.Appointment, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
	Get(ctx context.Context, actor *model.User, id uint) (*model.Appointment, error)
	List(ctx context.Context, actor *model.User, filter repository.AppointmentFilter) ([]model.Appointment, int64, error)
	History(ctx context.Context, actor *model.User, id uint) ([]model.AppointmentLog, error)
}

type appointmentService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	loc   *time.Location
	now   func() time.Time
}

// NewAppointmentService creates a new appointment service. Slot start times are
// interpreted in loc.
func NewAppointmentService(repos repository.Repositories, uow repository.UnitOfWork, loc *time.Location) AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &appointmentService{repos: repos, uow: uow, loc: loc, now: time.Now}
}

// Create books an appointment for the acting patient. When a slot is given it must be
// available, belong to the doctor and not have started yet.
func (s *appointmentService) Create(ctx context.Context, actor *model.User, input CreateAppointmentInput) (*model.Appointment, error) {
	if !access.CanCreateAppointment(actor) {
		return nil, apperrors.ErrForbidden
	}
	if input.DoctorID == actor.ID {
		return nil, apperrors.ErrSelfBooking
	}

	var appt *model.Appointment
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := requireDoctor(ctx, tx.Users, input.DoctorID); err != nil {
			return err
		}

		if input.TimeSlotID == nil {
			appt = &model.Appointment{
				DoctorID:  input.DoctorID,
				PatientID: actor.ID,
				Status:    model.AppointmentStatusPending,
			}
			if err := tx.Appointments.Create(ctx, appt); err != nil {
				return fmt.Errorf("create appointment: %w", err)
			}
			return s.logTransition(ctx, tx, appt, actor, "")
		}

		slot, err := tx.TimeSlots.FindByIDForUpdate(ctx, *input.TimeSlotID)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrTimeSlotNotFound
			}
			return fmt.Errorf("find time slot: %w", err)
		}
		if slot.DoctorID != input.DoctorID {
			return apperrors.ErrSlotDoctorMismatch
		}
		if err := CheckNotPast(slot, s.now(), s.loc); err != nil {
			return err
		}
		if !slot.IsAvailable {
			return apperrors.ErrSlotUnavailable
		}

		var from model.AppointmentStatus
		previous, err := tx.Appointments.FindByPatientAndSlot(ctx, actor.ID, slot.ID)
		switch {
		case err == nil && previous.Status.Active():
			return apperrors.ErrDuplicateBooking
		case err == nil:
			// (patient, slot) is unique, so a cancelled booking is revived.
			appt = previous
			from = previous.Status
			appt.Status = model.AppointmentStatusPending
			appt.Schedule(slot)
			if err := tx.Appointments.Update(ctx, appt); err != nil {
				return fmt.Errorf("reactivate appointment: %w", err)
			}
		case isNotFound(err):
			appt = &model.Appointment{
				DoctorID:  input.DoctorID,
				PatientID: actor.ID,
				Status:    model.AppointmentStatusPending,
			}
			appt.Schedule(slot)
			if err := tx.Appointments.Create(ctx, appt); err != nil {
				if isDuplicate(err) {
					return apperrors.ErrDuplicateBooking
				}
				return fmt.Errorf("create appointment: %w", err)
			}
		default:
			return fmt.Errorf("find previous booking: %w", err)
		}

		if err := tx.TimeSlots.SetAvailability(ctx, slot.ID, false); err != nil {
			return fmt.Errorf("reserve time slot: %w", err)
		}
		return s.logTransition(ctx, tx, appt, actor, from)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, appt.ID)
}

// SetStatus moves an appointment through its lifecycle and re-synchronizes the slot.
func (s *appointmentService) SetStatus(ctx context.Context, actor *model.User, id uint, status model.AppointmentStatus) (*model.Appointment, error) {
	if access.Patient(actor) {
		return nil, apperrors.ErrPatientCannotModify
	}
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	err := s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		appt, err := tx.Appointments.FindByIDForUpdate(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrAppointmentNotFound
			}
			return fmt.Errorf("find appointment: %w", err)
		}
		if !access.CanUpdateAppointment(actor, appt) {
			return apperrors.ErrForbidden
		}
		if err := CheckTransition(appt.Status, status); err != nil {
			return err
		}
		from := appt.Status
		if from == status {
			// A cancelled appointment's slot may already belong to someone else.
			return nil
		}

		if appt.TimeSlotID != nil {
			if _, err := tx.TimeSlots.FindByIDForUpdate(ctx, *appt.TimeSlotID); err != nil {
				return fmt.Errorf("lock time slot: %w", err)
			}
			if err := tx.TimeSlots.SetAvailability(ctx, *appt.TimeSlotID, SlotAvailableFor(status)); err != nil {
				return fmt.Errorf("sync time slot: %w", err)
			}
		}

		appt.Status = status
		if err := tx.Appointments.Update(ctx, appt); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return s.logTransition(ctx, tx, appt, actor, from)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

// Delete removes an appointment, releasing its slot when the appointment still held it.
func (s *appointmentService) Delete(ctx context.Context, actor *model.User, id uint) error {
	return s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		appt, err := tx.Appointments.FindByIDForUpdate(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrAppointmentNotFound
			}
			return fmt.Errorf("find appointment: %w", err)
		}
		if !access.CanDeleteAppointment(actor, appt) {
			return apperrors.ErrForbidden
		}

		if appt.TimeSlotID != nil && appt.Status.Active() {
			if err := tx.TimeSlots.SetAvailability(ctx, *appt.TimeSlotID, true); err != nil {
				return fmt.Errorf("release time slot: %w", err)
			}
		}
		if err := tx.Appointments.Delete(ctx, appt.ID); err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		return nil
	})
}

func (s *appointmentService) Get(ctx context.Context, actor *model.User, id uint) (*model.Appointment, error) {
	appt, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(actor, appt) {
		return nil, apperrors.ErrForbidden
	}
	return appt, nil
}

// List scopes the listing to the actor: admins see everything, doctors and patients
// see the appointments they take part in.
func (s *appointmentService) List(ctx context.Context, actor *model.User, filter repository.AppointmentFilter) ([]model.Appointment, int64, error) {
	filter.ScopeDoctorID, filter.ScopePatientID = nil, nil
	switch {
	case access.Admin(actor):
	case access.Doctor(actor):
		filter.ScopeDoctorID = &actor.ID
	case access.Patient(actor):
		filter.ScopePatientID = &actor.ID
	default:
		return nil, 0, apperrors.ErrForbidden
	}

	appts, total, err := s.repos.Appointments.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	return appts, total, nil
}

// History returns the status transitions of an appointment, oldest first.
func (s *appointmentService) History(ctx context.Context, actor *model.User, id uint) ([]model.AppointmentLog, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	logs, err := s.repos.AppointmentLogs.ListByAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list appointment history: %w", err)
	}
	return logs, nil
}

func (s *appointmentService) logTransition(ctx context.Context, tx repository.Repositories, appt *model.Appointment, actor *model.User, from model.AppointmentStatus) error {
	entry := &model.AppointmentLog{
		AppointmentID: appt.ID,
		ActorID:       actor.ID,
		FromStatus:    from,
		ToStatus:      appt.Status,
	}
	if err := tx.AppointmentLogs.Create(ctx, entry); err != nil {
		return fmt.Errorf("log appointment transition: %w", err)
	}
	return nil
}

func (s *appointmentService) reload(ctx context.Context, id uint) (*model.Appointment, error) {
	appt, err := s.repos.Appointments.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return appt, nil
}
