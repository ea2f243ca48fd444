package service

import (
	"context"
	"fmt"

	"clinic/internal/access"
	apperrors "clinic/internal/errors"
	"clinic/internal/model"
	"clinic/internal/repository"
)

// CreateTimeSlotInput describes a new window. DoctorID is honored for admins only;
// doctors always create slots for themselves.
type CreateTimeSlotInput struct {
	DoctorID  uint
	Date      model.Date
	StartTime model.Clock
	EndTime   model.Clock
}

// UpdateTimeSlotInput reschedules a slot. Nil fields keep their current value.
type UpdateTimeSlotInput struct {
	Date      *model.Date
	StartTime *model.Clock
	EndTime   *model.Clock
}

// TimeSlotService handles doctor availability windows.
type TimeSlotService interface {
	Create(ctx context.Context, actor *model.User, input CreateTimeSlotInput) (*model.TimeSlot, error)
	Update(ctx context.Context, actor *model.User, id uint, input UpdateTimeSlotInput) (*model.TimeSlot, error)
	Delete(ctx context.Context, actor *model.User, id uint) error
	Get(ctx context.Context, actor *model.User, id uint) (*model.TimeSlot, error)
	// List returns every slot for admins and the actor's own slots for doctors.
	List(ctx context.Context, actor *model.User, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error)
	ListMine(ctx context.Context, actor *model.User, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error)
	// ListAvailableForDoctor is open to any authenticated user.
	ListAvailableForDoctor(ctx context.Context, doctorID uint, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error)
}

type timeSlotService struct {
	repos repository.Repositories
	uow   repository.UnitOfWork
	users UserService
}

// NewTimeSlotService creates a new time slot service.
func NewTimeSlotService(repos repository.Repositories, uow repository.UnitOfWork, users UserService) TimeSlotService {
	return &timeSlotService{repos: repos, uow: uow, users: users}
}

// Create validates the window against the doctor's other slots on the same date and
// stores it as available.
func (s *timeSlotService) Create(ctx context.Context, actor *model.User, input CreateTimeSlotInput) (*model.TimeSlot, error) {
	if !access.CanManageTimeSlots(actor) {
		return nil, apperrors.ErrForbidden
	}

	doctorID := actor.ID
	if access.Admin(actor) && input.DoctorID != 0 {
		doctorID = input.DoctorID
	} else if !access.Doctor(actor) {
		return nil, apperrors.NewValidationError("doctor is required")
	}

	if err := ValidateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	slot := &model.TimeSlot{
		DoctorID:    doctorID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		IsAvailable: true,
	}

	err := s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := requireDoctor(ctx, tx.Users, doctorID); err != nil {
			return err
		}

		existing, err := tx.TimeSlots.ListForDoctorOnDate(ctx, doctorID, input.Date, 0)
		if err != nil {
			return fmt.Errorf("load doctor slots: %w", err)
		}
		if FindOverlap(existing, input.StartTime, input.EndTime) != nil {
			return apperrors.ErrSlotOverlap
		}

		if err := tx.TimeSlots.Create(ctx, slot); err != nil {
			if isDuplicate(err) {
				return apperrors.ErrDuplicateTimeSlot
			}
			return fmt.Errorf("create time slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, slot.ID)
}

// Update reschedules a slot. A slot held by an active appointment keeps its schedule.
func (s *timeSlotService) Update(ctx context.Context, actor *model.User, id uint, input UpdateTimeSlotInput) (*model.TimeSlot, error) {
	if !access.CanManageTimeSlots(actor) {
		return nil, apperrors.ErrForbidden
	}

	err := s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := tx.TimeSlots.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrTimeSlotNotFound
			}
			return fmt.Errorf("find time slot: %w", err)
		}
		if !access.CanAccess(actor, current) {
			return apperrors.ErrForbidden
		}
		// Doctor first, then slots: the same order Create takes its locks in.
		if _, err := lockDoctor(ctx, tx.Users, current.DoctorID); err != nil {
			return err
		}
		slot, err := tx.TimeSlots.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock time slot: %w", err)
		}

		date, start, end := slot.Date, slot.StartTime, slot.EndTime
		if input.Date != nil {
			date = *input.Date
		}
		if input.StartTime != nil {
			start = *input.StartTime
		}
		if input.EndTime != nil {
			end = *input.EndTime
		}
		if err := ValidateWindow(start, end); err != nil {
			return err
		}
		if date.Equal(slot.Date.Time) && start == slot.StartTime && end == slot.EndTime {
			return nil
		}

		if _, err := tx.Appointments.FindActiveBySlot(ctx, slot.ID); err == nil {
			return apperrors.ErrTimeSlotInUse
		} else if !isNotFound(err) {
			return fmt.Errorf("check slot appointments: %w", err)
		}

		existing, err := tx.TimeSlots.ListForDoctorOnDate(ctx, slot.DoctorID, date, slot.ID)
		if err != nil {
			return fmt.Errorf("load doctor slots: %w", err)
		}
		if FindOverlap(existing, start, end) != nil {
			return apperrors.ErrSlotOverlap
		}

		slot.Date, slot.StartTime, slot.EndTime = date, start, end
		if err := tx.TimeSlots.Update(ctx, slot); err != nil {
			if isDuplicate(err) {
				return apperrors.ErrDuplicateTimeSlot
			}
			return fmt.Errorf("update time slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, id)
}

// Delete removes a slot nobody actively holds. Cancelled appointments bound to it keep
// their scheduled date and times but lose the reference.
func (s *timeSlotService) Delete(ctx context.Context, actor *model.User, id uint) error {
	if !access.CanManageTimeSlots(actor) {
		return apperrors.ErrForbidden
	}

	return s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		slot, err := tx.TimeSlots.FindByIDForUpdate(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrTimeSlotNotFound
			}
			return fmt.Errorf("find time slot: %w", err)
		}
		if !access.CanAccess(actor, slot) {
			return apperrors.ErrForbidden
		}

		if _, err := tx.Appointments.FindActiveBySlot(ctx, slot.ID); err == nil {
			return apperrors.ErrTimeSlotInUse
		} else if !isNotFound(err) {
			return fmt.Errorf("check slot appointments: %w", err)
		}

		if err := tx.Appointments.DetachTimeSlot(ctx, slot.ID); err != nil {
			return fmt.Errorf("detach appointments: %w", err)
		}
		if err := tx.TimeSlots.Delete(ctx, slot.ID); err != nil {
			return fmt.Errorf("delete time slot: %w", err)
		}
		return nil
	})
}

func (s *timeSlotService) Get(ctx context.Context, actor *model.User, id uint) (*model.TimeSlot, error) {
	if !access.CanManageTimeSlots(actor) {
		return nil, apperrors.ErrForbidden
	}
	slot, err := s.reload(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(actor, slot) {
		return nil, apperrors.ErrForbidden
	}
	return slot, nil
}

func (s *timeSlotService) List(ctx context.Context, actor *model.User, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error) {
	switch {
	case access.Admin(actor):
	case access.Doctor(actor):
		filter.DoctorID = &actor.ID
	default:
		return nil, 0, apperrors.ErrForbidden
	}
	return s.list(ctx, filter)
}

func (s *timeSlotService) ListMine(ctx context.Context, actor *model.User, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error) {
	if !access.CanManageTimeSlots(actor) {
		return nil, 0, apperrors.ErrForbidden
	}
	filter.DoctorID = &actor.ID
	return s.list(ctx, filter)
}

func (s *timeSlotService) ListAvailableForDoctor(ctx context.Context, doctorID uint, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error) {
	if _, err := s.users.GetDoctor(ctx, doctorID); err != nil {
		return nil, 0, err
	}
	available := true
	filter.DoctorID = &doctorID
	filter.IsAvailable = &available
	return s.list(ctx, filter)
}

func (s *timeSlotService) list(ctx context.Context, filter repository.TimeSlotFilter) ([]model.TimeSlot, int64, error) {
	slots, total, err := s.repos.TimeSlots.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list time slots: %w", err)
	}
	return slots, total, nil
}

func (s *timeSlotService) reload(ctx context.Context, id uint) (*model.TimeSlot, error) {
	slot, err := s.repos.TimeSlots.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrTimeSlotNotFound
		}
		return nil, fmt.Errorf("find time slot: %w", err)
	}
	return slot, nil
}

// lockDoctor takes the doctor's row lock. Slot writes for one doctor hold it while they
// check for overlaps, so two windows inserted concurrently on an empty day still conflict.
func lockDoctor(ctx context.Context, users repository.UserRepository, id uint) (*model.User, error) {
	doctor, err := users.FindByIDForUpdate(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, fmt.Errorf("lock doctor: %w", err)
	}
	return doctor, nil
}

// requireDoctor locks id and checks that it names an active user with the doctor role.
func requireDoctor(ctx context.Context, users repository.UserRepository, id uint) error {
	doctor, err := lockDoctor(ctx, users, id)
	if err != nil {
		return err
	}
	if !doctor.IsActive || doctor.Role != model.RoleDoctor {
		return apperrors.ErrDoctorNotFound
	}
	return nil
}
