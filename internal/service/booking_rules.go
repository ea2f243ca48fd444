package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "clinic/internal/errors"
	"clinic/internal/model"
)

// ValidateWindow rejects windows whose start is not strictly before their end.
func ValidateWindow(start, end model.Clock) error {
	if start >= end {
		return apperrors.ErrInvalidTimeRange
	}
	return nil
}

// FindOverlap returns the first slot in existing that intersects [start, end), or nil.
// Callers exclude the slot being updated from existing.
func FindOverlap(existing []model.TimeSlot, start, end model.Clock) *model.TimeSlot {
	for i := range existing {
		if existing[i].Overlaps(start, end) {
			return &existing[i]
		}
	}
	return nil
}

// CheckNotPast rejects slots whose start instant is strictly before now.
func CheckNotPast(slot *model.TimeSlot, now time.Time, loc *time.Location) error {
	if slot.StartsAt(loc).Before(now) {
		return apperrors.ErrPastTimeSlot
	}
	return nil
}

// CheckTransition validates a status change. Re-asserting the current status is allowed,
// cancelled is terminal and a confirmed appointment cannot go back to pending.
func CheckTransition(from, to model.AppointmentStatus) error {
	if !to.Valid() {
		return apperrors.ErrInvalidStatus
	}
	if from == to {
		return nil
	}
	switch from {
	case model.AppointmentStatusPending:
		return nil
	case model.AppointmentStatusConfirmed:
		if to == model.AppointmentStatusCancelled {
			return nil
		}
	}
	return apperrors.ErrInvalidTransition
}

// SlotAvailableFor returns the availability flag a slot must carry while bound to an
// appointment in status.
func SlotAvailableFor(status model.AppointmentStatus) bool {
	return !status.Active()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
