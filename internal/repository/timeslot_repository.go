package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic/internal/model"
)

// TimeSlotFilter narrows time slot listings.
type TimeSlotFilter struct {
	DoctorID    *uint
	Date        *model.Date
	IsAvailable *bool
	Search      string
	Ordering    string
	Page        Page
}

var timeSlotOrdering = map[string]string{
	"date":        "time_slots.date ASC, time_slots.start_time ASC",
	"-date":       "time_slots.date DESC, time_slots.start_time DESC",
	"start_time":  "time_slots.start_time ASC, time_slots.date ASC",
	"-start_time": "time_slots.start_time DESC, time_slots.date DESC",
}

const defaultTimeSlotOrder = "time_slots.date ASC, time_slots.start_time ASC"

// TimeSlotRepository defines time slot persistence operations.
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	Update(ctx context.Context, slot *model.TimeSlot) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.TimeSlot, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.TimeSlot, error)
	// ListForDoctorOnDate returns, with row locks, every slot of the doctor on date except excludeID.
	ListForDoctorOnDate(ctx context.Context, doctorID uint, date model.Date, excludeID uint) ([]model.TimeSlot, error)
	List(ctx context.Context, filter TimeSlotFilter) ([]model.TimeSlot, int64, error)
	SetAvailability(ctx context.Context, id uint, available bool) error
}

type timeSlotRepository struct {
	db *gorm.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *gorm.DB) TimeSlotRepository {
	return &timeSlotRepository{db: db}
}

// Create creates a new time slot.
func (r *timeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(slot).Error
}

// Update writes every column of an existing time slot.
func (r *timeSlotRepository) Update(ctx context.Context, slot *model.TimeSlot) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(slot).Error
}

// Delete removes a time slot.
func (r *timeSlotRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.TimeSlot{}, id).Error
}

// FindByID finds a time slot by ID together with its doctor.
func (r *timeSlotRepository) FindByID(ctx context.Context, id uint) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := r.db.WithContext(ctx).Preload("Doctor").First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByIDForUpdate finds a time slot by ID with row-level lock for update.
func (r *timeSlotRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.TimeSlot, error) {
	var slot model.TimeSlot
	if err := forUpdate(r.db.WithContext(ctx)).First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *timeSlotRepository) ListForDoctorOnDate(ctx context.Context, doctorID uint, date model.Date, excludeID uint) ([]model.TimeSlot, error) {
	q := forUpdate(r.db.WithContext(ctx)).Where("doctor_id = ? AND date = ?", doctorID, date)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var slots []model.TimeSlot
	if err := q.Order("start_time ASC").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// List returns a page of slots and the total match count. Search matches doctor names
// or, when it parses as a date, the slot date.
func (r *timeSlotRepository) List(ctx context.Context, filter TimeSlotFilter) ([]model.TimeSlot, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.TimeSlot{})
	if filter.DoctorID != nil {
		q = q.Where("time_slots.doctor_id = ?", *filter.DoctorID)
	}
	if filter.Date != nil {
		q = q.Where("time_slots.date = ?", *filter.Date)
	}
	if filter.IsAvailable != nil {
		q = q.Where("time_slots.is_available = ?", *filter.IsAvailable)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		cond := r.db.
			Where("LOWER(users.first_name) LIKE ?", pattern).
			Or("LOWER(users.last_name) LIKE ?", pattern).
			Or("LOWER(users.username) LIKE ?", pattern)
		if date, err := model.ParseDate(filter.Search); err == nil {
			cond = cond.Or("time_slots.date = ?", date)
		}
		q = q.Joins("JOIN users ON users.id = time_slots.doctor_id").Where(cond)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var slots []model.TimeSlot
	q = orderBy(q, filter.Ordering, timeSlotOrdering, defaultTimeSlotOrder)
	if err := filter.Page.apply(q).Preload("Doctor").Find(&slots).Error; err != nil {
		return nil, 0, err
	}
	return slots, total, nil
}

// SetAvailability flips the availability flag.
func (r *timeSlotRepository) SetAvailability(ctx context.Context, id uint, available bool) error {
	return r.db.WithContext(ctx).Model(&model.TimeSlot{}).
		Where("id = ?", id).
		Update("is_available", available).Error
}
