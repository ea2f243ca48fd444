package repository

import (
	"context"

	"gorm.io/gorm"

	"clinic/internal/model"
)

// AppointmentLogRepository defines appointment audit log persistence operations.
type AppointmentLogRepository interface {
	Create(ctx context.Context, log *model.AppointmentLog) error
	ListByAppointment(ctx context.Context, appointmentID uint) ([]model.AppointmentLog, error)
}

type appointmentLogRepository struct {
	db *gorm.DB
}

// NewAppointmentLogRepository creates a new appointment log repository.
func NewAppointmentLogRepository(db *gorm.DB) AppointmentLogRepository {
	return &appointmentLogRepository{db: db}
}

// Create appends a log entry.
func (r *appointmentLogRepository) Create(ctx context.Context, log *model.AppointmentLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByAppointment returns the entries of one appointment, oldest first.
func (r *appointmentLogRepository) ListByAppointment(ctx context.Context, appointmentID uint) ([]model.AppointmentLog, error) {
	var logs []model.AppointmentLog
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
