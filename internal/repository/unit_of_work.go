package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles the repositories that share one database handle.
type Repositories struct {
	Users           UserRepository
	TimeSlots       TimeSlotRepository
	Appointments    AppointmentRepository
	AppointmentLogs AppointmentLogRepository
}

// UnitOfWork runs a function against repositories bound to a single transaction.
type UnitOfWork interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

// NewRepositories builds every repository over db.
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:           NewUserRepository(db),
		TimeSlots:       NewTimeSlotRepository(db),
		Appointments:    NewAppointmentRepository(db),
		AppointmentLogs: NewAppointmentLogRepository(db),
	}
}

// NewUnitOfWork creates a transaction runner over db.
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

// WithTransaction executes fn within a database transaction. Returning an error rolls back.
func (u *unitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepositories(tx))
	})
}
