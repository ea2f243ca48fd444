package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic/internal/model"
)

// AppointmentFilter narrows appointment listings. ScopeDoctorID and ScopePatientID
// restrict visibility; the remaining fields are client filters.
type AppointmentFilter struct {
	ScopeDoctorID  *uint
	ScopePatientID *uint
	DoctorID       *uint
	Date           *model.Date
	Status         model.AppointmentStatus
	Search         string
	Ordering       string
	Page           Page
}

var appointmentOrdering = map[string]string{
	"created_at":  "appointments.created_at ASC, appointments.id ASC",
	"-created_at": "appointments.created_at DESC, appointments.id DESC",
	"date":        "appointments.scheduled_date ASC, appointments.scheduled_start ASC",
	"-date":       "appointments.scheduled_date DESC, appointments.scheduled_start DESC",
}

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	Update(ctx context.Context, appt *model.Appointment) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Appointment, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Appointment, error)
	FindByPatientAndSlot(ctx context.Context, patientID, slotID uint) (*model.Appointment, error)
	// FindActiveBySlot returns the non-cancelled appointment holding the slot, if any.
	FindActiveBySlot(ctx context.Context, slotID uint) (*model.Appointment, error)
	// DetachTimeSlot clears the slot reference on every appointment bound to it.
	DetachTimeSlot(ctx context.Context, slotID uint) error
	List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error)
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(appt).Error
}

func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(appt).Error
}

func (r *appointmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Appointment{}, id).Error
}

// FindByID finds an appointment with its doctor, patient and slot.
func (r *appointmentRepository) FindByID(ctx context.Context, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := r.withRelations(ctx).First(&appt, id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindByIDForUpdate finds an appointment by ID with row-level lock for update.
func (r *appointmentRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := forUpdate(r.db.WithContext(ctx)).First(&appt, id).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindByPatientAndSlot(ctx context.Context, patientID, slotID uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("patient_id = ? AND timeslot_id = ?", patientID, slotID).
		First(&appt).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, slotID uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := r.db.WithContext(ctx).
		Where("timeslot_id = ? AND status <> ?", slotID, model.AppointmentStatusCancelled).
		First(&appt).Error; err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) DetachTimeSlot(ctx context.Context, slotID uint) error {
	return r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("timeslot_id = ?", slotID).
		Update("timeslot_id", nil).Error
}

// List returns a page of appointments and the total match count.
// Search matches doctor and patient names.
func (r *appointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]model.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{})
	if filter.ScopeDoctorID != nil {
		q = q.Where("appointments.doctor_id = ?", *filter.ScopeDoctorID)
	}
	if filter.ScopePatientID != nil {
		q = q.Where("appointments.patient_id = ?", *filter.ScopePatientID)
	}
	if filter.DoctorID != nil {
		q = q.Where("appointments.doctor_id = ?", *filter.DoctorID)
	}
	if filter.Date != nil {
		q = q.Where("appointments.scheduled_date = ?", *filter.Date)
	}
	if filter.Status != "" {
		q = q.Where("appointments.status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Joins("JOIN users doctors ON doctors.id = appointments.doctor_id").
			Joins("JOIN users patients ON patients.id = appointments.patient_id").
			Where(r.db.
				Where("LOWER(doctors.first_name) LIKE ?", pattern).
				Or("LOWER(doctors.last_name) LIKE ?", pattern).
				Or("LOWER(patients.first_name) LIKE ?", pattern).
				Or("LOWER(patients.last_name) LIKE ?", pattern))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var appts []model.Appointment
	q = orderBy(q, filter.Ordering, appointmentOrdering, "appointments.created_at DESC, appointments.id DESC")
	if err := filter.Page.apply(q).
		Preload("Doctor").Preload("Patient").Preload("TimeSlot").
		Find(&appts).Error; err != nil {
		return nil, 0, err
	}
	return appts, total, nil
}

func (r *appointmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Doctor").Preload("Patient").Preload("TimeSlot")
}
