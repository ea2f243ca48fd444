package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic/internal/model"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role     model.Role
	Active   *bool
	Search   string
	Ordering string
	Page     Page
}

var userOrdering = map[string]string{
	"created_at":  "users.created_at ASC",
	"-created_at": "users.created_at DESC",
	"username":    "users.username ASC",
	"-username":   "users.username DESC",
	"first_name":  "users.first_name ASC",
	"-first_name": "users.first_name DESC",
	"last_name":   "users.last_name ASC",
	"-last_name":  "users.last_name DESC",
}

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	// FindByIDForUpdate loads the user without profiles and holds its row lock until the
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	CreateDoctorProfile(ctx context.Context, profile *model.DoctorProfile) error
	CreatePatientProfile(ctx context.Context, profile *model.PatientProfile) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.withProfiles(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns a page of users and the total match count.
// Search covers username, email, names, role and doctor specialization.
func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if filter.Role != "" {
		q = q.Where("users.role = ?", filter.Role)
	}
	if filter.Active != nil {
		q = q.Where("users.is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Joins("LEFT JOIN doctor_profiles ON doctor_profiles.user_id = users.id").
			Where(r.db.
				Where("LOWER(users.username) LIKE ?", pattern).
				Or("LOWER(users.email) LIKE ?", pattern).
				Or("LOWER(users.first_name) LIKE ?", pattern).
				Or("LOWER(users.last_name) LIKE ?", pattern).
				Or("LOWER(users.role) LIKE ?", pattern).
				Or("LOWER(doctor_profiles.specialization) LIKE ?", pattern))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	q = orderBy(q, filter.Ordering, userOrdering, "users.created_at DESC")
	if err := filter.Page.apply(q).Preload("DoctorProfile").Preload("PatientProfile").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) CreateDoctorProfile(ctx context.Context, profile *model.DoctorProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepository) CreatePatientProfile(ctx context.Context, profile *model.PatientProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *userRepository) withProfiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("DoctorProfile").Preload("PatientProfile")
}
