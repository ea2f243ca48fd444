package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"clinic/internal/cache"
	apperrors "clinic/internal/errors"
	"clinic/internal/model"
	"clinic/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// CreateUserInput carries the fields accepted when creating a user.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Role        model.Role
	IsSuperuser bool
}

// UpdateUserInput carries the fields an admin may change. Nil fields are left untouched.
type UpdateUserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
}

// UserService exposes domain operations.
type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	// Actor returns the user without profiles, served from the cache when possible.
	Actor(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error)
	UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*model.User, error)
	ListDoctors(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error)
	GetDoctor(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	uow   repository.UnitOfWork
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, uow repository.UnitOfWork, cache *cache.Client) UserService {
	return &userService{repo: repo, uow: uow, cache: cache}
}

// cachedUser mirrors model.User with the fields its JSON form hides.
type cachedUser struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        model.Role `json:"role"`
	IsSuperuser bool       `json:"is_superuser"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// CreateUser hashes the password and stores the user with the profile matching its role.
func (s *userService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.ErrInvalidRole
	}
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         input.Role,
		IsSuperuser:  input.IsSuperuser,
		IsActive:     true,
	}

	err = s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := ensureUnique(ctx, tx.Users, user.Username, user.Email, 0); err != nil {
			return err
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			if isDuplicate(err) {
				return apperrors.ErrUserAlreadyExists
			}
			return fmt.Errorf("create user: %w", err)
		}

		switch user.Role {
		case model.RoleDoctor:
			profile := &model.DoctorProfile{
				UserID:         user.ID,
				Specialization: model.DefaultSpecialization,
				Gender:         model.GenderMale,
			}
			if err := tx.Users.CreateDoctorProfile(ctx, profile); err != nil {
				return fmt.Errorf("create doctor profile: %w", err)
			}
			user.DoctorProfile = profile
		case model.RolePatient:
			profile := &model.PatientProfile{UserID: user.ID, Gender: model.GenderMale}
			if err := tx.Users.CreatePatientProfile(ctx, profile); err != nil {
				return fmt.Errorf("create patient profile: %w", err)
			}
			user.PatientProfile = profile
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) Actor(ctx context.Context, id uint) (*model.User, error) {
	var cached cachedUser
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) && cached.ID == id {
		return cached.user(), nil
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), newCachedUser(user), userCacheTTL)
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*model.User, error) {
	var user *model.User
	err := s.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		found, err := tx.Users.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return apperrors.ErrUserNotFound
			}
			return fmt.Errorf("find user: %w", err)
		}
		user = found

		username, email := user.Username, user.Email
		if input.Username != nil {
			username = strings.TrimSpace(*input.Username)
		}
		if input.Email != nil {
			email = strings.ToLower(strings.TrimSpace(*input.Email))
		}
		if err := ensureUnique(ctx, tx.Users, username, email, user.ID); err != nil {
			return err
		}

		user.Username = username
		user.Email = email
		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}

		if err := tx.Users.Update(ctx, user); err != nil {
			if isDuplicate(err) {
				return apperrors.ErrUserAlreadyExists
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// ListDoctors lists active users with the doctor role.
func (s *userService) ListDoctors(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	active := true
	filter.Role = model.RoleDoctor
	filter.Active = &active
	return s.ListUsers(ctx, filter)
}

func (s *userService) GetDoctor(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrDoctorNotFound
		}
		return nil, err
	}
	if !user.IsActive || user.Role != model.RoleDoctor {
		return nil, apperrors.ErrDoctorNotFound
	}
	return user, nil
}

// ensureUnique rejects a username or email already held by a user other than selfID.
func ensureUnique(ctx context.Context, users repository.UserRepository, username, email string, selfID uint) error {
	if existing, err := users.FindByUsername(ctx, username); err == nil && existing.ID != selfID {
		return apperrors.ErrUserAlreadyExists
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check username: %w", err)
	}
	if existing, err := users.FindByEmail(ctx, email); err == nil && existing.ID != selfID {
		return apperrors.ErrUserAlreadyExists
	} else if err != nil && !isNotFound(err) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func newCachedUser(u *model.User) cachedUser {
	return cachedUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c cachedUser) user() *model.User {
	return &model.User{
		ID:          c.ID,
		Username:    c.Username,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Role:        c.Role,
		IsSuperuser: c.IsSuperuser,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
