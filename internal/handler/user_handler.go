package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic/internal/middleware"
	"clinic/internal/model"
	"clinic/internal/repository"
	"clinic/internal/service"
)

// UserHandler bundles the user and doctor directory endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest is the admin payload for creating any kind of user.
type CreateUserRequest struct {
	Username    string     `json:"username" validate:"required,max=150"`
	Email       string     `json:"email" validate:"required,email"`
	Password    string     `json:"password" validate:"required,min=8"`
	FirstName   string     `json:"first_name" validate:"max=150"`
	LastName    string     `json:"last_name" validate:"max=150"`
	Role        model.Role `json:"role" validate:"required,oneof=admin doctor patient"`
	IsSuperuser bool       `json:"is_superuser"`
}

// UpdateUserRequest is a partial update; omitted fields are unchanged.
type UpdateUserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	IsActive  *bool   `json:"is_active"`
}

// UserListQuery filters the user listing.
type UserListQuery struct {
	ListQuery
	Role     model.Role `query:"role"`
	IsActive string     `query:"is_active"`
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User payload"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.svc.CreateUser(c.Request().Context(), service.CreateUserInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        req.Role,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newUserResponse(created))
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), id, service.UpdateUserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  req.IsActive,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param role query string false "admin, doctor or patient"
// @Param is_active query string false "true/1 or false/0"
// @Param search query string false "Username, email, name, role or specialization"
// @Param ordering query string false "created_at, username, first_name, last_name; prefix - for descending"
// @Param page query int false "Page number; enables the paginated envelope"
// @Param page_size query int false "Page size"
// @Success 200 {array} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	var q UserListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	users, total, err := h.svc.ListUsers(c.Request().Context(), repository.UserFilter{
		Role:     q.Role,
		Active:   parseBool(q.IsActive),
		Search:   q.Search,
		Ordering: q.Ordering,
		Page:     q.page(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q.ListQuery, newUserResponses(users), total)
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
// @Router /auth/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.svc.GetUser(c.Request().Context(), middleware.Actor(c).ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// ListDoctors godoc
// @Summary List active doctors
// @Tags doctors
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name or specialization"
// @Param ordering query string false "first_name, last_name; prefix - for descending"
// @Param page query int false "Page number; enables the paginated envelope"
// @Param page_size query int false "Page size"
// @Success 200 {array} UserResponse
// @Router /doctors [get]
func (h *UserHandler) ListDoctors(c echo.Context) error {
	var q ListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), repository.UserFilter{
		Search:   q.Search,
		Ordering: q.Ordering,
		Page:     q.page(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q, newUserResponses(doctors), total)
}

// GetDoctor godoc
// @Summary Get doctor by id
// @Tags doctors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor user ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /doctors/{id} [get]
func (h *UserHandler) GetDoctor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	doctor, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newUserResponse(doctor))
}
