package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic/internal/errors"
	"clinic/internal/middleware"
	"clinic/internal/model"
	"clinic/internal/repository"
	"clinic/internal/service"
)

// AppointmentHandler handles booking endpoints.
type AppointmentHandler struct {
	svc service.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(svc service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// CreateAppointmentRequest books a doctor, optionally at a specific slot.
type CreateAppointmentRequest struct {
	Doctor   uint  `json:"doctor" validate:"required" example:"2"`
	TimeSlot *uint `json:"timeslot" example:"10"`
}

// UpdateAppointmentRequest changes the appointment status.
type UpdateAppointmentRequest struct {
	Status model.AppointmentStatus `json:"status" validate:"required" example:"confirmed"`
}

// AppointmentListQuery filters appointment listings.
type AppointmentListQuery struct {
	ListQuery
	Doctor uint   `query:"doctor"`
	Date   string `query:"date"`
	Status string `query:"status"`
}

func (q AppointmentListQuery) filter() (repository.AppointmentFilter, error) {
	filter := repository.AppointmentFilter{
		Status:   model.AppointmentStatus(q.Status),
		Search:   q.Search,
		Ordering: q.Ordering,
		Page:     q.page(),
	}
	if q.Status != "" && !filter.Status.Valid() {
		return filter, invalidInput(errors.ErrInvalidStatus)
	}
	if q.Doctor != 0 {
		doctor := q.Doctor
		filter.DoctorID = &doctor
	}
	if q.Date != "" {
		date, err := model.ParseDate(q.Date)
		if err != nil {
			return filter, invalidInput(err)
		}
		filter.Date = &date
	}
	return filter, nil
}

// Create godoc
// @Summary Book an appointment
// @Description Patients only. When a time slot is given it must belong to the doctor, be available and lie in the future.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAppointmentRequest true "Doctor and slot"
// @Success 201 {object} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req CreateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	appt, err := h.svc.Create(c.Request().Context(), middleware.Actor(c), service.CreateAppointmentInput{
		DoctorID:   req.Doctor,
		TimeSlotID: req.TimeSlot,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newAppointmentResponse(appt))
}

// Update godoc
// @Summary Change an appointment's status
// @Description Doctors confirm or cancel their appointments; admins may change any. Cancelled is terminal.
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Param request body UpdateAppointmentRequest true "New status"
// @Success 200 {object} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [patch]
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateAppointmentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	appt, err := h.svc.SetStatus(c.Request().Context(), middleware.Actor(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newAppointmentResponse(appt))
}

// Delete godoc
// @Summary Delete an appointment
// @Tags appointments
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.Actor(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get godoc
// @Summary Get an appointment
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {object} AppointmentResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	appt, err := h.svc.Get(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newAppointmentResponse(appt))
}

// List godoc
// @Summary List appointments
// @Description Admins see every appointment, doctors and patients only their own.
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param doctor query int false "Doctor ID"
// @Param date query string false "YYYY-MM-DD"
// @Param status query string false "pending, confirmed or cancelled"
// @Param search query string false "Doctor or patient name"
// @Param ordering query string false "created_at, date; prefix - for descending"
// @Param page query int false "Page number; enables the paginated envelope"
// @Param page_size query int false "Page size"
// @Success 200 {array} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /appointments [get]
// @Router /appointments/me [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	var q AppointmentListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	filter, err := q.filter()
	if err != nil {
		return err
	}
	appts, total, err := h.svc.List(c.Request().Context(), middleware.Actor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q.ListQuery, newAppointmentResponses(appts), total)
}

// History godoc
// @Summary List an appointment's status transitions
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appointment ID"
// @Success 200 {array} model.AppointmentLog
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id}/history [get]
func (h *AppointmentHandler) History(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	logs, err := h.svc.History(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
