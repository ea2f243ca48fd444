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

// TimeSlotHandler handles doctor availability endpoints.
type TimeSlotHandler struct {
	svc service.TimeSlotService
}

// NewTimeSlotHandler creates a new time slot handler.
func NewTimeSlotHandler(svc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{svc: svc}
}

// CreateTimeSlotRequest describes a new slot. Doctor is only read for admins.
type CreateTimeSlotRequest struct {
	Doctor    uint   `json:"doctor"`
	Date      string `json:"date" validate:"required" example:"2099-01-01"`
	StartTime string `json:"start_time" validate:"required" example:"09:00"`
	EndTime   string `json:"end_time" validate:"required" example:"10:00"`
}

// UpdateTimeSlotRequest reschedules a slot; omitted fields are unchanged.
type UpdateTimeSlotRequest struct {
	Date      *string `json:"date" example:"2099-01-01"`
	StartTime *string `json:"start_time" example:"09:00"`
	EndTime   *string `json:"end_time" example:"10:00"`
}

// TimeSlotListQuery filters slot listings.
type TimeSlotListQuery struct {
	ListQuery
	Doctor      uint   `query:"doctor"`
	Date        string `query:"date"`
	IsAvailable string `query:"is_available"`
}

func (q TimeSlotListQuery) filter() (repository.TimeSlotFilter, error) {
	filter := repository.TimeSlotFilter{
		IsAvailable: parseBool(q.IsAvailable),
		Search:      q.Search,
		Ordering:    q.Ordering,
		Page:        q.page(),
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
// @Summary Publish a time slot
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTimeSlotRequest true "Slot window"
// @Success 201 {object} TimeSlotResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /timeslots [post]
func (h *TimeSlotHandler) Create(c echo.Context) error {
	var req CreateTimeSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return invalidInput(err)
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return invalidInput(err)
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return invalidInput(err)
	}

	slot, err := h.svc.Create(c.Request().Context(), middleware.Actor(c), service.CreateTimeSlotInput{
		DoctorID:  req.Doctor,
		Date:      date,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, newTimeSlotResponse(slot))
}

// Update godoc
// @Summary Reschedule a time slot
// @Tags timeslots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Time slot ID"
// @Param request body UpdateTimeSlotRequest true "Fields to change"
// @Success 200 {object} TimeSlotResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /timeslots/{id} [patch]
func (h *TimeSlotHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTimeSlotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var input service.UpdateTimeSlotInput
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			return invalidInput(err)
		}
		input.Date = &date
	}
	if req.StartTime != nil {
		start, err := model.ParseClock(*req.StartTime)
		if err != nil {
			return invalidInput(err)
		}
		input.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := model.ParseClock(*req.EndTime)
		if err != nil {
			return invalidInput(err)
		}
		input.EndTime = &end
	}

	slot, err := h.svc.Update(c.Request().Context(), middleware.Actor(c), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTimeSlotResponse(slot))
}

// Delete godoc
// @Summary Delete a time slot
// @Tags timeslots
// @Security BearerAuth
// @Param id path int true "Time slot ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /timeslots/{id} [delete]
func (h *TimeSlotHandler) Delete(c echo.Context) error {
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
// @Summary Get a time slot
// @Tags timeslots
// @Produce json
// @Security BearerAuth
// @Param id path int true "Time slot ID"
// @Success 200 {object} TimeSlotResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /timeslots/{id} [get]
func (h *TimeSlotHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	slot, err := h.svc.Get(c.Request().Context(), middleware.Actor(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newTimeSlotResponse(slot))
}

// List godoc
// @Summary List time slots
// @Description Admins see every slot, doctors their own. Patients are refused.
// @Tags timeslots
// @Produce json
// @Security BearerAuth
// @Param doctor query int false "Doctor ID (admins)"
// @Param date query string false "YYYY-MM-DD"
// @Param is_available query string false "true/1 or false/0"
// @Param search query string false "Doctor name or date"
// @Param ordering query string false "date, start_time; prefix - for descending"
// @Param page query int false "Page number; enables the paginated envelope"
// @Param page_size query int false "Page size"
// @Success 200 {array} TimeSlotResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /timeslots [get]
func (h *TimeSlotHandler) List(c echo.Context) error {
	var q TimeSlotListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	filter, err := q.filter()
	if err != nil {
		return err
	}
	slots, total, err := h.svc.List(c.Request().Context(), middleware.Actor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q.ListQuery, newTimeSlotResponses(slots), total)
}

// Mine godoc
// @Summary List the caller's own time slots
// @Tags timeslots
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD"
// @Param is_available query string false "true/1 or false/0"
// @Param page query int false "Page number; enables the paginated envelope"
// @Success 200 {array} TimeSlotResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /timeslots/mine [get]
func (h *TimeSlotHandler) Mine(c echo.Context) error {
	var q TimeSlotListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	filter, err := q.filter()
	if err != nil {
		return err
	}
	slots, total, err := h.svc.ListMine(c.Request().Context(), middleware.Actor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q.ListQuery, newTimeSlotResponses(slots), total)
}

// ListForDoctor godoc
// @Summary List a doctor's available time slots
// @Tags doctors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Doctor user ID"
// @Param date query string false "YYYY-MM-DD"
// @Param page query int false "Page number; enables the paginated envelope"
// @Success 200 {array} TimeSlotResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /doctors/{id}/timeslots [get]
func (h *TimeSlotHandler) ListForDoctor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var q TimeSlotListQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}
	filter, err := q.filter()
	if err != nil {
		return err
	}
	slots, total, err := h.svc.ListAvailableForDoctor(c.Request().Context(), id, filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondList(c, q.ListQuery, newTimeSlotResponses(slots), total)
}

func invalidInput(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}
