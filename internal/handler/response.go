package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"clinic/internal/errors"
	"clinic/internal/repository"
)

const maxPageSize = 100

// PaginatedResponse is returned by list endpoints when the page parameter is present.
type PaginatedResponse struct {
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

// ListQuery holds the filters shared by every list endpoint.
type ListQuery struct {
	Search   string `query:"search"`
	Ordering string `query:"ordering"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

func (q ListQuery) page() repository.Page {
	if q.Page < 1 {
		return repository.Page{}
	}
	size := q.PageSize
	if size < 1 {
		size = 20
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return repository.Page{Number: q.Page, Size: size}
}

// respondList writes a paginated envelope when a page was requested, a plain array otherwise.
func respondList(c echo.Context, q ListQuery, results interface{}, total int64) error {
	page := q.page()
	if page.Size == 0 {
		return c.JSON(http.StatusOK, results)
	}
	return c.JSON(http.StatusOK, PaginatedResponse{
		Count:    total,
		Page:     page.Number,
		PageSize: page.Size,
		Results:  results,
	})
}

// respondError maps a domain error to its HTTP form. Unmapped errors are logged.
func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return nil
}

func bindQuery(c echo.Context, dst interface{}) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_QUERY",
		})
	}
	return nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + name,
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}

// parseBool accepts true/1 and false/0. Any other value leaves the filter unset.
func parseBool(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v = true
	case "false", "0":
		v = false
	default:
		return nil
	}
	return &v
}
