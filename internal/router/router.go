package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"clinic/internal/auth"
	"clinic/internal/handler"
	"clinic/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	TimeSlots    *handler.TimeSlotHandler
	Appointments *handler.AppointmentHandler
}

// Security carries what the secured group needs to authenticate a request.
type Security struct {
	JWT        *auth.JWTService
	Tokens     auth.TokenStoreInterface
	Actors     middleware.ActorLoader
	AuthLimits *middleware.RateLimiter
}

// Register wires routes and middleware.
func Register(e *echo.Echo, h Handlers, sec Security) {
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/api-docs", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register, sec.AuthLimits.Middleware)
	api.POST("/auth/login", h.Auth.Login, sec.AuthLimits.Middleware)
	api.POST("/auth/token/refresh", h.Auth.Refresh)

	// Secured routes (require a valid access token and an active user)
	secured := api.Group("", middleware.JWT(sec.JWT), middleware.LoadActor(sec.Actors, sec.Tokens))

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Users.Me)

	// Users; /users/me must be registered before /users/:id
	secured.GET("/users/me", h.Users.Me)
	secured.GET("/users", h.Users.ListUsers, middleware.RequireAdmin)
	secured.POST("/users", h.Users.CreateUser, middleware.RequireAdmin)
	secured.GET("/users/:id", h.Users.GetUser, middleware.RequireAdmin)
	secured.PATCH("/users/:id", h.Users.UpdateUser, middleware.RequireAdmin)

	// Doctors directory
	secured.GET("/doctors", h.Users.ListDoctors)
	secured.GET("/doctors/:id", h.Users.GetDoctor)
	secured.GET("/doctors/:id/timeslots", h.TimeSlots.ListForDoctor)

	// Time slots
	secured.GET("/timeslots", h.TimeSlots.List)
	secured.POST("/timeslots", h.TimeSlots.Create)
	secured.GET("/timeslots/mine", h.TimeSlots.Mine)
	secured.GET("/timeslots/:id", h.TimeSlots.Get)
	secured.PATCH("/timeslots/:id", h.TimeSlots.Update)
	secured.DELETE("/timeslots/:id", h.TimeSlots.Delete)

	// Appointments
	secured.GET("/appointments", h.Appointments.List)
	secured.POST("/appointments", h.Appointments.Create)
	secured.GET("/appointments/me", h.Appointments.List)
	secured.GET("/appointments/:id", h.Appointments.Get)
	secured.PATCH("/appointments/:id", h.Appointments.Update)
	secured.DELETE("/appointments/:id", h.Appointments.Delete)
	secured.GET("/appointments/:id/history", h.Appointments.History)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
