package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"clinic/docs" // swagger docs
	"clinic/internal/auth"
	"clinic/internal/cache"
	"clinic/internal/config"
	"clinic/internal/db"
	"clinic/internal/handler"
	"clinic/internal/middleware"
	"clinic/internal/repository"
	"clinic/internal/router"
	"clinic/internal/service"
)

// @title Clinic Scheduling API
// @version 1.0
// @description Doctor availability and patient appointment booking with JWT authentication.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Fatalf("reset database: %v", err)
		}
		log.Println("Tables dropped")
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("%v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable at %s, continuing without cache: %v", cfg.RedisAddr, err)
	}
	cancel()

	// Initialize repositories
	repos := repository.NewRepositories(gormDB)
	uow := repository.NewUnitOfWork(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(repos.Users, uow, cacheClient)
	authService := service.NewAuthService(repos.Users, userService, jwtService, tokenStore)
	timeSlotService := service.NewTimeSlotService(repos, uow, userService)
	appointmentService := service.NewAppointmentService(repos, uow, cfg.Location())

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Users:        handler.NewUserHandler(userService),
		TimeSlots:    handler.NewTimeSlotHandler(timeSlotService),
		Appointments: handler.NewAppointmentHandler(appointmentService),
	}, router.Security{
		JWT:        jwtService,
		Tokens:     tokenStore,
		Actors:     userService,
		AuthLimits: middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if err := e.StartServer(srv); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// swaggerURL builds the docs URL; host may already include a scheme.
func swaggerURL(host string) string {
	switch {
	case host == "":
		// docker-compose maps the container's 8080 to 5000
		return "http://localhost:5000/api-docs"
	case strings.HasPrefix(host, "http://"), strings.HasPrefix(host, "https://"):
		return host + "/api-docs"
	default:
		return "http://" + host + "/api-docs"
	}
}
