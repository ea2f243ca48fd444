package main

import (
	"context"
	"log"

	"clinic/internal/config"
	"clinic/internal/db"
	"clinic/internal/model"
	"clinic/internal/repository"
	"clinic/internal/service"
)

// Creates the first admin account when none exists. Registration never creates admins.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()
	if cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	repos := repository.NewRepositories(gormDB)

	admins, err := repos.Users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to count admins: %v", err)
	}
	if admins > 0 {
		log.Printf("Found %d admin account(s), nothing to do", admins)
		return
	}

	users := service.NewUserService(repos.Users, repository.NewUnitOfWork(gormDB), nil)
	admin, err := users.CreateUser(ctx, service.CreateUserInput{
		Username:    cfg.SeedAdminUsername,
		Email:       cfg.SeedAdminEmail,
		Password:    cfg.SeedAdminPassword,
		FirstName:   "Clinic",
		LastName:    "Admin",
		Role:        model.RoleAdmin,
		IsSuperuser: true,
	})
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Admin created: %s (id %d)", admin.Username, admin.ID)
}
