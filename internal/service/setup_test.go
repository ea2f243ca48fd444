package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic/internal/db"
	"clinic/internal/model"
	"clinic/internal/repository"
)

type testEnv struct {
	db           *gorm.DB
	repos        repository.Repositories
	users        UserService
	timeSlots    TimeSlotService
	appointments *appointmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(gormDB)
	uow := repository.NewUnitOfWork(gormDB)
	users := NewUserService(repos.Users, uow, nil)

	return &testEnv{
		db:           gormDB,
		repos:        repos,
		users:        users,
		timeSlots:    NewTimeSlotService(repos, uow, users),
		appointments: NewAppointmentService(repos, uow, time.UTC).(*appointmentService),
	}
}

func (e *testEnv) createUser(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), CreateUserInput{
		Username:  username,
		Email:     fmt.Sprintf("%s@example.com", username),
		Password:  "password123",
		FirstName: username,
		LastName:  "Test",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createSlot(t *testing.T, doctor *model.User, date string, start, end model.Clock) *model.TimeSlot {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	slot, err := e.timeSlots.Create(context.Background(), doctor, CreateTimeSlotInput{Date: d, StartTime: start, EndTime: end})
	require.NoError(t, err)
	return slot
}

func (e *testEnv) slotAvailable(t *testing.T, id uint) bool {
	t.Helper()
	slot, err := e.repos.TimeSlots.FindByID(context.Background(), id)
	require.NoError(t, err)
	return slot.IsAvailable
}

func uintPtr(v uint) *uint {
	return &v
}
