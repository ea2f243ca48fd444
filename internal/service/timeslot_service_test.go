package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "clinic/internal/errors"
	"clinic/internal/model"
	"clinic/internal/repository"
)

func TestTimeSlotService_CreateRejectsOverlaps(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createUser(t, "house", model.RoleDoctor)
	other := env.createUser(t, "wilson", model.RoleDoctor)

	slot := env.createSlot(t, doctor, "2099-01-01", model.NewClock(9, 0), model.NewClock(10, 0))
	assert.True(t, slot.IsAvailable)
	assert.Equal(t, doctor.ID, slot.DoctorID)

	date := model.NewDate(2099, 1, 1)
	tests := []struct {
		name    string
		actor   *model.User
		start   model.Clock
		end     model.Clock
		wantErr error
	}{
		{"adjacent after", doctor, model.NewClock(10, 0), model.NewClock(11, 0), nil},
		{"adjacent before", doctor, model.NewClock(8, 0), model.NewClock(9, 0), nil},
		{"overlaps start", doctor, model.NewClock(8, 30), model.NewClock(9, 30), apperrors.ErrSlotOverlap},
		{"inside", doctor, model.NewClock(9, 15), model.NewClock(9, 45), apperrors.ErrSlotOverlap},
		{"identical", doctor, model.NewClock(9, 0), model.NewClock(10, 0), apperrors.ErrSlotOverlap},
		{"covers earlier slots", doctor, model.NewClock(7, 0), model.NewClock(12, 0), apperrors.ErrSlotOverlap},
		{"empty window", doctor, model.NewClock(13, 0), model.NewClock(13, 0), apperrors.ErrInvalidTimeRange},
		{"other doctor same window", other, model.NewClock(9, 0), model.NewClock(10, 0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.timeSlots.Create(ctx, tt.actor, CreateTimeSlotInput{Date: date, StartTime: tt.start, EndTime: tt.end})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	// Accepted slots never overlap pairwise.
	slots, _, err := env.timeSlots.ListMine(ctx, doctor, repository.TimeSlotFilter{})
	require.NoError(t, err)
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			assert.False(t, slots[i].Overlaps(slots[j].StartTime, slots[j].EndTime), "%v overlaps %v", slots[i], slots[j])
		}
	}
}

func TestTimeSlotService_CreatePermissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createUser(t, "house", model.RoleDoctor)
	patient := env.createUser(t, "alice", model.RolePatient)
	admin := env.createUser(t, "root", model.RoleAdmin)
	input := CreateTimeSlotInput{Date: model.NewDate(2099, 1, 1), StartTime: model.NewClock(9, 0), EndTime: model.NewClock(10, 0)}

	_, err := env.timeSlots.Create(ctx, patient, input)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.timeSlots.Create(ctx, admin, input)
	assert.Error(t, err, "admin must name a doctor")

	input.DoctorID = patient.ID
	_, err = env.timeSlots.Create(ctx, admin, input)
	assert.ErrorIs(t, err, apperrors.ErrDoctorNotFound)

	input.DoctorID = doctor.ID
	slot, err := env.timeSlots.Create(ctx, admin, input)
	require.NoError(t, err)
	assert.Equal(t, doctor.ID, slot.DoctorID)

	// A doctor cannot create slots for somebody else.
	other := env.createUser(t, "wilson", model.RoleDoctor)
	input.DoctorID = doctor.ID
	input.StartTime, input.EndTime = model.NewClock(11, 0), model.NewClock(12, 0)
	slot, err = env.timeSlots.Create(ctx, other, input)
	require.NoError(t, err)
	assert.Equal(t, other.ID, slot.DoctorID)
}

func TestTimeSlotService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createUser(t, "house", model.RoleDoctor)
	other := env.createUser(t, "wilson", model.RoleDoctor)

	first := env.createSlot(t, doctor, "2099-01-01", model.NewClock(9, 0), model.NewClock(10, 0))
	second := env.createSlot(t, doctor, "2099-01-01", model.NewClock(10, 0), model.NewClock(11, 0))

	// Updating in place with its own window does not count as an overlap.
	end := model.NewClock(9, 30)
	updated, err := env.timeSlots.Update(ctx, doctor, first.ID, UpdateTimeSlotInput{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, model.NewClock(9, 30), updated.EndTime)

	start := model.NewClock(9, 15)
	_, err = env.timeSlots.Update(ctx, doctor, second.ID, UpdateTimeSlotInput{StartTime: &start})
	assert.ErrorIs(t, err, apperrors.ErrSlotOverlap)

	backwards := model.NewClock(8, 0)
	_, err = env.timeSlots.Update(ctx, doctor, second.ID, UpdateTimeSlotInput{EndTime: &backwards})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTimeRange)

	nextDay := model.NewDate(2099, 1, 2)
	moved, err := env.timeSlots.Update(ctx, doctor, second.ID, UpdateTimeSlotInput{Date: &nextDay})
	require.NoError(t, err)
	assert.Equal(t, "2099-01-02", moved.Date.String())

	_, err = env.timeSlots.Update(ctx, other, second.ID, UpdateTimeSlotInput{Date: &nextDay})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.timeSlots.Update(ctx, doctor, 999, UpdateTimeSlotInput{Date: &nextDay})
	assert.ErrorIs(t, err, apperrors.ErrTimeSlotNotFound)
}

func TestTimeSlotService_BookedSlotIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createUser(t, "house", model.RoleDoctor)
	patient := env.createUser(t, "alice", model.RolePatient)
	slot := env.createSlot(t, doctor, "2099-01-01", model.NewClock(9, 0), model.NewClock(10, 0))

	appt, err := env.appointments.Create(ctx, patient, CreateAppointmentInput{DoctorID: doctor.ID, TimeSlotID: &slot.ID})
	require.NoError(t, err)

	end := model.NewClock(11, 0)
	_, err = env.timeSlots.Update(ctx, doctor, slot.ID, UpdateTimeSlotInput{EndTime: &end})
	assert.ErrorIs(t, err, apperrors.ErrTimeSlotInUse)
	assert.ErrorIs(t, env.timeSlots.Delete(ctx, doctor, slot.ID), apperrors.ErrTimeSlotInUse)

	_, err = env.appointments.SetStatus(ctx, doctor, appt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	require.NoError(t, env.timeSlots.Delete(ctx, doctor, slot.ID))

	// The cancelled appointment keeps its schedule without the slot.
	detached, err := env.appointments.Get(ctx, patient, appt.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.TimeSlotID)
	require.NotNil(t, detached.ScheduledDate)
	assert.Equal(t, "2099-01-01", detached.ScheduledDate.String())
	assert.Equal(t, model.NewClock(9, 0), *detached.ScheduledStart)
	assert.Equal(t, model.NewClock(10, 0), *detached.ScheduledEnd)
}

func TestTimeSlotService_Queries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	house := env.createUser(t, "house", model.RoleDoctor)
	wilson := env.createUser(t, "wilson", model.RoleDoctor)
	patient := env.createUser(t, "alice", model.RolePatient)
	admin := env.createUser(t, "root", model.RoleAdmin)

	booked := env.createSlot(t, house, "2099-01-01", model.NewClock(9, 0), model.NewClock(10, 0))
	env.createSlot(t, house, "2099-01-02", model.NewClock(9, 0), model.NewClock(10, 0))
	env.createSlot(t, wilson, "2099-01-01", model.NewClock(9, 0), model.NewClock(10, 0))

	_, err := env.appointments.Create(ctx, patient, CreateAppointmentInput{DoctorID: house.ID, TimeSlotID: &booked.ID})
	require.NoError(t, err)

	_, total, err := env.timeSlots.List(ctx, admin, repository.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	slots, total, err := env.timeSlots.List(ctx, house, repository.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, s := range slots {
		assert.Equal(t, house.ID, s.DoctorID)
	}

	date := model.NewDate(2099, 1, 1)
	_, total, err = env.timeSlots.List(ctx, admin, repository.TimeSlotFilter{Date: &date})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = env.timeSlots.List(ctx, admin, repository.TimeSlotFilter{Search: "wilson"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = env.timeSlots.List(ctx, admin, repository.TimeSlotFilter{Search: "2099-01-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	slots, _, err = env.timeSlots.List(ctx, admin, repository.TimeSlotFilter{Ordering: "-date"})
	require.NoError(t, err)
	assert.Equal(t, "2099-01-02", slots[0].Date.String())

	_, _, err = env.timeSlots.List(ctx, patient, repository.TimeSlotFilter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	available, total, err := env.timeSlots.ListAvailableForDoctor(ctx, house.ID, repository.TimeSlotFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "2099-01-02", available[0].Date.String())

	_, _, err = env.timeSlots.ListAvailableForDoctor(ctx, patient.ID, repository.TimeSlotFilter{})
	assert.ErrorIs(t, err, apperrors.ErrDoctorNotFound)

	_, err = env.timeSlots.Get(ctx, wilson, booked.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	got, err := env.timeSlots.Get(ctx, house, booked.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
}

// lockRecorder notes which rows a transaction locks, in order.
type lockRecorder struct {
	calls []string
}

type recordingUsers struct {
	repository.UserRepository
	rec *lockRecorder
}

func (u recordingUsers) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	u.rec.calls = append(u.rec.calls, "doctor")
	return u.UserRepository.FindByIDForUpdate(ctx, id)
}

type recordingSlots struct {
	repository.TimeSlotRepository
	rec *lockRecorder
}

func (s recordingSlots) FindByIDForUpdate(ctx context.Context, id uint) (*model.TimeSlot, error) {
	s.rec.calls = append(s.rec.calls, "slot")
	return s.TimeSlotRepository.FindByIDForUpdate(ctx, id)
}

func (s recordingSlots) ListForDoctorOnDate(ctx context.Context, doctorID uint, date model.Date, excludeID uint) ([]model.TimeSlot, error) {
	s.rec.calls = append(s.rec.calls, "day")
	return s.TimeSlotRepository.ListForDoctorOnDate(ctx, doctorID, date, excludeID)
}

type recordingUnitOfWork struct {
	uow repository.UnitOfWork
	rec *lockRecorder
}

func (u recordingUnitOfWork) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	return u.uow.WithTransaction(ctx, func(ctx context.Context, tx repository.Repositories) error {
		tx.Users = recordingUsers{UserRepository: tx.Users, rec: u.rec}
		tx.TimeSlots = recordingSlots{TimeSlotRepository: tx.TimeSlots, rec: u.rec}
		return fn(ctx, tx)
	})
}

func TestTimeSlotService_LocksDoctorBeforeOverlapCheck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.createUser(t, "house", model.RoleDoctor)
	admin := env.createUser(t, "cuddy", model.RoleAdmin)

	rec := &lockRecorder{}
	svc := NewTimeSlotService(env.repos, recordingUnitOfWork{uow: repository.NewUnitOfWork(env.db), rec: rec}, env.users)

	// A doctor's first slot of the day has no rows to lock but the doctor's own.
	slot, err := svc.Create(ctx, doctor, CreateTimeSlotInput{
		Date:      model.NewDate(2099, 1, 1),
		StartTime: model.NewClock(9, 0),
		EndTime:   model.NewClock(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doctor", "day"}, rec.calls)

	rec.calls = nil
	_, err = svc.Create(ctx, admin, CreateTimeSlotInput{
		DoctorID:  doctor.ID,
		Date:      model.NewDate(2099, 1, 1),
		StartTime: model.NewClock(9, 30),
		EndTime:   model.NewClock(10, 30),
	})
	assert.ErrorIs(t, err, apperrors.ErrSlotOverlap)
	assert.Equal(t, []string{"doctor", "day"}, rec.calls)

	rec.calls = nil
	end := model.NewClock(11, 0)
	_, err = svc.Update(ctx, doctor, slot.ID, UpdateTimeSlotInput{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, []string{"doctor", "slot", "day"}, rec.calls)
}
