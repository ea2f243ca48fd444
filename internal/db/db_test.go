package db

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"clinic/internal/model"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestMigrateAndReset(t *testing.T) {
	gormDB, err := Open("sqlite", ":memory:")
	require.NoError(t, err)

	require.NoError(t, Migrate(gormDB))
	for _, m := range Models {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}

	slot := &model.TimeSlot{
		DoctorID:    1,
		Date:        model.NewDate(2099, 1, 1),
		StartTime:   model.NewClock(9, 0),
		EndTime:     model.NewClock(10, 0),
		IsAvailable: true,
	}
	require.NoError(t, gormDB.Omit("Doctor").Create(slot).Error)

	var loaded model.TimeSlot
	require.NoError(t, gormDB.First(&loaded, slot.ID).Error)
	assert.Equal(t, "2099-01-01", loaded.Date.String())
	assert.Equal(t, model.NewClock(9, 0), loaded.StartTime)
	assert.Equal(t, model.NewClock(10, 0), loaded.EndTime)

	require.NoError(t, Reset(gormDB))
	assert.False(t, gormDB.Migrator().HasTable(&model.TimeSlot{}))
}

func TestLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(log.New(&buf, "", 0))
	sql := func() (string, int64) { return "SELECT * FROM users WHERE id = 1", 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "connection reset")
}
