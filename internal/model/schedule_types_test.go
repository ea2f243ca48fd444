package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"09:00", NewClock(9, 0), false},
		{"09:30:15", NewClock(9, 30) + 15, false},
		{"23:59", NewClock(23, 59), false},
		{"09:00:00.000000", NewClock(9, 0), false},
		{"9am", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClock_ScanAndValue(t *testing.T) {
	var c Clock
	require.NoError(t, c.Scan([]byte("10:15:00")))
	assert.Equal(t, NewClock(10, 15), c)

	require.NoError(t, c.Scan(time.Date(0, 1, 1, 8, 45, 0, 0, time.UTC)))
	assert.Equal(t, NewClock(8, 45), c)

	v, err := NewClock(7, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "07:05:00", v)

	_, err = Clock(25 * 3600).Value()
	assert.Error(t, err)
}

func TestDate_ScanAndJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2099-01-01"))
	assert.Equal(t, "2099-01-01", d.String())

	require.NoError(t, d.Scan(time.Date(2030, 5, 6, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, "2030-05-06", d.String())

	require.NoError(t, d.Scan([]byte("2031-02-03T00:00:00Z")))
	assert.Equal(t, "2031-02-03", d.String())

	var payload struct {
		Date  Date  `json:"date"`
		Start Clock `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2099-12-31","start":"09:00"}`), &payload))
	assert.Equal(t, "2099-12-31", payload.Date.String())
	assert.Equal(t, NewClock(9, 0), payload.Start)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2099-12-31","start":"09:00:00"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"31/12/2099"}`), &payload))
}

func TestTimeSlot_Overlaps(t *testing.T) {
	slot := &TimeSlot{StartTime: NewClock(9, 0), EndTime: NewClock(10, 0)}

	assert.True(t, slot.Overlaps(NewClock(9, 30), NewClock(10, 30)))
	assert.True(t, slot.Overlaps(NewClock(8, 0), NewClock(11, 0)))
	assert.True(t, slot.Overlaps(NewClock(9, 15), NewClock(9, 45)))
	// touching windows do not overlap
	assert.False(t, slot.Overlaps(NewClock(10, 0), NewClock(11, 0)))
	assert.False(t, slot.Overlaps(NewClock(8, 0), NewClock(9, 0)))
}

func TestTimeSlot_StartsAt(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	slot := &TimeSlot{Date: NewDate(2099, 1, 1), StartTime: NewClock(9, 0)}

	got := slot.StartsAt(loc)
	assert.True(t, got.Equal(time.Date(2099, 1, 1, 6, 0, 0, 0, time.UTC)))
}
