package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		value   string
		minutes int
		ok      bool
	}{
		{"09:00", 540, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{"9:00", 540, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"0900", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		minutes, ok := parseClock(tt.value)
		assert.Equal(t, tt.ok, ok, "parseClock(%q)", tt.value)
		if tt.ok {
			assert.Equal(t, tt.minutes, minutes, "parseClock(%q)", tt.value)
		}
	}
}

func period(day, start, end string, courseID, facultyID int64, room string) dto.PeriodRequest {
	return dto.PeriodRequest{
		Day:       day,
		StartTime: start,
		EndTime:   end,
		CourseID:  courseID,
		FacultyID: facultyID,
		Room:      room,
	}
}

func TestValidatePeriodsAccepts(t *testing.T) {
	tests := []struct {
		name    string
		periods []dto.PeriodRequest
	}{
		{
			name: "back to back in the same room",
			periods: []dto.PeriodRequest{
				period("MONDAY", "09:00", "10:00", 1, 1, "A101"),
				period("MONDAY", "10:00", "11:00", 2, 2, "A101"),
			},
		},
		{
			name: "same slot on different days",
			periods: []dto.PeriodRequest{
				period("MONDAY", "09:00", "10:00", 1, 1, "A101"),
				period("WEDNESDAY", "09:00", "10:00", 1, 1, "A101"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, validatePeriods(tt.periods))
		})
	}
}

func TestValidatePeriodsRejectsOverlap(t *testing.T) {
	tests := []struct {
		name    string
		periods []dto.PeriodRequest
	}{
		{
			name: "same room overlapping",
			periods: []dto.PeriodRequest{
				period("MONDAY", "09:00", "11:00", 1, 1, "A101"),
				period("MONDAY", "10:00", "12:00", 2, 2, "A101"),
			},
		},
		{
			name: "overlapping slots in different rooms with different faculty",
			periods: []dto.PeriodRequest{
				period("TUESDAY", "09:00", "10:00", 1, 1, "A101"),
				period("TUESDAY", "09:30", "10:30", 2, 2, "B202"),
			},
		},
		{
			name: "identical slots in parallel",
			periods: []dto.PeriodRequest{
				period("FRIDAY", "09:00", "10:00", 1, 7, "A101"),
				period("FRIDAY", "09:00", "10:00", 2, 8, "B202"),
			},
		},
		{
			name: "overlap detected regardless of input order",
			periods: []dto.PeriodRequest{
				period("MONDAY", "10:00", "12:00", 2, 2, "A101"),
				period("MONDAY", "09:00", "11:00", 1, 1, "A101"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePeriods(tt.periods)
			assert.ErrorIs(t, err, apperrors.ErrPeriodOverlap)
		})
	}
}

func TestValidatePeriodsRejectsBadInput(t *testing.T) {
	err := validatePeriods([]dto.PeriodRequest{
		period("FUNDAY", "09:00", "10:00", 1, 1, "A101"),
	})
	assert.Error(t, err)

	err = validatePeriods([]dto.PeriodRequest{
		period("MONDAY", "9am", "10:00", 1, 1, "A101"),
	})
	assert.Error(t, err)

	err = validatePeriods([]dto.PeriodRequest{
		period("MONDAY", "10:00", "09:00", 1, 1, "A101"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriodTime)

	// Zero-length periods are invalid too.
	err = validatePeriods([]dto.PeriodRequest{
		period("MONDAY", "10:00", "10:00", 1, 1, "A101"),
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriodTime)
}

func TestToPeriods(t *testing.T) {
	reqs := []dto.PeriodRequest{
		period("MONDAY", "09:00", "10:00", 3, 4, "C303"),
	}

	periods := toPeriods(reqs)
	assert.Len(t, periods, 1)
	assert.Equal(t, "MONDAY", periods[0].Day)
	assert.Equal(t, "09:00", periods[0].StartTime)
	assert.Equal(t, "10:00", periods[0].EndTime)
	assert.Equal(t, int64(3), periods[0].CourseID)
	assert.Equal(t, int64(4), periods[0].FacultyID)
	assert.Equal(t, "C303", periods[0].Room)
}
