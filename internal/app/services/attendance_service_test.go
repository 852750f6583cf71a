package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

type fakeAttendanceStore struct {
	// sheets keyed by (studentID, date, period); UpsertBatch overwrites
	// like the composite-key upsert does.
	sheets  map[[3]int64]models.AttendanceStatus
	batches int
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{sheets: make(map[[3]int64]models.AttendanceStatus)}
}

func (f *fakeAttendanceStore) UpsertBatch(ctx context.Context, records []*models.Attendance) error {
	f.batches++
	for _, r := range records {
		f.sheets[[3]int64{r.StudentID, r.Date.Unix(), int64(r.Period)}] = r.Status
	}
	return nil
}

func (f *fakeAttendanceStore) List(ctx context.Context, sc scope.Scope, filter repositories.AttendanceFilter) ([]*models.Attendance, int64, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceStore) Report(ctx context.Context, courseID int64, from, to time.Time) ([]*repositories.ReportRow, error) {
	return nil, nil
}

type fakeRoster struct{ ids []int64 }

func (f fakeRoster) ActiveStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	return f.ids, nil
}

func markRequest(entries ...dto.MarkAttendanceEntry) *dto.MarkAttendanceRequest {
	return &dto.MarkAttendanceRequest{
		CourseID: 10,
		Date:     "2025-03-03",
		Period:   2,
		Entries:  entries,
	}
}

func TestAttendanceMarkWritesSheet(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := NewAttendanceService(store, fakeRoster{ids: []int64{1, 2}})
	sc := scope.Scope{Kind: scope.KindFaculty, UserID: 99, CourseIDs: []int64{10}}

	records, err := svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent},
		dto.MarkAttendanceEntry{StudentID: 2, Status: models.AttendanceAbsent},
	))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(99), records[0].MarkedByID)
	assert.Equal(t, int64(10), records[0].CourseID)
	assert.Equal(t, 2, records[0].Period)
}

func TestAttendanceMarkRemarkOverwrites(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := NewAttendanceService(store, fakeRoster{ids: []int64{1}})
	sc := scope.Scope{Kind: scope.KindAdmin, UserID: 1}

	_, err := svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendanceAbsent}))
	require.NoError(t, err)

	_, err = svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent}))
	require.NoError(t, err)

	// Same slot marked twice yields one entry with the latest status.
	assert.Equal(t, 2, store.batches)
	require.Len(t, store.sheets, 1)
	for _, status := range store.sheets {
		assert.Equal(t, models.AttendancePresent, status)
	}
}

func TestAttendanceMarkRejectsUnenrolledStudent(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := NewAttendanceService(store, fakeRoster{ids: []int64{1}})
	sc := scope.Scope{Kind: scope.KindAdmin, UserID: 1}

	_, err := svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent},
		dto.MarkAttendanceEntry{StudentID: 7, Status: models.AttendancePresent},
	))
	assert.Error(t, err)
	assert.Zero(t, store.batches)
}

func TestAttendanceMarkRejectsDuplicateEntry(t *testing.T) {
	store := newFakeAttendanceStore()
	svc := NewAttendanceService(store, fakeRoster{ids: []int64{1}})
	sc := scope.Scope{Kind: scope.KindAdmin, UserID: 1}

	_, err := svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent},
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendanceAbsent},
	))
	assert.Error(t, err)
	assert.Zero(t, store.batches)
}

func TestAttendanceMarkDeniesForeignCourse(t *testing.T) {
	svc := NewAttendanceService(newFakeAttendanceStore(), fakeRoster{ids: []int64{1}})
	sc := scope.Scope{Kind: scope.KindFaculty, UserID: 99, CourseIDs: []int64{11}}

	_, err := svc.Mark(context.Background(), sc, markRequest(
		dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent}))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestAttendanceMarkRejectsFutureDate(t *testing.T) {
	svc := NewAttendanceService(newFakeAttendanceStore(), fakeRoster{ids: []int64{1}})
	sc := scope.Scope{Kind: scope.KindAdmin, UserID: 1}

	req := markRequest(dto.MarkAttendanceEntry{StudentID: 1, Status: models.AttendancePresent})
	req.Date = time.Now().AddDate(0, 0, 7).Format("2006-01-02")

	_, err := svc.Mark(context.Background(), sc, req)
	assert.Error(t, err)
}
