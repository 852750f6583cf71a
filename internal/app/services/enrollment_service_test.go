package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// fakeEnrollmentStore mimics the capacity-checked insert: it counts active
// enrollments per course and rejects past the course capacity, like the
// row-locked insert does.
type fakeEnrollmentStore struct {
	capacity int
	enrolled map[int64][]int64 // courseID -> studentIDs
	passed   []int64
}

func newFakeEnrollmentStore(capacity int) *fakeEnrollmentStore {
	return &fakeEnrollmentStore{capacity: capacity, enrolled: make(map[int64][]int64)}
}

func (f *fakeEnrollmentStore) CreateWithCapacity(ctx context.Context, e *models.Enrollment) error {
	for _, id := range f.enrolled[e.CourseID] {
		if id == e.StudentID {
			return apperrors.ErrAlreadyEnrolled
		}
	}
	if len(f.enrolled[e.CourseID]) >= f.capacity {
		return apperrors.ErrCourseFull
	}
	f.enrolled[e.CourseID] = append(f.enrolled[e.CourseID], e.StudentID)
	e.ID = int64(len(f.enrolled[e.CourseID]))
	return nil
}

func (f *fakeEnrollmentStore) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	return nil, apperrors.ErrEnrollmentNotFound
}

func (f *fakeEnrollmentStore) List(ctx context.Context, sc scope.Scope, filter repositories.EnrollmentFilter) ([]*models.Enrollment, int64, error) {
	return nil, 0, nil
}

func (f *fakeEnrollmentStore) PassedCourseIDs(ctx context.Context, studentID int64, courseIDs []int64) ([]int64, error) {
	return f.passed, nil
}

func (f *fakeEnrollmentStore) UpdateStatus(ctx context.Context, id int64, status models.EnrollmentStatus) error {
	return nil
}

func (f *fakeEnrollmentStore) SubmitGrade(ctx context.Context, id int64, grade string, passed bool, credits int) error {
	return nil
}

type fakeCourseGetter struct{ course *models.Course }

func (f fakeCourseGetter) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	if f.course == nil {
		return nil, apperrors.ErrCourseNotFound
	}
	return f.course, nil
}

type fakeStudentGetter struct{}

func (fakeStudentGetter) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	return &models.Student{ID: id}, nil
}

func enrollmentService(store *fakeEnrollmentStore, course *models.Course) *EnrollmentService {
	return NewEnrollmentService(store, fakeCourseGetter{course: course}, fakeStudentGetter{})
}

func TestEnrollCapacityBoundary(t *testing.T) {
	store := newFakeEnrollmentStore(2)
	svc := enrollmentService(store, &models.Course{ID: 10, MaxEnrollment: 2})
	admin := scope.Scope{Kind: scope.KindAdmin}

	for studentID := int64(1); studentID <= 2; studentID++ {
		_, err := svc.Enroll(context.Background(), admin, &dto.CreateEnrollmentRequest{
			StudentID: studentID, CourseID: 10, AcademicYear: "2025-2026",
		})
		require.NoError(t, err, "enrollment %d should fit", studentID)
	}

	_, err := svc.Enroll(context.Background(), admin, &dto.CreateEnrollmentRequest{
		StudentID: 3, CourseID: 10, AcademicYear: "2025-2026",
	})
	assert.ErrorIs(t, err, apperrors.ErrCourseFull)
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	store := newFakeEnrollmentStore(10)
	svc := enrollmentService(store, &models.Course{ID: 10, MaxEnrollment: 10})
	admin := scope.Scope{Kind: scope.KindAdmin}

	req := &dto.CreateEnrollmentRequest{StudentID: 1, CourseID: 10, AcademicYear: "2025-2026"}
	_, err := svc.Enroll(context.Background(), admin, req)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), admin, req)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)
}

func TestEnrollPrerequisiteGate(t *testing.T) {
	store := newFakeEnrollmentStore(10)
	course := &models.Course{ID: 10, MaxEnrollment: 10, PrerequisiteIDs: []int64{4, 5}}
	svc := enrollmentService(store, course)
	admin := scope.Scope{Kind: scope.KindAdmin}

	store.passed = []int64{4}
	_, err := svc.Enroll(context.Background(), admin, &dto.CreateEnrollmentRequest{
		StudentID: 1, CourseID: 10, AcademicYear: "2025-2026",
	})
	assert.ErrorIs(t, err, apperrors.ErrPrerequisiteNotMet)

	store.passed = []int64{4, 5}
	_, err = svc.Enroll(context.Background(), admin, &dto.CreateEnrollmentRequest{
		StudentID: 1, CourseID: 10, AcademicYear: "2025-2026",
	})
	assert.NoError(t, err)
}

func TestEnrollStudentScopeIgnoresForeignStudentID(t *testing.T) {
	store := newFakeEnrollmentStore(10)
	svc := enrollmentService(store, &models.Course{ID: 10, MaxEnrollment: 10})
	sc := scope.Scope{Kind: scope.KindStudent, UserID: 5, StudentID: 42}

	enrollment, err := svc.Enroll(context.Background(), sc, &dto.CreateEnrollmentRequest{
		StudentID: 7, CourseID: 10, AcademicYear: "2025-2026",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), enrollment.StudentID)
	assert.Equal(t, []int64{42}, store.enrolled[10])
}

func TestEnrollDeniedForFaculty(t *testing.T) {
	svc := enrollmentService(newFakeEnrollmentStore(10), &models.Course{ID: 10})
	sc := scope.Scope{Kind: scope.KindFaculty, CourseIDs: []int64{10}}

	_, err := svc.Enroll(context.Background(), sc, &dto.CreateEnrollmentRequest{
		StudentID: 1, CourseID: 10, AcademicYear: "2025-2026",
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
