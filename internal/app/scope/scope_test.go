package scope

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

func buildSQL(t *testing.T, s Scope, cols Columns) (string, []interface{}) {
	t.Helper()
	b := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("id").From("enrollments")
	narrowed, err := s.Apply(b, cols)
	require.NoError(t, err)
	query, args, err := narrowed.ToSql()
	require.NoError(t, err)
	return query, args
}

func TestScopeApplyAdmin(t *testing.T) {
	cols := Columns{Student: "student_id", Course: "course_id"}

	query, args := buildSQL(t, Scope{Kind: KindAdmin}, cols)
	assert.Equal(t, "SELECT id FROM enrollments", query)
	assert.Empty(t, args)
}

func TestScopeApplyLibrarian(t *testing.T) {
	// Full visibility only over library-domain tables.
	loans := sq.Select("id").From("borrow_records")
	narrowed, err := Scope{Kind: KindLibrarian}.Apply(loans, Columns{Student: "br.student_id", Library: true})
	require.NoError(t, err)
	query, args, err := narrowed.ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM borrow_records", query)
	assert.Empty(t, args)

	// Academic and financial tables fail closed.
	b := sq.Select("id").From("fees")
	_, err = Scope{Kind: KindLibrarian}.Apply(b, Columns{Student: "student_id"})
	assert.ErrorIs(t, err, apperrors.ErrScopeNotApplicable)

	_, err = Scope{Kind: KindLibrarian}.Apply(b, Columns{Student: "e.student_id", Course: "e.course_id"})
	assert.ErrorIs(t, err, apperrors.ErrScopeNotApplicable)
}

func TestScopeApplyStudent(t *testing.T) {
	s := Scope{Kind: KindStudent, StudentID: 42}
	query, args := buildSQL(t, s, Columns{Student: "student_id"})
	assert.Contains(t, query, "student_id = $1")
	assert.Equal(t, []interface{}{int64(42)}, args)
}

func TestScopeApplyFaculty(t *testing.T) {
	s := Scope{Kind: KindFaculty, FacultyID: 7, CourseIDs: []int64{10, 11}}
	query, args := buildSQL(t, s, Columns{Course: "course_id"})
	assert.Contains(t, query, "course_id IN ($1,$2)")
	assert.Equal(t, []interface{}{int64(10), int64(11)}, args)
}

func TestScopeApplyFacultyWithNoCourses(t *testing.T) {
	// A faculty member teaching nothing must see nothing, not everything.
	s := Scope{Kind: KindFaculty, FacultyID: 7}
	query, args := buildSQL(t, s, Columns{Course: "course_id"})
	assert.Contains(t, query, "(1=0)")
	assert.Empty(t, args)
}

func TestScopeApplyFailsClosed(t *testing.T) {
	b := sq.Select("id").From("departments")

	// Unresolved zero scope matches nothing.
	_, err := Scope{}.Apply(b, Columns{Student: "student_id"})
	assert.ErrorIs(t, err, apperrors.ErrScopeNotApplicable)

	// Missing linkage column for the variant.
	_, err = Scope{Kind: KindStudent, StudentID: 1}.Apply(b, Columns{})
	assert.ErrorIs(t, err, apperrors.ErrScopeNotApplicable)

	_, err = Scope{Kind: KindFaculty, CourseIDs: []int64{1}}.Apply(b, Columns{})
	assert.ErrorIs(t, err, apperrors.ErrScopeNotApplicable)
}

func TestScopeAllowsCourse(t *testing.T) {
	assert.True(t, Scope{Kind: KindAdmin}.AllowsCourse(5))
	assert.True(t, Scope{Kind: KindFaculty, CourseIDs: []int64{4, 5}}.AllowsCourse(5))
	assert.False(t, Scope{Kind: KindFaculty, CourseIDs: []int64{4}}.AllowsCourse(5))
	assert.False(t, Scope{Kind: KindStudent, StudentID: 1}.AllowsCourse(5))
	assert.False(t, Scope{}.AllowsCourse(5))
}

func TestScopeAllowsStudent(t *testing.T) {
	assert.True(t, Scope{Kind: KindAdmin}.AllowsStudent(9))
	assert.True(t, Scope{Kind: KindStudent, StudentID: 9}.AllowsStudent(9))
	assert.False(t, Scope{Kind: KindStudent, StudentID: 8}.AllowsStudent(9))
	assert.False(t, Scope{Kind: KindLibrarian}.AllowsStudent(9))
	assert.False(t, Scope{Kind: KindFaculty, CourseIDs: []int64{1}}.AllowsStudent(9))
	assert.False(t, Scope{}.AllowsStudent(9))
}

func TestScopeAllowsBorrower(t *testing.T) {
	assert.True(t, Scope{Kind: KindAdmin}.AllowsBorrower(9))
	assert.True(t, Scope{Kind: KindLibrarian}.AllowsBorrower(9))
	assert.True(t, Scope{Kind: KindStudent, StudentID: 9}.AllowsBorrower(9))
	assert.False(t, Scope{Kind: KindStudent, StudentID: 8}.AllowsBorrower(9))
	assert.False(t, Scope{Kind: KindFaculty, CourseIDs: []int64{1}}.AllowsBorrower(9))
	assert.False(t, Scope{}.AllowsBorrower(9))
}

type fakeStudents struct {
	student *models.Student
	err     error
}

func (f fakeStudents) GetByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return f.student, f.err
}

type fakeFaculty struct {
	member *models.FacultyMember
	err    error
}

func (f fakeFaculty) GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error) {
	return f.member, f.err
}

type fakeCourses struct {
	ids []int64
	err error
}

func (f fakeCourses) GetIDsByFaculty(ctx context.Context, facultyID int64) ([]int64, error) {
	return f.ids, f.err
}

func TestResolverAdminAndLibrarian(t *testing.T) {
	r := NewResolver(fakeStudents{}, fakeFaculty{}, fakeCourses{})

	sc, err := r.Resolve(context.Background(), 1, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, KindAdmin, sc.Kind)
	assert.Equal(t, int64(1), sc.UserID)

	sc, err = r.Resolve(context.Background(), 2, models.RoleLibrarian)
	require.NoError(t, err)
	assert.Equal(t, KindLibrarian, sc.Kind)
}

func TestResolverStudent(t *testing.T) {
	r := NewResolver(fakeStudents{student: &models.Student{ID: 42}}, fakeFaculty{}, fakeCourses{})

	sc, err := r.Resolve(context.Background(), 5, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, KindStudent, sc.Kind)
	assert.Equal(t, int64(42), sc.StudentID)
}

func TestResolverStudentWithoutProfile(t *testing.T) {
	r := NewResolver(fakeStudents{err: pgx.ErrNoRows}, fakeFaculty{}, fakeCourses{})

	_, err := r.Resolve(context.Background(), 5, models.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestResolverFaculty(t *testing.T) {
	r := NewResolver(
		fakeStudents{},
		fakeFaculty{member: &models.FacultyMember{ID: 7}},
		fakeCourses{ids: []int64{10, 11}},
	)

	sc, err := r.Resolve(context.Background(), 5, models.RoleFaculty)
	require.NoError(t, err)
	assert.Equal(t, KindFaculty, sc.Kind)
	assert.Equal(t, int64(7), sc.FacultyID)
	assert.Equal(t, []int64{10, 11}, sc.CourseIDs)
}

func TestResolverFacultyWithoutProfile(t *testing.T) {
	r := NewResolver(fakeStudents{}, fakeFaculty{err: apperrors.ErrFacultyNotFound}, fakeCourses{})

	_, err := r.Resolve(context.Background(), 5, models.RoleFaculty)
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
}

func TestResolverUnknownRole(t *testing.T) {
	r := NewResolver(fakeStudents{}, fakeFaculty{}, fakeCourses{})

	_, err := r.Resolve(context.Background(), 5, models.Role("INTRUDER"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
