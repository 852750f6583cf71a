// Package scope computes the role-scope predicate for list queries. The
// scope is resolved once per request from the authenticated identity and
// narrows every collection query server-side; caller-supplied filters are
// layered on top and can never widen it.
package scope

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/pkg/apperrors"
)

// Kind tags the scope variant
type Kind int

// The zero Kind is deliberately invalid so an unresolved scope matches
// nothing.
const (
	KindNone Kind = iota
	KindAdmin
	KindStudent
	KindFaculty
	KindLibrarian
)

// Scope is the per-request role scope. Exactly one variant applies:
// Admin and Librarian carry no narrowing data, Student carries the caller's
// student id, Faculty carries the course ids where the caller is
// coordinator or instructor.
type Scope struct {
	Kind      Kind
	UserID    int64
	StudentID int64
	FacultyID int64
	CourseIDs []int64
}

// Columns maps scope variants onto the columns of the queried table.
// Leave a column empty when the table has no such linkage; applying a
// scope against a missing column fails closed. Library marks the table as
// a library-domain entity, the only tables a librarian sees in full.
type Columns struct {
	Student string // column holding the subject student id
	Course  string // column holding the course id
	Library bool   // table belongs to the library domain
}

// Apply narrows a select builder with the role-scope predicate.
func (s Scope) Apply(b sq.SelectBuilder, cols Columns) (sq.SelectBuilder, error) {
	switch s.Kind {
	case KindAdmin:
		// Full visibility; caller-supplied filters still apply.
		return b, nil
	case KindLibrarian:
		if cols.Library {
			return b, nil
		}
		return b, apperrors.ErrScopeNotApplicable
	case KindStudent:
		if cols.Student == "" {
			return b, apperrors.ErrScopeNotApplicable
		}
		return b.Where(sq.Eq{cols.Student: s.StudentID}), nil
	case KindFaculty:
		if cols.Course == "" {
			return b, apperrors.ErrScopeNotApplicable
		}
		// Empty course set renders as a contradiction, matching nothing.
		return b.Where(sq.Eq{cols.Course: s.CourseIDs}), nil
	}
	return b, apperrors.ErrScopeNotApplicable
}

// AllowsCourse reports whether the scope grants course-level access to the
// given course. Admin always passes; student scope never confers
// course-level write access.
func (s Scope) AllowsCourse(courseID int64) bool {
	switch s.Kind {
	case KindAdmin:
		return true
	case KindFaculty:
		for _, id := range s.CourseIDs {
			if id == courseID {
				return true
			}
		}
	}
	return false
}

// AllowsStudent reports whether the scope may act on records of the given
// student. Admin passes; a student only for their own profile. Librarians
// do not pass here: their student-level access is confined to loans and
// goes through AllowsBorrower.
func (s Scope) AllowsStudent(studentID int64) bool {
	switch s.Kind {
	case KindAdmin:
		return true
	case KindStudent:
		return s.StudentID == studentID
	}
	return false
}

// AllowsBorrower reports whether the scope may act on the given student's
// loans. Admin and librarian pass; a student only for their own loans.
func (s Scope) AllowsBorrower(studentID int64) bool {
	if s.Kind == KindLibrarian {
		return true
	}
	return s.AllowsStudent(studentID)
}

// StudentLookup resolves a student profile from a user id
type StudentLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Student, error)
}

// FacultyLookup resolves a faculty profile from a user id
type FacultyLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*models.FacultyMember, error)
}

// CourseLookup resolves the course ids a faculty member coordinates or teaches
type CourseLookup interface {
	GetIDsByFaculty(ctx context.Context, facultyID int64) ([]int64, error)
}

// Resolver computes a Scope from the authenticated identity
type Resolver struct {
	students StudentLookup
	faculty  FacultyLookup
	courses  CourseLookup
}

// NewResolver creates a scope resolver
func NewResolver(students StudentLookup, faculty FacultyLookup, courses CourseLookup) *Resolver {
	return &Resolver{
		students: students,
		faculty:  faculty,
		courses:  courses,
	}
}

// Resolve computes the scope for the authenticated user. A missing profile
// for a student or faculty user fails closed with ErrProfileNotFound.
func (r *Resolver) Resolve(ctx context.Context, userID int64, role models.Role) (Scope, error) {
	switch role {
	case models.RoleAdmin:
		return Scope{Kind: KindAdmin, UserID: userID}, nil
	case models.RoleLibrarian:
		return Scope{Kind: KindLibrarian, UserID: userID}, nil
	case models.RoleStudent:
		student, err := r.students.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, apperrors.ErrStudentNotFound) {
				return Scope{}, apperrors.ErrProfileNotFound
			}
			return Scope{}, err
		}
		return Scope{Kind: KindStudent, UserID: userID, StudentID: student.ID}, nil
	case models.RoleFaculty:
		member, err := r.faculty.GetByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, apperrors.ErrFacultyNotFound) {
				return Scope{}, apperrors.ErrProfileNotFound
			}
			return Scope{}, err
		}
		courseIDs, err := r.courses.GetIDsByFaculty(ctx, member.ID)
		if err != nil {
			return Scope{}, err
		}
		return Scope{Kind: KindFaculty, UserID: userID, FacultyID: member.ID, CourseIDs: courseIDs}, nil
	}
	return Scope{}, apperrors.ErrPermissionDenied
}
