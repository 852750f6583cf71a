package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Rate limiting
	ErrRateLimited = errors.New("too many requests")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Profile errors
var (
	ErrStudentNotFound       = errors.New("student profile not found")
	ErrFacultyNotFound       = errors.New("faculty profile not found")
	ErrRollNumberExists      = errors.New("roll number already exists")
	ErrEmployeeIDExists      = errors.New("employee ID already exists")
	ErrProfileNotFound       = errors.New("profile not found for authenticated user")
	ErrScopeNotApplicable    = errors.New("role scope not applicable to this resource")
)

// Department errors
var (
	ErrDepartmentNotFound      = errors.New("department not found")
	ErrDepartmentAlreadyExists = errors.New("department with this name or code already exists")
	ErrDepartmentHasRelations  = errors.New("department has associated records and cannot be deleted")
)

// Course / enrollment errors
var (
	ErrCourseNotFound        = errors.New("course not found")
	ErrCourseCodeExists      = errors.New("course with this code already exists")
	ErrCourseHasEnrollments  = errors.New("course has active enrollments and cannot be deleted")
	ErrAlreadyEnrolled       = errors.New("student is already enrolled in this course for the academic year")
	ErrCourseFull            = errors.New("course has reached maximum enrollment")
	ErrPrerequisiteNotMet    = errors.New("course prerequisites are not satisfied")
	ErrEnrollmentNotFound    = errors.New("enrollment not found")
)

// Attendance errors
var (
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

// Fee errors
var (
	ErrFeeNotFound    = errors.New("fee record not found")
	ErrFeeAlreadyPaid = errors.New("fee is already fully paid")
)

// Library errors
var (
	ErrBookNotFound        = errors.New("book not found")
	ErrBookAlreadyExists   = errors.New("a book with this ISBN already exists")
	ErrBookHasLoans        = errors.New("book has borrow records and cannot be deleted")
	ErrBookUnavailable     = errors.New("no copies of this book are available")
	ErrAlreadyBorrowed     = errors.New("student already holds a copy of this book")
	ErrBorrowLimitReached  = errors.New("student has reached the borrowing limit")
	ErrOverdueLoansExist   = errors.New("student has overdue loans and cannot borrow")
	ErrBorrowNotFound      = errors.New("borrow record not found")
	ErrAlreadyReturned     = errors.New("book has already been returned")
	ErrRenewalLimitReached = errors.New("renewal limit reached for this loan")
	ErrRenewOverdueLoan    = errors.New("overdue loans cannot be renewed")
)

// Notice errors
var (
	ErrNoticeNotFound = errors.New("notice not found")
)

// Timetable errors
var (
	ErrTimetableNotFound     = errors.New("timetable not found")
	ErrPeriodOverlap         = errors.New("timetable periods overlap")
	ErrInvalidPeriodTime     = errors.New("period start time must precede end time")
	ErrTimetableNotDraft     = errors.New("timetable is not in draft state")
	ErrTimetableNotPending   = errors.New("timetable is not pending approval")
	ErrTimetableExists       = errors.New("timetable already exists for this key")
)

// Email verification / password reset errors
var (
	ErrEmailNotVerified          = errors.New("email not verified")
	ErrInvalidEmailToken         = errors.New("invalid or expired email verification token")
	ErrEmailAlreadyVerified      = errors.New("email already verified")
	ErrInvalidPasswordResetToken = errors.New("invalid or expired password reset token")
)

// NewResourceNotFoundError creates a custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewValidationError creates a custom error for failed business-rule validation
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
