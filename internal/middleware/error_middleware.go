package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/logger"
)

// HandleAPIError maps service errors onto the response envelope. Every
// controller funnels its errors through here so status codes and error
// codes stay uniform.
func HandleAPIError(c *gin.Context, err error) {
	// Custom errors carry a caller-facing message alongside the sentinel
	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) && customErr.Message != "" {
		switch {
		case errors.Is(customErr.Err, apperrors.ErrValidationFailed),
			errors.Is(customErr.Err, apperrors.ErrBadRequest):
			respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, customErr.Message)
		case errors.Is(customErr.Err, apperrors.ErrResourceNotFound):
			respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, customErr.Message)
		case errors.Is(customErr.Err, apperrors.ErrConflict):
			respond(c, http.StatusConflict, dto.ErrorCodeResourceConflict, customErr.Message)
		case errors.Is(customErr.Err, apperrors.ErrPermissionDenied):
			respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, customErr.Message)
		default:
			HandleAPIError(c, customErr.Err)
		}
		return
	}

	switch {
	// Authentication
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrTokenExpired):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrTokenNotFound):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found")
	case errors.Is(err, apperrors.ErrTokenRevoked):
		respond(c, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		respond(c, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled")
	case errors.Is(err, apperrors.ErrPermissionDenied),
		errors.Is(err, apperrors.ErrProfileNotFound),
		errors.Is(err, apperrors.ErrScopeNotApplicable):
		respond(c, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrInvalidEmailToken),
		errors.Is(err, apperrors.ErrInvalidPasswordResetToken):
		respond(c, http.StatusBadRequest, dto.ErrorCodeInvalidToken, err.Error())

	// Conflicts
	case errors.Is(err, apperrors.ErrEmailAlreadyExists),
		errors.Is(err, apperrors.ErrRollNumberExists),
		errors.Is(err, apperrors.ErrEmployeeIDExists),
		errors.Is(err, apperrors.ErrDepartmentAlreadyExists),
		errors.Is(err, apperrors.ErrCourseCodeExists),
		errors.Is(err, apperrors.ErrBookAlreadyExists),
		errors.Is(err, apperrors.ErrTimetableExists),
		errors.Is(err, apperrors.ErrAlreadyEnrolled),
		errors.Is(err, apperrors.ErrEmailAlreadyVerified):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, err.Error())

	// Business-rule conflicts
	case errors.Is(err, apperrors.ErrCourseFull),
		errors.Is(err, apperrors.ErrPrerequisiteNotMet),
		errors.Is(err, apperrors.ErrDepartmentHasRelations),
		errors.Is(err, apperrors.ErrCourseHasEnrollments),
		errors.Is(err, apperrors.ErrBookUnavailable),
		errors.Is(err, apperrors.ErrBookHasLoans),
		errors.Is(err, apperrors.ErrAlreadyBorrowed),
		errors.Is(err, apperrors.ErrBorrowLimitReached),
		errors.Is(err, apperrors.ErrOverdueLoansExist),
		errors.Is(err, apperrors.ErrAlreadyReturned),
		errors.Is(err, apperrors.ErrRenewalLimitReached),
		errors.Is(err, apperrors.ErrRenewOverdueLoan),
		errors.Is(err, apperrors.ErrFeeAlreadyPaid),
		errors.Is(err, apperrors.ErrTimetableNotDraft),
		errors.Is(err, apperrors.ErrTimetableNotPending):
		respond(c, http.StatusConflict, dto.ErrorCodeResourceConflict, err.Error())

	// Validation
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrPeriodOverlap),
		errors.Is(err, apperrors.ErrInvalidPeriodTime):
		respond(c, http.StatusBadRequest, dto.ErrorCodeValidationFailed, err.Error())

	// Not found
	case errors.Is(err, apperrors.ErrResourceNotFound),
		errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrStudentNotFound),
		errors.Is(err, apperrors.ErrFacultyNotFound),
		errors.Is(err, apperrors.ErrDepartmentNotFound),
		errors.Is(err, apperrors.ErrCourseNotFound),
		errors.Is(err, apperrors.ErrEnrollmentNotFound),
		errors.Is(err, apperrors.ErrAttendanceNotFound),
		errors.Is(err, apperrors.ErrFeeNotFound),
		errors.Is(err, apperrors.ErrBookNotFound),
		errors.Is(err, apperrors.ErrBorrowNotFound),
		errors.Is(err, apperrors.ErrNoticeNotFound),
		errors.Is(err, apperrors.ErrTimetableNotFound):
		respond(c, http.StatusNotFound, dto.ErrorCodeResourceNotFound, err.Error())

	// Rate limiting
	case errors.Is(err, apperrors.ErrRateLimited):
		respond(c, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "Too many requests")

	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		respond(c, http.StatusInternalServerError, dto.ErrorCodeInternalServer, "An internal error occurred")
	}
}

func respond(c *gin.Context, status int, code dto.ErrorCode, message string) {
	c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// HandleValidationError maps gin binding failures to the envelope. Field
// errors from the validator are flattened to readable per-field messages.
func HandleValidationError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, formatFieldError(fe))
		}
		errorDetail = errorDetail.WithDetails(messages)
	} else {
		errorDetail = errorDetail.WithDetails(err.Error())
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
