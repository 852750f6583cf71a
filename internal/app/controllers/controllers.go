package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/models/dto"
)

// parseIDParam reads a positive int64 path parameter. On failure it writes
// the validation envelope and returns false; the handler must return.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		errorDetail = errorDetail.WithDetails(name + " must be a positive number")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// queryInt64 reads an optional int64 query parameter, zero when absent
func queryInt64(c *gin.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.Query(name), 10, 64)
	return v
}

// queryInt reads an optional int query parameter, zero when absent
func queryInt(c *gin.Context, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}

// queryDate reads an optional YYYY-MM-DD query parameter, zero time when
// absent or malformed
func queryDate(c *gin.Context, name string) time.Time {
	t, _ := time.Parse("2006-01-02", c.Query(name))
	return t
}
