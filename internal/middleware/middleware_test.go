package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/auth"
	"github.com/emre/campuserp/internal/pkg/ratelimit"
)

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRoleRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := &AuthMiddleware{}

	tests := []struct {
		name    string
		allowed []models.Role
		role    string
		status  int
	}{
		{"matching role passes", []models.Role{models.RoleAdmin}, string(models.RoleAdmin), http.StatusOK},
		{"one of several passes", []models.Role{models.RoleAdmin, models.RoleFaculty}, string(models.RoleFaculty), http.StatusOK},
		{"other role rejected", []models.Role{models.RoleAdmin}, string(models.RoleStudent), http.StatusForbidden},
		{"missing role rejected", []models.Role{models.RoleAdmin}, "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(ContextRole, tt.role)
				}
			})
			router.GET("/", m.RoleRequired(tt.allowed...), okHandler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := ratelimit.NewMemoryStore()

	router := gin.New()
	router.GET("/", RateLimit(store, "test", 2, time.Minute), okHandler)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrorCodeRateLimited, resp.Error.Code)
}

func TestRateLimitKeysByPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := ratelimit.NewMemoryStore()

	router := gin.New()
	router.GET("/a", RateLimit(store, "a", 1, time.Minute), okHandler)
	router.GET("/b", RateLimit(store, "b", 1, time.Minute), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Exhausting one prefix must not affect the other.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/a", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/b", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetScopeDefaultsToNone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	sc := GetScope(c)
	assert.Equal(t, scope.KindNone, sc.Kind)
}

func TestGetScopeRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(ContextScope, scope.Scope{Kind: scope.KindStudent, UserID: 5, StudentID: 9})

	sc := GetScope(c)
	assert.Equal(t, scope.KindStudent, sc.Kind)
	assert.Equal(t, int64(9), sc.StudentID)
}

func authError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

// Token extraction order: Authorization header first, then the httpOnly
// cookie set at login. The token here is garbage on purpose so the request
// stops at validation, proving which transport was read.
func TestJWTAuthTokenSources(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key-for-unit-tests",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "campuserp-test",
	}), nil, nil)

	router := gin.New()
	router.GET("/", m.JWTAuth(), okHandler)

	t.Run("no credentials", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, authError(t, w).Code)
	})

	t.Run("cookie is read when header absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", authError(t, w).Message)
	})

	t.Run("malformed header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		req.AddCookie(&http.Cookie{Name: "token", Value: "not-a-jwt"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid authorization header", authError(t, w).Message)
	})
}
