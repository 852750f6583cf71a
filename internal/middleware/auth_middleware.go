package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/app/scope"
	"github.com/emre/campuserp/internal/pkg/apperrors"
	"github.com/emre/campuserp/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextScope  = "scope"
)

// AuthMiddleware handles authentication and per-request scope resolution
type AuthMiddleware struct {
	jwtService    *auth.JWTService
	userRepo      *repositories.UserRepository
	scopeResolver *scope.Resolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, userRepo *repositories.UserRepository, scopeResolver *scope.Resolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		userRepo:      userRepo,
		scopeResolver: scopeResolver,
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
		dto.NewErrorDetail(code, message)))
}

// JWTAuth validates the bearer token, checks the account is still active
// and stores the identity in the gin context.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			var err error
			tokenString, err = auth.ExtractBearerToken(authHeader)
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid authorization header")
				return
			}
		} else if cookie, err := c.Cookie("token"); err == nil {
			// httpOnly cookie set at login is the alternate transport
			tokenString = cookie
		} else {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		// Revocation and deactivation must take effect before token expiry
		user, err := m.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Account no longer exists")
			return
		}
		if !user.IsActive() {
			abortUnauthorized(c, dto.ErrorCodeAccountDisabled, "Account is disabled")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextEmail, user.Email)
		c.Set(ContextRole, string(user.Role))
		c.Next()
	}
}

// RoleRequired allows only the named roles past
func (m *AuthMiddleware) RoleRequired(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[string(r)] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")))
			return
		}
		c.Next()
	}
}

// ResolveScope computes the caller's role scope once per request and stores
// it in the gin context. A student or faculty identity without a profile
// row fails closed.
func (m *AuthMiddleware) ResolveScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64(ContextUserID)
		role := models.Role(c.GetString(ContextRole))

		sc, err := m.scopeResolver.Resolve(c.Request.Context(), userID, role)
		if err != nil {
			if errors.Is(err, apperrors.ErrProfileNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
					dto.NewErrorDetail(dto.ErrorCodeForbidden, "No profile for this account")))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(
				dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Failed to resolve access scope")))
			return
		}

		c.Set(ContextScope, sc)
		c.Next()
	}
}

// GetScope fetches the resolved scope from the gin context
func GetScope(c *gin.Context) scope.Scope {
	value, ok := c.Get(ContextScope)
	if !ok {
		return scope.Scope{}
	}
	sc, _ := value.(scope.Scope)
	return sc
}
