package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emre/campuserp/internal/app/audit"
	"github.com/emre/campuserp/internal/app/models/dto"
	"github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/middleware"
)

// Cookie names for the alternate auth transport. Both are httpOnly; the
// Authorization header takes precedence when present.
const (
	accessTokenCookie  = "token"
	refreshTokenCookie = "refreshToken"
)

// AuthController handles registration, login and account self-service
type AuthController struct {
	authService   *services.AuthService
	secureCookies bool
	logger        zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, secureCookies bool, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService:   authService,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

func (c *AuthController) setAuthCookies(ctx *gin.Context, token dto.TokenResponse) {
	ctx.SetCookie(accessTokenCookie, token.AccessToken, token.ExpiresIn, "/", "", c.secureCookies, true)
	ctx.SetCookie(refreshTokenCookie, token.RefreshToken, token.RefreshTokenExpiresIn, "/", "", c.secureCookies, true)
}

func (c *AuthController) clearAuthCookies(ctx *gin.Context) {
	ctx.SetCookie(accessTokenCookie, "", -1, "/", "", c.secureCookies, true)
	ctx.SetCookie(refreshTokenCookie, "", -1, "/", "", c.secureCookies, true)
}

// refreshTokenFrom reads the refresh token from the JSON body, falling back
// to the httpOnly cookie set at login.
func refreshTokenFrom(ctx *gin.Context) string {
	var req dto.RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := ctx.Cookie(refreshTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Register creates a student or faculty account pending email verification
// and signs the new user in
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.authService.Register(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Str("email", resp.User.Email).Str("role", string(resp.User.Role)).Msg("User registered")
	c.setAuthCookies(ctx, resp.Token)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp, "Registration successful, please verify your email"))
}

// Login authenticates a user and issues a token pair
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	resp, err := c.authService.Login(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, resp.Token)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Login successful"))
}

// RefreshToken exchanges a refresh token for a fresh token pair
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	refreshToken := refreshTokenFrom(ctx)
	if refreshToken == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Refresh token is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	resp, err := c.authService.RefreshToken(ctx, refreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.setAuthCookies(ctx, resp.Token)
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Token refreshed"))
}

// Logout revokes the presented refresh token and clears the auth cookies
func (c *AuthController) Logout(ctx *gin.Context) {
	refreshToken := refreshTokenFrom(ctx)
	if refreshToken == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Refresh token is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	c.clearAuthCookies(ctx)
	if err := c.authService.Logout(ctx, refreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Logged out"))
}

// VerifyEmail confirms an email address with the token from the
// verification link
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Verification token is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	if err := c.authService.VerifyEmail(ctx, token); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Email verified"))
}

// ResendVerification sends a fresh verification email
func (c *AuthController) ResendVerification(ctx *gin.Context) {
	var req dto.ResendVerificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ResendVerification(ctx, req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Verification email sent"))
}

// ForgotPassword starts the password reset flow. The response does not
// reveal whether the address exists.
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ForgotPassword(ctx, req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "If the email exists, a reset link has been sent"))
}

// ResetPassword completes the password reset flow
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.authService.ResetPassword(ctx, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password reset successful"))
}

// GetProfile returns the authenticated user with their role profile
func (c *AuthController) GetProfile(ctx *gin.Context) {
	userID := ctx.GetInt64(middleware.ContextUserID)

	resp, err := c.authService.GetProfile(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, "Profile retrieved"))
}

// UpdateProfile updates the authenticated user's name fields
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	userID := ctx.GetInt64(middleware.ContextUserID)
	user, err := c.authService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "profile.update", "user", userID, "Updated own profile")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(user, "Profile updated"))
}

// ChangePassword changes the authenticated user's password and revokes
// all refresh tokens
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	userID := ctx.GetInt64(middleware.ContextUserID)
	if err := c.authService.ChangePassword(ctx, userID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	audit.Set(ctx, "password.change", "user", userID, "Changed own password")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Password changed"))
}
