package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emre/campuserp/internal/app/models/dto"
)

func testGinContext(t *testing.T, req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = req
	return ctx, w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSetAuthCookies(t *testing.T) {
	ctx, w := testGinContext(t, httptest.NewRequest(http.MethodPost, "/login", nil))
	c := NewAuthController(nil, false, zerolog.Nop())

	c.setAuthCookies(ctx, dto.TokenResponse{
		AccessToken:           "access-token",
		ExpiresIn:             900,
		RefreshToken:          "refresh-token",
		RefreshTokenExpiresIn: 604800,
	})

	access := cookieByName(t, w, "token")
	assert.Equal(t, "access-token", access.Value)
	assert.Equal(t, 900, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)

	refresh := cookieByName(t, w, "refreshToken")
	assert.Equal(t, "refresh-token", refresh.Value)
	assert.Equal(t, 604800, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
}

func TestSetAuthCookiesSecureInProduction(t *testing.T) {
	ctx, w := testGinContext(t, httptest.NewRequest(http.MethodPost, "/login", nil))
	c := NewAuthController(nil, true, zerolog.Nop())

	c.setAuthCookies(ctx, dto.TokenResponse{AccessToken: "a", RefreshToken: "r"})

	assert.True(t, cookieByName(t, w, "token").Secure)
	assert.True(t, cookieByName(t, w, "refreshToken").Secure)
}

func TestClearAuthCookies(t *testing.T) {
	ctx, w := testGinContext(t, httptest.NewRequest(http.MethodPost, "/logout", nil))
	c := NewAuthController(nil, false, zerolog.Nop())

	c.clearAuthCookies(ctx)

	for _, name := range []string{"token", "refreshToken"} {
		cookie := cookieByName(t, w, name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge, "expired cookie must carry a negative max age")
	}
}

func TestRefreshTokenFromBodyTakesPrecedence(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/refresh",
		strings.NewReader(`{"refreshToken":"from-body"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})
	ctx, _ := testGinContext(t, req)

	assert.Equal(t, "from-body", refreshTokenFrom(ctx))
}

func TestRefreshTokenFromCookieFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "from-cookie"})
	ctx, _ := testGinContext(t, req)

	assert.Equal(t, "from-cookie", refreshTokenFrom(ctx))
}

func TestRefreshTokenFromNothing(t *testing.T) {
	ctx, _ := testGinContext(t, httptest.NewRequest(http.MethodPost, "/refresh", nil))
	require.Empty(t, refreshTokenFrom(ctx))
}
