package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test_jwt_secret")

func TestParseToken(t *testing.T) {
	token, err := NewToken(secret, "user-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["user_id"])
	assert.Equal(t, RoleAdmin, claims["role"])

	_, err = ParseToken([]byte("other-secret"), token)
	assert.Error(t, err)

	expired, err := NewToken(secret, "user-1", "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(secret, expired)
	assert.Error(t, err)

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = ParseToken(secret, anonymous)
	assert.EqualError(t, err, "token carries no user_id")
}

func TestAuthRequiredAndAdminOnly(t *testing.T) {
	app := fiber.New()
	app.Use(AuthRequired(secret, nil))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})
	app.Get("/admin", AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	customer, err := NewToken(secret, "user-7", "customer", time.Hour)
	require.NoError(t, err)
	admin, err := NewToken(secret, "admin-1", RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic abc", http.StatusUnauthorized},
		{"customer", "/me", "Bearer " + customer, http.StatusOK},
		{"customer on admin route", "/admin", "Bearer " + customer, http.StatusForbidden},
		{"admin", "/admin", "Bearer " + admin, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
