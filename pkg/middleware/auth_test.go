package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scheme-saathi/pkg/auth"
)

func newTestApp(t *testing.T) (*fiber.App, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	logger := zap.NewNop()

	app := fiber.New()
	app.Get("/protected", AuthMiddleware(jwtManager, logger), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string))
	})
	app.Get("/optional", OptionalAuthMiddleware(jwtManager, logger), func(c *fiber.Ctx) error {
		if userID, ok := c.Locals("userID").(string); ok {
			return c.SendString(userID)
		}
		return c.SendString("anonymous")
	})
	return app, jwtManager
}

func TestAuthMiddleware(t *testing.T) {
	app, jwtManager := newTestApp(t)

	token, err := jwtManager.GenerateToken("user-123", "asha", "asha@example.com")
	require.NoError(t, err)

	t.Run("valid token passes identity through", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret rejected", func(t *testing.T) {
		other := auth.NewJWTManager("other-secret", time.Hour, 24*time.Hour)
		forged, err := other.GenerateToken("user-123", "asha", "asha@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	app, jwtManager := newTestApp(t)

	t.Run("anonymous request passes", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/optional", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("invalid token still passes as anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/optional", nil)
		req.Header.Set("Authorization", "Bearer junk")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		token, err := jwtManager.GenerateToken("user-456", "ravi", "ravi@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/optional", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
