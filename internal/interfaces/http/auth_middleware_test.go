package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturation-api/internal/domain/entity"
	"github.com/facturio/facturation-api/pkg/jwt"
)

const testSecret = "secret-de-test-0123456789"

func appProtege(t *testing.T, handlers ...fiber.Handler) *fiber.App {
	t.Helper()
	app := fiber.New()
	chain := append([]fiber.Handler{AuthMiddleware(testSecret)}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":    GetUserID(c),
			"company_id": GetCompanyID(c),
			"role":       GetRole(c),
		})
	})
	app.Get("/protege", chain...)
	return app
}

func TestAuthMiddleware_SansEntete(t *testing.T) {
	app := appProtege(t)
	req := httptest.NewRequest("GET", "/protege", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FormatInvalide(t *testing.T) {
	app := appProtege(t)
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Basic abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalide(t *testing.T) {
	app := appProtege(t)
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Bearer pas-un-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_MauvaisSecret(t *testing.T) {
	token, err := jwt.Generate("autre-secret", "u1", "c1", entity.RoleAdmin, "facturio", 60)
	require.NoError(t, err)

	app := appProtege(t)
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValide(t *testing.T) {
	token, err := jwt.Generate(testSecret, "u1", "c1", entity.RoleCommercial, "facturio", 60)
	require.NoError(t, err)

	app := appProtege(t)
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole_RoleInsuffisant(t *testing.T) {
	token, err := jwt.Generate(testSecret, "u1", "c1", entity.RoleCommercial, "facturio", 60)
	require.NoError(t, err)

	app := appProtege(t, RequireRole(entity.RoleAdmin, entity.RoleComptable))
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireRole_RoleAutorise(t *testing.T) {
	token, err := jwt.Generate(testSecret, "u1", "c1", entity.RoleComptable, "facturio", 60)
	require.NoError(t, err)

	app := appProtege(t, RequireRole(entity.RoleAdmin, entity.RoleComptable))
	req := httptest.NewRequest("GET", "/protege", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
