package http_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oalvocuritiba/kg-do-amor-api/internal/domain/entity"
	apphttp "github.com/oalvocuritiba/kg-do-amor-api/internal/interfaces/http"
	"github.com/oalvocuritiba/kg-do-amor-api/pkg/jwt"
)

const testSecret = "segredo-de-teste"

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp monta um app Fiber mínimo com as rotas protegidas usadas
// nos testes, sem tocar em banco.
func buildTestApp() *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})

	auth := apphttp.AuthMiddleware(testSecret)

	app.Get("/protegida", auth, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/admin", auth, apphttp.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/qualquer-papel", auth, apphttp.RequireRole(entity.RoleAdmin, entity.RoleVoluntario), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/quem-sou-eu", auth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"papel":   apphttp.GetRole(c),
		})
	})
	return app
}

// tokenForRole emite um token válido para o papel informado.
func tokenForRole(t *testing.T, userID int64, role string) string {
	t.Helper()
	token, err := jwt.Generate(testSecret, userID, role, "kg-do-amor-test", 5)
	require.NoError(t, err, "gerar token de teste não pode falhar")
	return token
}

// doRequest executa uma requisição GET com o header Authorization informado.
func doRequest(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// ──────────────────────────────────────────────────────────────────────────────
// AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValidoPassa(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 1, entity.RoleVoluntario)

	status, _ := doRequest(t, app, "/protegida", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAuthMiddleware_SemHeaderRetorna401(t *testing.T) {
	app := buildTestApp()

	status, body := doRequest(t, app, "/protegida", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalidoRetorna401(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 1, entity.RoleAdmin)

	// Sem o prefixo Bearer.
	status, body := doRequest(t, app, "/protegida", token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddleware_TokenAdulteradoRetorna401(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 1, entity.RoleAdmin)

	status, body := doRequest(t, app, "/protegida", "Bearer "+token+"x")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddleware_AssinaturaDeOutroSecretRetorna401(t *testing.T) {
	app := buildTestApp()
	token, err := jwt.Generate("outro-secret", 1, entity.RoleAdmin, "kg-do-amor-test", 5)
	require.NoError(t, err)

	status, _ := doRequest(t, app, "/protegida", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAuthMiddleware_GravaUserIDEPapelNoContexto(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 77, entity.RoleAdmin)

	status, body := doRequest(t, app, "/quem-sou-eu", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"user_id":77`)
	assert.Contains(t, body, `"papel":"ADMIN"`)
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAcessaRotaAdmin(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 1, entity.RoleAdmin)

	status, _ := doRequest(t, app, "/admin", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequireRole_VoluntarioBarradoEmRotaAdmin(t *testing.T) {
	app := buildTestApp()
	token := tokenForRole(t, 2, entity.RoleVoluntario)

	status, body := doRequest(t, app, "/admin", "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Contains(t, body, "FORBIDDEN")
}

func TestRequireRole_QualquerPapelListadoPassa(t *testing.T) {
	app := buildTestApp()

	for _, role := range []string{entity.RoleAdmin, entity.RoleVoluntario} {
		token := tokenForRole(t, 3, role)
		status, _ := doRequest(t, app, "/qualquer-papel", "Bearer "+token)
		assert.Equal(t, fiber.StatusOK, status, "papel %s deveria acessar a rota", role)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// pkg/jwt
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GeraEValidaRoundTrip(t *testing.T) {
	token, err := jwt.Generate(testSecret, 42, entity.RoleVoluntario, "kg-do-amor-test", 5)
	require.NoError(t, err)

	userID, role, err := jwt.Parse(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, entity.RoleVoluntario, role)
}

func TestJWT_TokenExpiradoFalha(t *testing.T) {
	token, err := jwt.Generate(testSecret, 42, entity.RoleAdmin, "kg-do-amor-test", -1)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, _, err = jwt.Parse(testSecret, token)
	assert.Error(t, err, "token com expiração no passado deve ser rejeitado")
}
