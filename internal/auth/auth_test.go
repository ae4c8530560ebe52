package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aldoetobex/council-case-backend/internal/testutil"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	db := testutil.OpenTestDB(t)
	h := NewHandler(db)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/api/signup", h.Signup)
	app.Post("/api/login", h.Login)
	app.Get("/api/me", RequireAuth(), h.Me)
	app.Get("/api/admin-only", RequireAuth(), RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	return app, h
}

func TestSignupLoginMe(t *testing.T) {
	app, _ := newTestApp(t)

	resp := testutil.JSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"name": "Aisha", "email": " Aisha@Example.com ", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var signed AuthResponse
	testutil.Decode(t, resp, &signed)
	assert.Equal(t, models.RoleUser, signed.Role)
	assert.Equal(t, "aisha@example.com", signed.User.Email)

	resp = testutil.JSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"name": "Aisha", "email": "aisha@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = testutil.JSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "aisha@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = testutil.JSON(t, app, http.MethodPost, "/api/login", fiber.Map{
		"email": "aisha@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logged AuthResponse
	testutil.Decode(t, resp, &logged)
	require.NotEmpty(t, logged.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me UserProfile
	testutil.Decode(t, resp, &me)
	assert.Equal(t, signed.User.ID, me.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+logged.Token)
	resp, _ = app.Test(req, -1)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var body models.ErrorResponse
	testutil.Decode(t, resp, &body)
	assert.Equal(t, "FORBIDDEN", body.Code)
}

func TestSignup_Validation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := testutil.JSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"name": "A", "email": "not-an-email", "password": "123",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out models.ValidationErrorResponse
	testutil.Decode(t, resp, &out)
	assert.Contains(t, out.Errors, "email")
	assert.Contains(t, out.Errors, "password")
	assert.Contains(t, out.Errors, "name")
}

func TestRequireAuth_RejectsGarbage(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := IssueToken("abc", models.RoleShaykh)
	require.NoError(t, err)
	claims, err := ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.Sub)
	assert.Equal(t, "shaykh", claims.Role)
}

func TestEnsureAdmin(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.Log
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })

	db := testutil.OpenTestDB(t)
	require.NoError(t, EnsureAdmin(db, "Root@Council.org", "pw123456"))
	require.NoError(t, EnsureAdmin(db, "root@council.org", "pw123456"))

	var n int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&n)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, logs.FilterMessage("bootstrap admin root@council.org created").Len())

	require.NoError(t, EnsureAdmin(db, "", ""))
}
