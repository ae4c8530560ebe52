// Package testutil holds helpers shared by the handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// OpenTestDB opens an isolated in-memory sqlite database and migrates it.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := "mem_" + uuid.NewString()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection: concurrent readers queue instead of hitting shared-cache locks
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// InjectAuth puts the auth locals into the Fiber context, standing in for
// the JWT middleware.
func InjectAuth(userID uuid.UUID, role models.Role) fiber.Handler {
	id := userID.String()
	return func(c *fiber.Ctx) error {
		c.Locals("userID", id)
		c.Locals("role", string(role))
		return c.Next()
	}
}

// SeedUser inserts an active user with the given role.
func SeedUser(t *testing.T, db *gorm.DB, role models.Role, name string) models.User {
	t.Helper()
	u := models.User{
		Email:        string(role) + "_" + uuid.NewString()[:8] + "@council.test",
		PasswordHash: "x",
		Role:         role,
		Name:         name,
		Active:       true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// JSON performs a request against app with an optional JSON body.
func JSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	return JSONAs(t, app, "", method, path, body)
}

// JSONAs is JSON with a bearer token; an empty token sends no header.
func JSONAs(t *testing.T, app *fiber.App, token, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Decode reads a JSON response body into out.
func Decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}
