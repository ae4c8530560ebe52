// Package server wires every handler onto one fiber app.
package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/config"
	"github.com/aldoetobex/council-case-backend/internal/admin"
	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/cases"
	"github.com/aldoetobex/council-case-backend/internal/schedule"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
)

// Collections maps each case kind to its route prefix under /api.
var Collections = map[models.CaseKind]string{
	models.KindReconciliation: "/reconciliations",
	models.KindMarriage:       "/marriages",
	models.KindFatwa:          "/fatwas",
}

// New builds the app. cfg only supplies CORS origins and the schedule timezone.
func New(db *gorm.DB, cfg *config.Config) *fiber.App {
	loc := cfg.Location()

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
		AppName:      "council-case-backend",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLog)

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	api := app.Group("/api")

	// Auth
	authH := auth.NewHandler(db)
	api.Post("/signup", authH.Signup)
	api.Post("/login", authH.Login)
	api.Get("/me", auth.RequireAuth(), authH.Me)

	// Cases, one collection per kind
	for _, kind := range []models.CaseKind{models.KindReconciliation, models.KindMarriage, models.KindFatwa} {
		cases.NewHandler(db, kind, loc).Register(api.Group(Collections[kind], auth.RequireAuth()))
	}

	// Admin
	admin.NewHandler(db, loc).Register(
		api.Group("/admin", auth.RequireAuth(), auth.RequireRole(models.RoleAdmin)))

	// Schedule
	schedule.NewHandler(db, loc).Register(
		api.Group("/schedule", auth.RequireAuth(), auth.RequireRole(models.RoleAdmin, models.RoleShaykh)))

	return app
}

func requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logger.Log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)))
	return err
}
