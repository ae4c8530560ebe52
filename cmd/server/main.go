// @title           Council Case API
// @version         1.0
// @description     Case management for a religious council: reconciliation, marriage and fatwa requests, shaykh assignment, meetings and the shared meeting calendar.
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/aldoetobex/council-case-backend/config"
	_ "github.com/aldoetobex/council-case-backend/docs"
	"github.com/aldoetobex/council-case-backend/internal/auth"
	"github.com/aldoetobex/council-case-backend/internal/server"
	"github.com/aldoetobex/council-case-backend/pkg/database"
	"github.com/aldoetobex/council-case-backend/pkg/logger"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Environment, cfg.Debug); err != nil {
		log.Fatal("logger init failed:", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("migration failed", zap.Error(err))
	}

	auth.Configure(cfg.JWTSecret, cfg.JWTTTL)
	if err := auth.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Log.Fatal("bootstrap admin failed", zap.Error(err))
	}

	app := server.New(db, cfg)

	logger.SLog.Infof("swagger UI at http://localhost:%s/swagger/index.html", cfg.Port)
	logger.Log.Info("server running",
		zap.String("port", cfg.Port), zap.String("env", cfg.Environment), zap.String("timezone", cfg.Timezone))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server stopped", zap.Error(err))
	}
}
