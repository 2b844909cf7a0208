package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"mdsq/internal/config"
	"mdsq/internal/db"
	"mdsq/internal/logging"
	"mdsq/internal/repository"
	"mdsq/internal/service"
)

// seed creates or repairs the rescue administrator so someone can always log in.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	logger.Info("starting seed script")

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	seedService := service.NewSeedService(repository.NewStore(gormDB), logger)
	member, err := seedService.EnsureAdmin(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		logger.Fatal("failed to seed admin", zap.Error(err))
	}

	logger.Info("seed completed successfully",
		zap.String("email", cfg.SeedAdminEmail),
		zap.String("member_id", member.ID.String()),
		zap.String("church_role", member.ChurchRole),
	)
}
