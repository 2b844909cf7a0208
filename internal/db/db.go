package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mdsq/internal/model"
)

// gormConfig routes GORM's log output through the global zap logger, so
// callers should install theirs with zap.ReplaceGlobals before opening.
func gormConfig() *gorm.Config {
	gormLogger := logger.New(
		zap.NewStdLog(zap.L().Named("gorm")),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true, // existence pre-checks miss routinely
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)

	return &gorm.Config{
		// unique-index violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         gormLogger,
	}
}

// Open returns a connected GORM DB for the configured driver.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "mysql":
		return NewMySQL(dsn)
	case "postgres":
		return NewPostgres(dsn)
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// NewMySQL returns a connected GORM DB instance.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// NewPostgres returns a connected GORM DB instance.
func NewPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// NewSQLite opens a SQLite database. In-memory databases are pinned to a single
// connection, otherwise every pooled connection would see its own empty schema.
func NewSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Models lists every table in creation order; referenced tables come first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Label{},
		&model.Member{},
		&model.Ministry{},
		&model.Team{},
		&model.TeamMember{},
		&model.Service{},
		&model.ServicePlanItem{},
		&model.ServiceAssignment{},
		&model.Attendance{},
	}
}

// Migrate creates or updates the schema.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, dependents first.
func Reset(db *gorm.DB) error {
	models := Models()
	tables := make([]interface{}, 0, len(models)+1)
	tables = append(tables, model.MemberLabelsTable)
	for i := len(models) - 1; i >= 0; i-- {
		tables = append(tables, models[i])
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
