package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

// Config holds application level configuration loaded from environment variables
// and, when CONFIG_FILE is set, a YAML file whose values env vars override.
type Config struct {
	ServerPort  string `yaml:"server_port" env:"SERVER_PORT" env-default:"8080"`
	Environment string `yaml:"environment" env:"ENVIRONMENT" env-default:"production"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// DBDriver selects the gorm dialector: mysql, postgres or sqlite.
	DBDriver    string `yaml:"db_driver" env:"DB_DRIVER" env-default:"mysql"`
	DatabaseDSN string `yaml:"-" env:"DATABASE_DSN" env-default:"user:password@tcp(localhost:3306)/mdsq?charset=utf8mb4&parseTime=True&loc=Local"`
	ResetDB     bool   `yaml:"reset_db" env:"RESET_DB" env-default:"false"`

	RedisAddr string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisDB   int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	RedisPass string `yaml:"-" env:"REDIS_PASSWORD"`

	JWTSecret string `yaml:"-" env:"JWT_SECRET" env-default:"change-me"`

	// AuthMode is "jwt" (role read from the bearer token) or "header" (role read
	// from X-User-Role, for deployments behind a trusted gateway).
	AuthMode string `yaml:"auth_mode" env:"AUTH_MODE" env-default:"jwt"`

	SwaggerHost      string   `yaml:"swagger_host" env:"SWAGGER_HOST"`
	CORSAllowOrigins []string `yaml:"cors_allow_origins" env:"CORS_ALLOW_ORIGINS" env-separator:"," env-default:"*"`

	AttendanceRecentLimit int `yaml:"attendance_recent_limit" env:"ATTENDANCE_RECENT_LIMIT" env-default:"20"`

	SeedAdminEmail    string `yaml:"seed_admin_email" env:"SEED_ADMIN_EMAIL" env-default:"admin@mdsq.com"`
	SeedAdminPassword string `yaml:"-" env:"SEED_ADMIN_PASSWORD" env-default:"admin123"`
}

// Load builds Config from .env, an optional YAML file and the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.AuthMode {
	case "jwt", "header":
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}
	if c.JWTSecret == defaultJWTSecret && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	if c.AttendanceRecentLimit <= 0 {
		c.AttendanceRecentLimit = 20
	}
	return nil
}

// IsDevelopment reports whether the process runs in a local/dev environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}
