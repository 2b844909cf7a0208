package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"mdsq/internal/cache"
	"mdsq/internal/db"
)

const (
	// MySQLImage is the server version the schema targets.
	MySQLImage = "mysql:8.0"
	RedisImage = "redis:7-alpine"
)

// TestMySQL holds a shared MySQL container and a migrated connection.
type TestMySQL struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

var (
	sharedMySQL     *TestMySQL
	sharedMySQLOnce sync.Once
	sharedMySQLErr  error

	sharedRedis     *TestRedis
	sharedRedisOnce sync.Once
	sharedRedisErr  error
)

// GetTestMySQL returns a MySQL container shared by every test in the run,
// with the schema migrated. Skipped under -short since it needs Docker.
func GetTestMySQL(t *testing.T) *TestMySQL {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedMySQLOnce.Do(func() {
		sharedMySQL, sharedMySQLErr = setupMySQL()
	})

	if sharedMySQLErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedMySQLErr)
	}
	return sharedMySQL
}

func setupMySQL() (*TestMySQL, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        MySQLImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "root",
			"MYSQL_DATABASE":      "mdsq_test",
			"MYSQL_USER":          "mdsq",
			"MYSQL_PASSWORD":      "test_password",
		},
		// the entrypoint starts a temporary server first; the second line is the real one
		WaitingFor: wait.ForLog("ready for connections").
			WithOccurrence(2).
			WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	dsn := fmt.Sprintf("mdsq:test_password@tcp(%s:%s)/mdsq_test?charset=utf8mb4&parseTime=True&loc=Local",
		host, port.Port())

	var gormDB *gorm.DB
	for i := 0; i < 10; i++ {
		if gormDB, err = db.NewMySQL(dsn); err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := db.Migrate(gormDB); err != nil {
		return nil, err
	}

	return &TestMySQL{Container: container, DB: gormDB, DSN: dsn}, nil
}

// TestRedis holds a shared Redis container and a cache client bound to it.
type TestRedis struct {
	Container testcontainers.Container
	Cache     *cache.Client
	Addr      string
}

// GetTestRedis returns a Redis container shared by every test in the run.
// Skipped under -short since it needs Docker.
func GetTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedRedisOnce.Do(func() {
		sharedRedis, sharedRedisErr = setupRedis()
	})

	if sharedRedisErr != nil {
		t.Fatalf("Failed to setup test redis: %v", sharedRedisErr)
	}
	return sharedRedis
}

func setupRedis() (*TestRedis, error) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        RedisImage,
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start redis container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port.Port())
	client := cache.New(addr, "", 0)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &TestRedis{Container: container, Cache: client, Addr: addr}, nil
}
