package pgkv

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/odontoforense/internal/config"
	"github.com/bigkaa/odontoforense/internal/database"
	"github.com/bigkaa/odontoforense/internal/kv/kvtest"
)

// TestStore_Contract проверяет контракт backend на реальном PostgreSQL.
func TestStore_Contract(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("odontoforense_test"),
		postgres.WithUsername("odontoforense"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, _ := container.Host(ctx)
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	cfg := &config.Config{
		StoreDriver: config.DriverPostgres,
		DBHost:      host,
		DBPort:      port.Int(),
		DBName:      "odontoforense_test",
		DBUser:      "odontoforense",
		DBPassword:  "test-password",
		DBSSLMode:   "disable",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	pool, err := database.Open(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer pool.Close()

	kvtest.RunContract(t, New(pool))
}
