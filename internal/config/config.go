// Пакет config — загрузка и валидация конфигурации odontoforense
// из переменных окружения (префикс OF_).
// Перед чтением переменных подгружается необязательный .env файл.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые значения OF_BACKEND.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Допустимые значения OF_STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
)

// Config содержит все параметры конфигурации сервера и CLI.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// --- Слой данных ---

	// Backend — реализация репозиториев: local (хранилище) или remote (REST API)
	Backend string
	// StoreDriver — durable key-value backend локального хранилища
	StoreDriver string
	// StoreDir — директория для драйвера file
	StoreDir string
	// SQLitePath — путь к файлу БД для драйвера sqlite
	SQLitePath string
	// KeyPrefix — префикс ключей коллекций
	KeyPrefix string
	// SeedDemo — использовать демонстрационные данные как значения по умолчанию
	SeedDemo bool
	// SimulatedLatency — искусственная задержка операций локального хранилища
	SimulatedLatency time.Duration
	// EnforceReferences — проверка ссылочной целостности при записи
	EnforceReferences bool

	// --- PostgreSQL (драйвер postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// --- S3 (драйвер s3) ---

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool

	// --- Удалённый API (backend remote) ---

	// APIURL — базовый URL REST API
	APIURL string
	// APITimeout — таймаут HTTP-запросов к API
	APITimeout time.Duration
	// SessionFile — файл с токеном сессии CLI
	SessionFile string

	// --- Аутентификация ---

	// JWTSecret — HMAC-секрет для выпуска и проверки токенов
	JWTSecret string
	// JWTTTL — время жизни выпущенного токена
	JWTTTL time.Duration
	// JWTJWKSURL — JWKS endpoint; если задан, токены проверяются по JWKS (RS256)
	JWTJWKSURL string
	// JWTLeeway — допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// NotificationsBuffer — размер буфера последних уведомлений
	NotificationsBuffer int

	// --- topologymetrics ---

	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
func Load() (*Config, error) {
	// .env необязателен: отсутствие файла не является ошибкой
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("OF_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("OF_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("OF_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("OF_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("OF_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("OF_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("OF_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("OF_HTTP_READ_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("OF_HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("OF_HTTP_WRITE_TIMEOUT", 60*time.Second); err != nil {
		return nil, fmt.Errorf("OF_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("OF_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("OF_HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("OF_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, fmt.Errorf("OF_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- Слой данных ---

	cfg.Backend = strings.ToLower(getEnvDefault("OF_BACKEND", BackendLocal))
	if cfg.Backend != BackendLocal && cfg.Backend != BackendRemote {
		return nil, fmt.Errorf("OF_BACKEND: недопустимое значение %q, допустимые: local, remote", cfg.Backend)
	}

	cfg.StoreDriver = strings.ToLower(getEnvDefault("OF_STORE_DRIVER", DriverFile))
	switch cfg.StoreDriver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverS3:
	default:
		return nil, fmt.Errorf("OF_STORE_DRIVER: недопустимое значение %q, допустимые: memory, file, sqlite, postgres, s3", cfg.StoreDriver)
	}

	cfg.StoreDir = getEnvDefault("OF_STORE_DIR", "./data")
	cfg.SQLitePath = getEnvDefault("OF_STORE_SQLITE_PATH", "./data/odontoforense.db")
	cfg.KeyPrefix = getEnvDefault("OF_KEY_PREFIX", "odontoforense")

	if cfg.SeedDemo, err = getEnvBool("OF_SEED_DEMO", false); err != nil {
		return nil, fmt.Errorf("OF_SEED_DEMO: %w", err)
	}
	if cfg.SimulatedLatency, err = getEnvDuration("OF_SIMULATED_LATENCY", 0); err != nil {
		return nil, fmt.Errorf("OF_SIMULATED_LATENCY: %w", err)
	}
	if cfg.SimulatedLatency < 0 {
		return nil, fmt.Errorf("OF_SIMULATED_LATENCY: значение должно быть >= 0")
	}
	if cfg.EnforceReferences, err = getEnvBool("OF_ENFORCE_REFERENCES", false); err != nil {
		return nil, fmt.Errorf("OF_ENFORCE_REFERENCES: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost = getEnvDefault("OF_DB_HOST", "localhost")
	if cfg.DBPort, err = getEnvInt("OF_DB_PORT", 5432); err != nil {
		return nil, fmt.Errorf("OF_DB_PORT: %w", err)
	}
	cfg.DBName = getEnvDefault("OF_DB_NAME", "odontoforense")
	cfg.DBUser = getEnvDefault("OF_DB_USER", "odontoforense")
	cfg.DBPassword = os.Getenv("OF_DB_PASSWORD")
	cfg.DBSSLMode = getEnvDefault("OF_DB_SSL_MODE", "disable")
	if cfg.StoreDriver == DriverPostgres && cfg.DBPassword == "" {
		return nil, fmt.Errorf("OF_DB_PASSWORD: обязательна для драйвера postgres")
	}

	// --- S3 ---

	cfg.S3Bucket = os.Getenv("OF_S3_BUCKET")
	cfg.S3Region = getEnvDefault("OF_S3_REGION", "us-east-1")
	cfg.S3Endpoint = os.Getenv("OF_S3_ENDPOINT")
	cfg.S3Prefix = os.Getenv("OF_S3_PREFIX")
	if cfg.S3PathStyle, err = getEnvBool("OF_S3_PATH_STYLE", false); err != nil {
		return nil, fmt.Errorf("OF_S3_PATH_STYLE: %w", err)
	}
	if cfg.StoreDriver == DriverS3 && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("OF_S3_BUCKET: обязательна для драйвера s3")
	}

	// --- Удалённый API ---

	cfg.APIURL = strings.TrimRight(getEnvDefault("OF_API_URL", "http://localhost:8040"), "/")
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("OF_API_URL: некорректный URL %q", cfg.APIURL)
	}
	if cfg.APITimeout, err = getEnvDurationFallback("OF_API_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("OF_API_TIMEOUT: %w", err)
	}
	cfg.SessionFile = getEnvDefault("OF_SESSION_FILE", defaultSessionFile())

	// --- Аутентификация ---

	cfg.JWTSecret = os.Getenv("OF_JWT_SECRET")
	cfg.JWTJWKSURL = os.Getenv("OF_JWT_JWKS_URL")
	if cfg.JWTTTL, err = getEnvDurationFallback("OF_JWT_TTL", 8*time.Hour); err != nil {
		return nil, fmt.Errorf("OF_JWT_TTL: %w", err)
	}
	if cfg.JWTLeeway, err = getEnvDuration("OF_JWT_LEEWAY", 5*time.Second); err != nil {
		return nil, fmt.Errorf("OF_JWT_LEEWAY: %w", err)
	}

	if cfg.NotificationsBuffer, err = getEnvInt("OF_NOTIFICATIONS_BUFFER", 100); err != nil {
		return nil, fmt.Errorf("OF_NOTIFICATIONS_BUFFER: %w", err)
	}
	if cfg.NotificationsBuffer < 1 {
		return nil, fmt.Errorf("OF_NOTIFICATIONS_BUFFER: значение должно быть > 0")
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("OF_DEPHEALTH_GROUP", "odontoforense")
	if cfg.DephealthCheckInterval, err = getEnvDurationFallback("OF_DEPHEALTH_CHECK_INTERVAL", 15*time.Second); err != nil {
		return nil, fmt.Errorf("OF_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
}

// ValidateServer проверяет параметры, обязательные только для HTTP-сервера.
// CLI с backend=remote не выпускает токены и секрет ему не нужен.
// При заданном OF_JWT_JWKS_URL секрет необязателен: без него локальный
// вход и регистрация отключены, принимаются только токены IdP.
func (c *Config) ValidateServer() error {
	if c.JWTSecret == "" {
		if c.JWTJWKSURL != "" {
			return nil
		}
		return fmt.Errorf("OF_JWT_SECRET: обязательная переменная окружения не задана")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("OF_JWT_SECRET: секрет короче 16 символов")
	}
	return nil
}

// DatabaseURL возвращает URL подключения к PostgreSQL (формат postgres://).
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     fmt.Sprintf("%s:%d", c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// MigrationURL возвращает URL для golang-migrate (драйвер pgx5).
func (c *Config) MigrationURL() string {
	return "pgx5" + strings.TrimPrefix(c.DatabaseURL(), "postgres")
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// defaultSessionFile возвращает путь к файлу сессии в домашней директории.
func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".odontoforense-session"
	}
	return home + string(os.PathSeparator) + ".odontoforense-session"
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvDurationFallback возвращает time.Duration из переменной окружения.
// Если переменная не задана, используется fallbackVal.
// Если задана — парсится и валидируется (> 0).
func getEnvDurationFallback(key string, fallbackVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallbackVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
