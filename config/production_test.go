package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProductionConfig {
	return &ProductionConfig{
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     5432,
			Name:     "taskserial",
			User:     "postgres",
			Password: "secret",
		},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		Security: SecurityConfig{
			SerialRateLimit: 30,
			RateLimitWindow: time.Minute,
		},
		JWT: JWTConfig{
			SecretKey:      "0123456789abcdef0123456789abcdef",
			AccessTokenTTL: time.Hour,
			Issuer:         "taskserial",
			Audience:       "taskserial-api",
		},
		Logging: LoggingConfig{Level: "info", Output: "stdout"},
		Sequence: SequenceConfig{
			Backend:       SequenceBackendDatabase,
			MaxWait:       5 * time.Second,
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
		},
	}
}

func TestValidateProductionConfig(t *testing.T) {
	t.Run("valid postgres config", func(t *testing.T) {
		assert.NoError(t, ValidateProductionConfig(validConfig()))
	})

	t.Run("sqlite only needs a path", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database = DatabaseConfig{Driver: DriverSQLite, SQLitePath: "dev.db"}
		assert.NoError(t, ValidateProductionConfig(cfg))
	})

	tests := []struct {
		name    string
		mutate  func(cfg *ProductionConfig)
		message string
	}{
		{
			name:    "unknown driver",
			mutate:  func(cfg *ProductionConfig) { cfg.Database.Driver = "mysql" },
			message: "DB_DRIVER must be one of",
		},
		{
			name:    "short jwt secret",
			mutate:  func(cfg *ProductionConfig) { cfg.JWT.SecretKey = "short" },
			message: "JWT_SECRET_KEY must be at least 32 characters long",
		},
		{
			name:    "max wait above timeout",
			mutate:  func(cfg *ProductionConfig) { cfg.Sequence.MaxWait = 20 * time.Second },
			message: "SEQUENCE_MAX_WAIT must not exceed SEQUENCE_TIMEOUT",
		},
		{
			name:    "redis backend without cache",
			mutate:  func(cfg *ProductionConfig) { cfg.Sequence.Backend = SequenceBackendRedis },
			message: "SEQUENCE_BACKEND=redis requires CACHE_ENABLED=true",
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *ProductionConfig) { cfg.Sequence.Backend = "etcd" },
			message: "SEQUENCE_BACKEND must be one of",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *ProductionConfig) { cfg.Logging.Level = "trace" },
			message: "LOG_LEVEL must be one of",
		},
		{
			name:    "file output without path",
			mutate:  func(cfg *ProductionConfig) { cfg.Logging.Output = "file" },
			message: "LOG_FILE_PATH is required",
		},
		{
			name:    "zero serial rate limit",
			mutate:  func(cfg *ProductionConfig) { cfg.Security.SerialRateLimit = 0 },
			message: "SERIAL_RATE_LIMIT must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	t.Run("errors are aggregated", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.JWT.Issuer = ""
		err := ValidateProductionConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
		assert.Contains(t, err.Error(), "JWT_ISSUER")
	})
}

func TestLoadProductionConfigFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_SQLITE_PATH", filepath.Join(t.TempDir(), "serials.db"))
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("SEQUENCE_MAX_WAIT", "2s")
	t.Setenv("SEQUENCE_RETRY_ATTEMPTS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.Sequence.MaxWait)
	assert.Equal(t, 10*time.Second, cfg.Sequence.Timeout)
	assert.Equal(t, 5, cfg.Sequence.RetryAttempts)
	assert.Equal(t, 30, cfg.Security.SerialRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "# comment\nTASKSERIAL_TEST_A=\"quoted\"\nTASKSERIAL_TEST_B = plain\nnot a pair\nTASKSERIAL_TEST_C=from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("TASKSERIAL_TEST_C", "from-env")
	t.Setenv("TASKSERIAL_TEST_A", "")
	t.Setenv("TASKSERIAL_TEST_B", "")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "quoted", os.Getenv("TASKSERIAL_TEST_A"))
	assert.Equal(t, "plain", os.Getenv("TASKSERIAL_TEST_B"))
	assert.Equal(t, "from-env", os.Getenv("TASKSERIAL_TEST_C"))
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "absent.env")))
}
