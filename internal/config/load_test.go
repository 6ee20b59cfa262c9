package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_HappyPath(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	tempConfigsSubDir := filepath.Join(tempDir, "configs")
	err = os.Mkdir(tempConfigsSubDir, 0755)
	require.NoError(t, err)

	testAppName := "TestApp"
	testPort := 9090
	testLogLevel := "debug"
	testKafkaBrokers := "kafka1:9092"

	envContent := fmt.Sprintf(
		"APP_NAME=%s\nSERVER_PORT=%d\nLOG_LEVEL=%s\nKAFKA_BROKERS=%s\n",
		testAppName, testPort, testLogLevel, testKafkaBrokers,
	)
	envFilePath := filepath.Join(tempConfigsSubDir, "test_happy.env")
	err = os.WriteFile(envFilePath, []byte(envContent), 0644)
	require.NoError(t, err)

	originalWD, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(originalWD)
	}()

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	cfg, err := LoadConfig("test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, testAppName, cfg.Application.Name)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testLogLevel, cfg.Logging.Level)
	assert.Equal(t, testKafkaBrokers, cfg.Kafka.Brokers)

	assert.Equal(t, "development", cfg.Application.Env)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "fund_transaction_events", cfg.Kafka.EventTopic)
	assert.Equal(t, "fund_transaction_events_dlq", cfg.Kafka.DLQTopic)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expiry)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 10, cfg.WorkerPool.Size)

	cfgWithName, err := LoadConfigWithName("configs/test_happy")
	require.NoError(t, err)
	require.NotNil(t, cfgWithName)
	assert.Equal(t, testAppName, cfgWithName.Application.Name)

	cfgWithNameAndType, err := LoadConfigWithNameAndType("configs/test_happy", "env")
	require.NoError(t, err)
	require.NotNil(t, cfgWithNameAndType)
	assert.Equal(t, testAppName, cfgWithNameAndType.Application.Name)
}

func defaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	cfg := defaultConfig()
	err := cfg.validate()
	assert.NoError(t, err, "Default config should be valid")
}

func TestConfig_Validate_Failures(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		expectedMsg string
	}{
		{
			name:        "missing JWT secret",
			mutate:      func(cfg *Config) { cfg.JWT.Secret = "" },
			expectedMsg: "JWT_SECRET is required",
		},
		{
			name:        "non-positive server port",
			mutate:      func(cfg *Config) { cfg.Server.Port = 0 },
			expectedMsg: "SERVER_PORT must be greater than 0",
		},
		{
			name:        "missing kafka event topic",
			mutate:      func(cfg *Config) { cfg.Kafka.EventTopic = "" },
			expectedMsg: "KAFKA_EVENT_TOPIC is required",
		},
		{
			name:        "missing postgres url",
			mutate:      func(cfg *Config) { cfg.Postgres.URL = "" },
			expectedMsg: "POSTGRES_URL is required",
		},
		{
			name:        "missing mongo database",
			mutate:      func(cfg *Config) { cfg.MongoDB.Database = "" },
			expectedMsg: "MONGO_DATABASE is required",
		},
		{
			name:        "non-positive outbox batch size",
			mutate:      func(cfg *Config) { cfg.Outbox.BatchSize = 0 },
			expectedMsg: "OUTBOX_BATCH_SIZE must be greater than 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedMsg)
		})
	}
}
