package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Application: ApplicationConfig{Env: "test", Name: "expense-toolkit"},
		Logging:     LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 5 * time.Second,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
		},
		Postgres: PostgresConfig{
			URL:             "postgres://localhost:5432/expenses",
			MaxConns:        10,
			MinConns:        2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
			MigrationsPath:  "migrations/postgres",
		},
		MongoDB: MongoDBConfig{
			URI:             "mongodb://localhost:27017",
			Database:        "expenses_audit",
			Timeout:         10 * time.Second,
			MaxPoolSize:     100,
			MinPoolSize:     10,
			MaxConnIdleTime: 60 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           "localhost:9092",
			NotificationTopic: "notifications",
			NumPartitions:     3,
			ReplicationFactor: 1,
			ConsumerGroup:     "notification-workers",
			MinBytes:          1,
			MaxBytes:          1048576,
			MaxWait:           time.Second,
		},
		WorkerPool: WorkerPoolConfig{Size: 10},
		Import: ImportConfig{
			UploadDir:       "/tmp/uploads",
			MaxUploadBytes:  10 << 20,
			DefaultCurrency: "EUR",
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		require.NoError(t, validConfig().validate())
	})

	t.Run("missing postgres url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Postgres.URL = ""
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_URL is required")
	})

	t.Run("currency must be three letters", func(t *testing.T) {
		cfg := validConfig()
		cfg.Import.DefaultCurrency = "EURO"
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IMPORT_DEFAULT_CURRENCY")
	})

	t.Run("errors are collected, not short-circuited", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 0
		cfg.Kafka.NotificationTopic = ""
		cfg.WorkerPool.Size = 0
		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVER_PORT")
		assert.Contains(t, err.Error(), "KAFKA_NOTIFICATION_TOPIC")
		assert.Contains(t, err.Error(), "WORKER_POOL_SIZE")
	})
}
