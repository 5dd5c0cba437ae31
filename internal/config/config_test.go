package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_USER", "fileflow")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "fileflow")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, QueueDriverKafka, cfg.Queue.Driver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Queue.KafkaBrokers)
	assert.Equal(t, NotifierDriverTeams, cfg.Notifier.Driver)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, int32(60), cfg.Queue.SQSVisibilityTimeout)
	assert.Equal(t, 5, cfg.Queue.MaxAttempts)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("QUEUE_DRIVER", "SQS")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("NOTIFIER_DRIVER", "sns")
	t.Setenv("STATS_CACHE_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, _, err := Load()
	require.NoError(t, err)

	assert.Equal(t, QueueDriverSQS, cfg.Queue.Driver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Queue.KafkaBrokers)
	assert.Equal(t, NotifierDriverSNS, cfg.Notifier.Driver)
	assert.Equal(t, 2*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"missing user":     {"POSTGRES_USER": ""},
		"bad queue driver": {"QUEUE_DRIVER": "rabbitmq"},
		"bad notifier":     {"NOTIFIER_DRIVER": "slack"},
		"bad ttl":          {"STATS_CACHE_TTL": "soon"},
		"bad visibility":   {"SQS_VISIBILITY_TIMEOUT": "long"},
		"bad max attempts": {"QUEUE_MAX_ATTEMPTS": "many"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, _, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", Name: "ff", User: "u", Password: "p", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=ff port=5432 sslmode=disable TimeZone=UTC", d.DSN())
}
