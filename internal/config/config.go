package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	QueueDriverKafka = "kafka"
	QueueDriverSQS   = "sqs"

	NotifierDriverTeams = "teams"
	NotifierDriverSNS   = "sns"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	TimeZone string
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type QueueConfig struct {
	Driver               string
	First                string
	Second               string
	KafkaBrokers         []string
	KafkaGroupID         string
	SQSVisibilityTimeout int32
	MaxAttempts          int
}

type AWSConfig struct {
	Region   string
	Endpoint string
}

type NotifierConfig struct {
	Driver          string
	TeamsWebhookURL string
	SNSTopicARN     string
}

type Config struct {
	AppEnv             string
	Port               string
	Database           DatabaseConfig
	Queue              QueueConfig
	AWS                AWSConfig
	Notifier           NotifierConfig
	RedisURL           string
	StatsCacheTTL      time.Duration
	CORSAllowedOrigins []string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, bool, error) {
	envFileLoaded := godotenv.Load() == nil

	visibility, err := strconv.Atoi(getEnv("SQS_VISIBILITY_TIMEOUT", "60"))
	if err != nil {
		return nil, envFileLoaded, fmt.Errorf("SQS_VISIBILITY_TIMEOUT: %w", err)
	}
	maxAttempts, err := strconv.Atoi(getEnv("QUEUE_MAX_ATTEMPTS", "5"))
	if err != nil {
		return nil, envFileLoaded, fmt.Errorf("QUEUE_MAX_ATTEMPTS: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("STATS_CACHE_TTL", "30s"))
	if err != nil {
		return nil, envFileLoaded, fmt.Errorf("STATS_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			Name:     os.Getenv("POSTGRES_DB"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		Queue: QueueConfig{
			Driver:               strings.ToLower(getEnv("QUEUE_DRIVER", QueueDriverKafka)),
			First:                getEnv("QUEUE_FIRST", "file_submitted"),
			Second:               getEnv("QUEUE_SECOND", "file_classified"),
			KafkaBrokers:         splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "fileflow-workers"),
			SQSVisibilityTimeout: int32(visibility),
			MaxAttempts:          maxAttempts,
		},
		AWS: AWSConfig{
			Region:   os.Getenv("AWS_REGION"),
			Endpoint: os.Getenv("AWS_ENDPOINT"),
		},
		Notifier: NotifierConfig{
			Driver:          strings.ToLower(getEnv("NOTIFIER_DRIVER", NotifierDriverTeams)),
			TeamsWebhookURL: os.Getenv("TEAMS_WEBHOOK_URL"),
			SNSTopicARN:     os.Getenv("SNS_TOPIC_ARN"),
		},
		RedisURL:           os.Getenv("REDIS_URL"),
		StatsCacheTTL:      ttl,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}
	return cfg, envFileLoaded, cfg.Validate()
}

func (c *Config) Validate() error {
	switch {
	case c.Database.User == "":
		return fmt.Errorf("POSTGRES_USER not set")
	case c.Database.Password == "":
		return fmt.Errorf("POSTGRES_PASSWORD not set")
	case c.Database.Name == "":
		return fmt.Errorf("POSTGRES_DB not set")
	}
	if c.Queue.Driver != QueueDriverKafka && c.Queue.Driver != QueueDriverSQS {
		return fmt.Errorf("unsupported QUEUE_DRIVER %q", c.Queue.Driver)
	}
	if c.Queue.Driver == QueueDriverKafka && len(c.Queue.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS not set")
	}
	if c.Notifier.Driver != NotifierDriverTeams && c.Notifier.Driver != NotifierDriverSNS {
		return fmt.Errorf("unsupported NOTIFIER_DRIVER %q", c.Notifier.Driver)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
