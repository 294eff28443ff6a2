package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"attire-service/database"
	"attire-service/notifier"
	aws_pkg "attire-service/pkg/aws"
	"attire-service/reminder"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all configuration for the attire service.
type Config struct {
	Port string
	Env  string

	Database database.Options

	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string

	ReminderInterval          time.Duration
	NotificationSendDelay     time.Duration
	ReevaluateRemindersOnEdit bool

	OrderEventsSNSTopicARN string
	KafkaBrokers           []string
	OrderEventsTopic       string

	CORSOrigins []string
}

// LoadConfig reads .env when present, then the environment, with an
// optional Secrets Manager override for credentials.
func LoadConfig(log *zap.Logger) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),
		Database: database.Options{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Name:     os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Colombo"),
		},
		JWTSecret:              os.Getenv("JWT_SECRET"),
		AdminUsername:          getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:          os.Getenv("ADMIN_PASSWORD"),
		OrderEventsSNSTopicARN: os.Getenv("ORDER_EVENTS_SNS_TOPIC_ARN"),
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic:       getEnv("ORDER_EVENTS_TOPIC", "attire.order-events"),
		CORSOrigins:            splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ReminderInterval, err = getDuration("REMINDER_INTERVAL", reminder.DefaultInterval); err != nil {
		return nil, err
	}
	if cfg.NotificationSendDelay, err = getDuration("NOTIFICATION_SEND_DELAY", notifier.DefaultSendDelay); err != nil {
		return nil, err
	}
	if cfg.ReevaluateRemindersOnEdit, err = getBool("REMINDER_REEVALUATE_ON_EDIT", false); err != nil {
		return nil, err
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		loadSecrets(cfg, log)
	}

	if cfg.Database.User == "" || cfg.Database.Password == "" || cfg.Database.Name == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD not set")
	}
	return cfg, nil
}

// secretSource is the part of the Secrets Manager client config needs.
type secretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

const (
	dbCredentialsSecret = "attire/DB_CREDENTIALS"
	jwtSecretName       = "attire/JWT_SECRET"
)

// loadSecrets overrides DB credentials and the JWT secret when running on
// AWS. A missing AWS config leaves the environment values in place.
func loadSecrets(cfg *Config, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Warn("secrets override skipped", zap.Error(err))
		return
	}
	applySecrets(ctx, cfg, aws_pkg.NewSecretsClient(awsCfg, log))
}

// applySecrets copies whatever the secrets hold over cfg. Lookup failures
// are logged by src and leave the field unchanged.
func applySecrets(ctx context.Context, cfg *Config, src secretSource) {
	if m, err := src.GetSecretMap(ctx, dbCredentialsSecret); err == nil {
		for key, dst := range map[string]*string{
			"POSTGRES_USER":     &cfg.Database.User,
			"POSTGRES_PASSWORD": &cfg.Database.Password,
			"POSTGRES_DB":       &cfg.Database.Name,
			"POSTGRES_HOST":     &cfg.Database.Host,
			"POSTGRES_PORT":     &cfg.Database.Port,
		} {
			if v := m[key]; v != "" {
				*dst = v
			}
		}
	}
	if v, err := src.GetSecret(ctx, jwtSecretName); err == nil {
		cfg.JWTSecret = v
	}
}

// appEnv resolves APP_ENV, including .env, before the logger exists.
func appEnv() string {
	_ = godotenv.Load()
	return getEnv("APP_ENV", "development")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "/")); part != "" {
			out = append(out, part)
		}
	}
	return out
}
