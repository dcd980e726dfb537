package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string

	// Identity resolver
	JWTSecret      string
	AccessTokenTTL time.Duration
	InvitationTTL  time.Duration
	SocialJWKSURL  string

	// Forest snapshot cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Trash retention for the purge job (days)
	TrashRetentionDays int
}

// fileOverrides is the optional YAML override file pointed to by
// DOTORIHAM_CONFIG. Only operational knobs are overridable; secrets
// stay in the environment.
type fileOverrides struct {
	Port               string `yaml:"port"`
	CORSOrigins        string `yaml:"cors_origins"`
	TablePrefix        string `yaml:"table_prefix"`
	TrashRetentionDays int    `yaml:"trash_retention_days"`
}

func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		InvitationTTL:  getDuration("INVITATION_TTL", 72*time.Hour),
		SocialJWKSURL:  getEnv("SOCIAL_JWKS_URL", "https://www.googleapis.com/oauth2/v3/certs"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		TrashRetentionDays: getInt("TRASH_RETENTION_DAYS", 30),
	}

	if path := os.Getenv("DOTORIHAM_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var o fileOverrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if o.Port != "" {
		c.Port = o.Port
	}
	if o.CORSOrigins != "" {
		c.CORSOrigins = o.CORSOrigins
	}
	if o.TablePrefix != "" {
		c.TablePrefix = o.TablePrefix
	}
	if o.TrashRetentionDays > 0 {
		c.TrashRetentionDays = o.TrashRetentionDays
	}

	return nil
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	if env == "test" {
		return "test_"
	}
	return ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
