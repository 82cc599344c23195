// Package config loads the company service configuration from a YAML file,
// an optional .env file and the process environment, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when FLEET_CONFIG is unset.
const DefaultPath = "internal/company/config/config.yaml"

// Zone is a zone seeded on start-up.
type Zone struct {
	ID          int32  `yaml:"ID"`
	Name        string `yaml:"NAME"`
	IsCommunity bool   `yaml:"IS_COMMUNITY"`
}

// Config struct for YAML configuration
type Config struct {
	Environment string `yaml:"ENVIRONMENT"`
	LogLevel    string `yaml:"LOG_LEVEL"`

	GRPCPort int `yaml:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT"`

	DBDriver          string        `yaml:"DB_DRIVER"`
	DBHost            string        `yaml:"DB_HOST"`
	DBPort            int           `yaml:"DB_PORT"`
	DBUser            string        `yaml:"DB_USER"`
	DBPassword        string        `yaml:"DB_PASSWORD"`
	DBName            string        `yaml:"DB_NAME"`
	DBSSLMode         string        `yaml:"DB_SSLMODE"`
	DBPath            string        `yaml:"DB_PATH"`
	DBMaxIdleConns    int           `yaml:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `yaml:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `yaml:"DB_CONN_MAX_LIFETIME"`
	DBConnectTimeout  time.Duration `yaml:"DB_CONNECT_TIMEOUT"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC"`
	// AuditGroup enables the event audit consumer under this consumer group.
	AuditGroup   string   `yaml:"AUDIT_GROUP"`

	JWTSecret        string `yaml:"JWT_SECRET"`
	MetricsNamespace string `yaml:"METRICS_NAMESPACE"`

	Zones []Zone `yaml:"ZONES"`
}

func defaults() *Config {
	return &Config{
		Environment:       "development",
		LogLevel:          "info",
		GRPCPort:          50051,
		HTTPPort:          8080,
		DBDriver:          "postgres",
		DBPort:            5432,
		DBSSLMode:         "disable",
		DBMaxIdleConns:    10,
		DBMaxOpenConns:    100,
		DBConnMaxLifetime: time.Hour,
		DBConnectTimeout:  time.Minute,
		Topic:             "company-events",
		MetricsNamespace:  "fleet",
	}
}

// Load reads path (DefaultPath or $FLEET_CONFIG when empty), then applies a
// .env file if present and finally environment variable overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv("FLEET_CONFIG", DefaultPath)
	}

	cfg := defaults()
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.Topic = getEnv("TOPIC", c.Topic)
	c.AuditGroup = getEnv("AUDIT_GROUP", c.AuditGroup)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.KafkaBrokers = splitList(brokers)
	}

	var err error
	for key, dst := range map[string]*int{
		"GRPC_PORT":         &c.GRPCPort,
		"HTTP_PORT":         &c.HTTPPort,
		"DB_PORT":           &c.DBPort,
		"DB_MAX_IDLE_CONNS": &c.DBMaxIdleConns,
		"DB_MAX_OPEN_CONNS": &c.DBMaxOpenConns,
	} {
		if *dst, err = getEnvAsInt(key, *dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME": &c.DBConnMaxLifetime,
		"DB_CONNECT_TIMEOUT":   &c.DBConnectTimeout,
	} {
		if *dst, err = getEnvAsDuration(key, *dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		problems = append(problems, "GRPC_PORT and HTTP_PORT must be positive")
	}
	if c.GRPCPort == c.HTTPPort {
		problems = append(problems, "GRPC_PORT and HTTP_PORT must differ")
	}
	switch c.DBDriver {
	case "postgres":
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for postgres")
		}
	case "sqlite":
		if c.DBPath == "" {
			problems = append(problems, "DB_PATH is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.AuditGroup != "" && len(c.KafkaBrokers) == 0 {
		problems = append(problems, "AUDIT_GROUP requires KAFKA_BROKERS")
	}
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	seen := make(map[int32]bool, len(c.Zones))
	for _, z := range c.Zones {
		if z.ID <= 0 || z.Name == "" {
			problems = append(problems, fmt.Sprintf("zone %d: ID and NAME are required", z.ID))
		}
		if seen[z.ID] {
			problems = append(problems, fmt.Sprintf("zone %d: duplicate ID", z.ID))
		}
		seen[z.ID] = true
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// LogFields returns the non-secret settings as zap fields.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Environment),
		zap.Int("grpc_port", c.GRPCPort),
		zap.Int("http_port", c.HTTPPort),
		zap.String("db_driver", c.DBDriver),
		zap.String("db_host", c.DBHost),
		zap.String("db_name", c.DBName),
		zap.Strings("kafka_brokers", c.KafkaBrokers),
		zap.String("topic", c.Topic),
		zap.String("audit_group", c.AuditGroup),
		zap.Int("zones", len(c.Zones)),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
