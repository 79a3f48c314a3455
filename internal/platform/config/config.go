package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `toml:"service_name"`
	HTTPPort     string   `toml:"http_port"`
	PostgresDSN  string   `toml:"postgres_dsn"`
	KafkaBrokers []string `toml:"kafka_brokers"`
	GenesisPath  string   `toml:"genesis_path"`

	AuditRelayBatchSize    int           `toml:"audit_relay_batch_size"`
	AuditRelayPollInterval time.Duration `toml:"audit_relay_poll_interval"`
}

// Load reads an optional TOML file named by ARKAVO_CONFIG, then lets
// environment variables override individual values.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:            "arkavo-node",
		HTTPPort:               "8080",
		KafkaBrokers:           []string{"localhost:9092"},
		AuditRelayBatchSize:    50,
		AuditRelayPollInterval: 2 * time.Second,
	}

	if path := os.Getenv("ARKAVO_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %s: %w", path, err)
		}
	}

	if service := os.Getenv("SERVICE_NAME"); service != "" {
		cfg.ServiceName = service
	}
	if port := os.Getenv("HTTP_PORT"); port != "" {
		cfg.HTTPPort = port
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
	}
	if genesis := os.Getenv("GENESIS_PATH"); genesis != "" {
		cfg.GenesisPath = genesis
	}
	if brokers := envList("KAFKA_BROKERS"); len(brokers) > 0 {
		cfg.KafkaBrokers = brokers
	}
	if size, ok, err := envInt("AUDIT_RELAY_BATCH_SIZE"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.AuditRelayBatchSize = size
	}
	if interval, ok, err := envDuration("AUDIT_RELAY_POLL_INTERVAL"); err != nil {
		return Config{}, err
	} else if ok {
		cfg.AuditRelayPollInterval = interval
	}

	if cfg.AuditRelayBatchSize <= 0 {
		return Config{}, fmt.Errorf("audit relay batch size must be positive, got %d", cfg.AuditRelayBatchSize)
	}
	if cfg.AuditRelayPollInterval <= 0 {
		return Config{}, fmt.Errorf("audit relay poll interval must be positive, got %s", cfg.AuditRelayPollInterval)
	}
	return cfg, nil
}

func envList(name string) []string {
	var values []string
	for _, value := range strings.Split(os.Getenv(name), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			values = append(values, value)
		}
	}
	return values
}

func envInt(name string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, true, nil
}

func envDuration(name string) (time.Duration, bool, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", name, err)
	}
	return value, true, nil
}
