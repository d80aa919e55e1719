package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Worker   WorkerConfig   `yaml:"worker"`
	LogLevel string         `yaml:"log_level"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	RideCreatedTopic   string   `yaml:"ride_created_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// LedgerConfig carries the contract endpoint and the signing key for the
// process-wide ledger client. The key is injected here once at startup and
// never read from any global.
type LedgerConfig struct {
	Endpoint            string `yaml:"endpoint"`
	ContractAddress     string `yaml:"contract_address"`
	Key                 string `yaml:"key"`
	SubmitTimeoutSecs   int    `yaml:"submit_timeout_seconds"`
	EventPollAttempts   int    `yaml:"event_poll_attempts"`
	EventPollIntervalMS int    `yaml:"event_poll_interval_ms"`
	DedupTTLHours       int    `yaml:"dedup_ttl_hours"`
}

func (l LedgerConfig) SubmitTimeout() time.Duration {
	if l.SubmitTimeoutSecs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.SubmitTimeoutSecs) * time.Second
}

func (l LedgerConfig) EventPollInterval() time.Duration {
	if l.EventPollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(l.EventPollIntervalMS) * time.Millisecond
}

func (l LedgerConfig) DedupTTL() time.Duration {
	if l.DedupTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(l.DedupTTLHours) * time.Hour
}

type WorkerConfig struct {
	ReconcileSweepMinutes int `yaml:"reconcile_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
