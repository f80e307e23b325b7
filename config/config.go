package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of date-only settings such as the history floor.
const DateLayout = "2006-01-02"

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Discord       DiscordConfig       `yaml:"discord"`
	Stats         StatsConfig         `yaml:"stats"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL selects the in-process bus.
type NATSConfig struct {
	URL        string `yaml:"url"`
	QueueGroup string `yaml:"queue_group"`
	JetStream  bool   `yaml:"jetstream"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token      string `yaml:"token"`
	DevGuildID string `yaml:"dev_guild_id"`
	OwnerID    string `yaml:"owner_id"`
	// PageRate is the number of history pages fetched per second.
	PageRate  float64 `yaml:"page_rate"`
	PageBurst int     `yaml:"page_burst"`
}

// StatsConfig holds the stats pipeline settings.
type StatsConfig struct {
	ResultsBotID string `yaml:"results_bot_id"`
	FailScore    int    `yaml:"fail_score"`
	HistoryFloor string `yaml:"history_floor"`
	PageSize     int    `yaml:"page_size"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress  string  `yaml:"metrics_address"`
	Environment     string  `yaml:"environment"`
	LogLevel        string  `yaml:"log_level"`
	OTLPEndpoint    string  `yaml:"otlp_endpoint"`
	OTLPInsecure    bool    `yaml:"otlp_insecure"`
	TraceSampleRate float64 `yaml:"trace_sample_rate"`
}

// LoadDotEnv loads .env files into the environment when they exist.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.Discord.Token = os.Getenv("BOT_TOKEN")
	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable not set")
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("DATABASE_URL", &cfg.Postgres.DSN)
	setString("NATS_URL", &cfg.NATS.URL)
	setString("NATS_QUEUE_GROUP", &cfg.NATS.QueueGroup)
	setString("BOT_TOKEN", &cfg.Discord.Token)
	setString("DEV_GUILD_ID", &cfg.Discord.DevGuildID)
	setString("OWNER_ID", &cfg.Discord.OwnerID)
	setString("RESULTS_BOT_ID", &cfg.Stats.ResultsBotID)
	setString("HISTORY_FLOOR", &cfg.Stats.HistoryFloor)
	setString("METRICS_ADDRESS", &cfg.Observability.MetricsAddress)
	setString("ENV", &cfg.Observability.Environment)
	setString("LOG_LEVEL", &cfg.Observability.LogLevel)
	setString("OTLP_ENDPOINT", &cfg.Observability.OTLPEndpoint)

	if v := os.Getenv("NATS_JETSTREAM"); v != "" {
		cfg.NATS.JetStream = v == "true"
	}
	if v := os.Getenv("OTLP_INSECURE"); v != "" {
		cfg.Observability.OTLPInsecure = v == "true"
	}
	if v := os.Getenv("FAIL_SCORE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FAIL_SCORE value: %v", err)
		}
		cfg.Stats.FailScore = n
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PAGE_SIZE value: %v", err)
		}
		cfg.Stats.PageSize = n
	}
	if v := os.Getenv("PAGE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PAGE_RATE value: %v", err)
		}
		cfg.Discord.PageRate = f
	}
	if v := os.Getenv("TRACE_SAMPLE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TRACE_SAMPLE_RATE value: %v", err)
		}
		cfg.Observability.TraceSampleRate = f
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Stats.ResultsBotID == "" {
		c.Stats.ResultsBotID = "1211781489931452447"
	}
	if c.Stats.FailScore == 0 {
		c.Stats.FailScore = 7
	}
	if c.Stats.HistoryFloor == "" {
		c.Stats.HistoryFloor = "2025-05-01"
	}
	if c.Stats.PageSize == 0 {
		c.Stats.PageSize = 100
	}
	if c.Discord.PageRate == 0 {
		c.Discord.PageRate = 2
	}
	if c.Discord.PageBurst == 0 {
		c.Discord.PageBurst = 1
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.TraceSampleRate == 0 {
		c.Observability.TraceSampleRate = 0.1
	}
}

// Validate reports settings the bot cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres dsn is required"))
	}
	if c.Discord.Token == "" {
		errs = append(errs, errors.New("discord token is required"))
	}
	if c.Stats.PageSize < 1 || c.Stats.PageSize > 100 {
		errs = append(errs, fmt.Errorf("page size must be between 1 and 100, got %d", c.Stats.PageSize))
	}
	if c.Stats.FailScore < 1 {
		errs = append(errs, fmt.Errorf("fail score must be positive, got %d", c.Stats.FailScore))
	}
	if _, err := c.HistoryFloor(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HistoryFloor parses the default history floor as a UTC date.
func (c *Config) HistoryFloor() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.Stats.HistoryFloor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid history floor %q: %w", c.Stats.HistoryFloor, err)
	}
	return t, nil
}
