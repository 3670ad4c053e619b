package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAWDBBaseURL = "https://wcc.sc.egov.usda.gov/awdbRestApi/services/v1"

	// 95 stations keep the data call near 1865 characters, under the
	// service's 2048 character URL ceiling.
	defaultMaxCallIDs = 95
)

var validate = validator.New()

// Config holds all job settings. File values come from the YAML config file;
// service settings come from environment variables, which also override a
// subset of file values.
type Config struct {
	UserAgent    string `yaml:"user_agent" validate:"required"`
	ProductID    string `yaml:"product_id" validate:"required"`
	SourceCode   string `yaml:"source_code" validate:"len=2"`
	OutputFormat string `yaml:"output_format" validate:"required"`
	NetworkCode  string `yaml:"network_code" validate:"required"`
	MaxCallIDs   int    `yaml:"max_call_ids" validate:"gt=0"`
	MetaFile     string `yaml:"meta_file" validate:"required"`
	StateDir     string `yaml:"state_dir" validate:"required"`
	PublishDir   string `yaml:"publish_dir" validate:"required"`
	AWDBBaseURL  string `yaml:"awdb_base_url" validate:"required,url"`

	HTTPAddr         string        `yaml:"-"`
	LogLevel         string        `yaml:"-"`
	LogFormat        string        `yaml:"-"`
	LogFile          string        `yaml:"-"`
	ShutdownTimeout  time.Duration `yaml:"-"`
	ScheduleInterval time.Duration `yaml:"-" validate:"gte=0"`
	RequestTimeout   time.Duration `yaml:"-" validate:"gt=0"`

	// MetadataCacheSize bounds the station metadata cache; 0 disables it.
	MetadataCacheSize int `yaml:"-" validate:"gte=0"`

	KafkaBrokers []string `yaml:"-"`
	KafkaTopic   string   `yaml:"-"`
	KafkaEnabled bool     `yaml:"-"`
}

func defaults() *Config {
	return &Config{
		ProductID:    "snotelWeb",
		SourceCode:   "RB",
		OutputFormat: "shef",
		NetworkCode:  "SNTL",
		MaxCallIDs:   defaultMaxCallIDs,
		MetaFile:     "SNOTEL_metadata.csv",
		StateDir:     "state",
		PublishDir:   "incoming",
		AWDBBaseURL:  defaultAWDBBaseURL,
	}
}

// Load reads the YAML file at path (optional; a missing file leaves defaults
// in place), applies environment overrides, and validates the result. A .env
// file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := defaults()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	if cfg.ScheduleInterval, err = parseDuration("SCHEDULE_INTERVAL", "0s"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = parseDuration("REQUEST_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.MetadataCacheSize, err = parseInt("METADATA_CACHE_SIZE", 1000); err != nil {
		return nil, err
	}

	cfg.HTTPAddr = sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080")
	cfg.LogLevel = sharedcfg.EnvOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = sharedcfg.EnvOrDefault("LOG_FORMAT", "json")
	cfg.LogFile = os.Getenv("LOG_FILE")

	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(raw)
	}
	cfg.KafkaTopic = sharedcfg.EnvOrDefault("KAFKA_TOPIC", "snotel-shef")
	cfg.KafkaEnabled = len(cfg.KafkaBrokers) > 0

	applyOverrides(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyOverrides lets the environment replace file values.
func applyOverrides(cfg *Config) {
	overrides := map[string]*string{
		"USER_AGENT":    &cfg.UserAgent,
		"OUTPUT_FORMAT": &cfg.OutputFormat,
		"STATE_DIR":     &cfg.StateDir,
		"PUBLISH_DIR":   &cfg.PublishDir,
		"META_FILE":     &cfg.MetaFile,
		"AWDB_BASE_URL": &cfg.AWDBBaseURL,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
