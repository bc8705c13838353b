// Package config loads search server configuration from a YAML file with
// environment-variable overrides. It provides typed structs for the index,
// the query executor, logging, metrics, analytics publishing and the corpus
// loaded by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Index    IndexConfig    `yaml:"index"`
	Executor ExecutorConfig `yaml:"executor"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// IndexConfig holds the stop words the index is built with. StopWords is a
// single space-separated string.
type IndexConfig struct {
	StopWords string `yaml:"stopWords"`
}

// ExecutorConfig controls the parallel query executor. Zero workers means
// GOMAXPROCS.
type ExecutorConfig struct {
	Workers int `yaml:"workers"`
}

// CorpusConfig points the CLI at a YAML document corpus.
type CorpusConfig struct {
	Path             string `yaml:"path"`
	RemoveDuplicates bool   `yaml:"removeDuplicates"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// KafkaConfig holds the brokers and topic analytics events are published to.
type KafkaConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Brokers        []string `yaml:"brokers"`
	AnalyticsTopic string   `yaml:"analyticsTopic"`
	BufferSize     int      `yaml:"bufferSize"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
		Kafka: KafkaConfig{
			Enabled:        false,
			Brokers:        []string{"localhost:9092"},
			AnalyticsTopic: "search-analytics",
			BufferSize:     10000,
		},
	}
}

func (c *Config) validate() error {
	if c.Executor.Workers < 0 {
		return fmt.Errorf("executor.workers must not be negative, got %d", c.Executor.Workers)
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.AnalyticsTopic == "" {
			return fmt.Errorf("kafka.analyticsTopic is required when kafka is enabled")
		}
	}
	return nil
}

// applyEnvOverrides reads SS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SS_INDEX_STOP_WORDS"); ok {
		cfg.Index.StopWords = v
	}
	if v := os.Getenv("SS_EXECUTOR_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Executor.Workers = n
		}
	}
	if v := os.Getenv("SS_CORPUS_PATH"); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv("SS_CORPUS_REMOVE_DUPLICATES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Corpus.RemoveDuplicates = b
		}
	}
	if v := os.Getenv("SS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("SS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SS_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("SS_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if v := os.Getenv("SS_KAFKA_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Kafka.Enabled = b
		}
	}
	if v := os.Getenv("SS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("SS_KAFKA_ANALYTICS_TOPIC"); v != "" {
		cfg.Kafka.AnalyticsTopic = v
	}
}
