package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
// The defaults match the public weather.com.cn and weatherol.cn services.
type Config struct {
	OutputPath string
	Validate   bool

	// Catalog source (weather.com.cn list3).
	CatalogBaseURL    string
	CatalogTimeout    time.Duration
	CatalogMaxRetries int
	CatalogRetryDelay time.Duration

	// Weather code validation (weatherol.cn).
	ValidatorBaseURL    string
	ValidatorTimeout    time.Duration
	ValidatorMaxRetries int
	ValidatorRetryDelay time.Duration
	ValidatorCacheSize  int

	// Politeness throttling.
	ProvincePause   time.Duration
	ValidationPause time.Duration

	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	MetricsTextfile string
	ShutdownTimeout time.Duration

	// Optional Kafka publishing of the finished catalog.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	catalogTimeout, err := parsePositiveDuration("CATALOG_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	catalogRetryDelay, err := parseNonNegativeDuration("CATALOG_RETRY_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	catalogMaxRetries, err := parsePositiveInt("CATALOG_MAX_RETRIES", 3)
	if err != nil {
		return nil, err
	}

	validatorTimeout, err := parsePositiveDuration("VALIDATOR_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	validatorRetryDelay, err := parseNonNegativeDuration("VALIDATOR_RETRY_DELAY", "500ms")
	if err != nil {
		return nil, err
	}
	validatorMaxRetries, err := parsePositiveInt("VALIDATOR_MAX_RETRIES", 2)
	if err != nil {
		return nil, err
	}
	validatorCacheSize, err := parsePositiveInt("VALIDATOR_CACHE_SIZE", 4096)
	if err != nil {
		return nil, err
	}

	provincePause, err := parseNonNegativeDuration("PROVINCE_PAUSE", "1s")
	if err != nil {
		return nil, err
	}
	validationPause, err := parseNonNegativeDuration("VALIDATION_PAUSE", "200ms")
	if err != nil {
		return nil, err
	}

	validate, err := parseBool("VALIDATE_CITY_IDS", false)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		OutputPath: sharedcfg.EnvOrDefault("OUTPUT_PATH", "city.json"),
		Validate:   validate,

		CatalogBaseURL:    sharedcfg.EnvOrDefault("CATALOG_BASE_URL", "http://www.weather.com.cn/data/list3"),
		CatalogTimeout:    catalogTimeout,
		CatalogMaxRetries: catalogMaxRetries,
		CatalogRetryDelay: catalogRetryDelay,

		ValidatorBaseURL:    sharedcfg.EnvOrDefault("VALIDATOR_BASE_URL", "https://www.weatherol.cn/api/home"),
		ValidatorTimeout:    validatorTimeout,
		ValidatorMaxRetries: validatorMaxRetries,
		ValidatorRetryDelay: validatorRetryDelay,
		ValidatorCacheSize:  validatorCacheSize,

		ProvincePause:   provincePause,
		ValidationPause: validationPause,

		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled: kafkaEnabled,
		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "city-catalog"),
	}

	if cfg.OutputPath == "" {
		return nil, errors.New("OUTPUT_PATH is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when publishing to Kafka")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s", key)
	}
	return b, nil
}
