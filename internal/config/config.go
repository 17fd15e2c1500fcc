package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all run settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string
	OutputDir string

	// NCBI Virus record source.
	TaxonID          string
	NCBITimeout      time.Duration
	NCBIResponseFile string // replay a saved response instead of calling NCBI

	// Google geocoding.
	GeocoderTimeout    time.Duration
	GeocoderRateLimit  float64 // requests per second
	GeocoderMaxRetries int

	NormalizeHost    bool
	NormalizeCountry bool
	NormalizeStrain  bool

	RecordLimit      int // 0 = no limit
	ProgressInterval int
	ProgressBar      bool
	MetricsTextfile  string

	// Optional publishing of curated records.
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaBatchSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	ncbiTimeout, err := parseDuration("NCBI_TIMEOUT", "10m")
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := parseDuration("GEOCODER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("GEOCODER_RATE_LIMIT", "40"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid GEOCODER_RATE_LIMIT")
	}

	maxRetries, err := parseInt("GEOCODER_MAX_RETRIES", "3", 0)
	if err != nil {
		return nil, err
	}
	recordLimit, err := parseInt("RECORD_LIMIT", "0", 0)
	if err != nil {
		return nil, err
	}
	progressInterval, err := parseInt("PROGRESS_INTERVAL", "100", 1)
	if err != nil {
		return nil, err
	}
	kafkaBatchSize, err := parseInt("KAFKA_BATCH_SIZE", "100", 1)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		OutputDir: sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		TaxonID:          sharedcfg.EnvOrDefault("NCBI_TAXON_ID", "2697049"),
		NCBITimeout:      ncbiTimeout,
		NCBIResponseFile: os.Getenv("NCBI_RESPONSE_FILE"),

		GeocoderTimeout:    geocoderTimeout,
		GeocoderRateLimit:  rateLimit,
		GeocoderMaxRetries: maxRetries,

		NormalizeHost:    parseBool("NORMALIZE_HOST", true),
		NormalizeCountry: parseBool("NORMALIZE_COUNTRY", true),
		NormalizeStrain:  parseBool("NORMALIZE_STRAIN", true),

		RecordLimit:      recordLimit,
		ProgressInterval: progressInterval,
		ProgressBar:      parseBool("PROGRESS_BAR", false),
		MetricsTextfile:  os.Getenv("METRICS_TEXTFILE"),

		KafkaTopic:     os.Getenv("KAFKA_TOPIC"),
		KafkaBatchSize: kafkaBatchSize,
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.TaxonID == "" {
		return nil, errors.New("NCBI_TAXON_ID is required")
	}
	if _, err := strconv.Atoi(cfg.TaxonID); err != nil {
		return nil, errors.New("NCBI_TAXON_ID must be numeric")
	}
	if cfg.KafkaTopic != "" && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_TOPIC is set but KAFKA_BROKERS is not")
	}

	return cfg, nil
}

// PublishEnabled reports whether curated records are also sent to Kafka.
func (c *Config) PublishEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseInt(key, def string, minimum int) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n < minimum {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
