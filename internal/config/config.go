package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// FAA sources. CIFPPath points at a local FAACIFP18 file and bypasses
	// the APRA download when set. DTPPCycle is the d-TPP publication cycle
	// ("2301"); chart filenames are exported relative to it.
	APRAURL      string
	CIFPPath     string
	DTPPBaseURL  string
	DTPPCycle    string
	FetchTimeout time.Duration

	// RefreshInterval is the wait between runs. The FAA republishes on a
	// 28-day cycle; re-running daily picks a new edition up promptly.
	RefreshInterval time.Duration

	// CSV export for the warehouse loader. Empty disables it.
	ExportDir string

	// Kafka sink configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaAirportTopic  string
	KafkaApproachTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDurationEnv("FETCH_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDurationEnv("REFRESH_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}

	// Setting EXPORT_DIR to an empty value disables the CSV sink; unset
	// keeps the default.
	exportDir := "data"
	if v, ok := os.LookupEnv("EXPORT_DIR"); ok {
		exportDir = strings.TrimSpace(v)
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		APRAURL:      envOrDefault("APRA_URL", "https://soa.smext.faa.gov/apra/cifp/chart?edition=current"),
		CIFPPath:     os.Getenv("CIFP_PATH"),
		DTPPBaseURL:  envOrDefault("DTPP_BASE_URL", "https://aeronav.faa.gov/d-tpp"),
		DTPPCycle:    os.Getenv("DTPP_CYCLE"),
		FetchTimeout: fetchTimeout,

		RefreshInterval: refreshInterval,

		ExportDir: exportDir,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaAirportTopic:  envOrDefault("KAFKA_AIRPORT_TOPIC", "airport-directory"),
		KafkaApproachTopic: envOrDefault("KAFKA_APPROACH_TOPIC", "approach-chart-links"),
	}

	if cfg.DTPPCycle == "" {
		return nil, errors.New("DTPP_CYCLE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.ExportDir == "" && !cfg.KafkaEnabled {
		return nil, errors.New("no sink configured: set EXPORT_DIR or KAFKA_BROKERS")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
