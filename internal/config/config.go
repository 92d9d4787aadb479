package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration derived from environment variables
// layered over an optional config file.
type Config struct {
	HTTPPort       string
	InboxDir       string
	WorkDir        string
	DBPath         string
	CompetitionCSV string
	ClassifierURL  string
	NotifyURL      string
	WorkerCount    int
	QueueSize      int
	EnableWatcher  bool
	StrictConfig   bool
}

type fileConfig struct {
	HTTPPort       string `json:"http_port" yaml:"http_port"`
	InboxDir       string `json:"inbox_dir" yaml:"inbox_dir"`
	WorkDir        string `json:"work_dir" yaml:"work_dir"`
	DBPath         string `json:"db_path" yaml:"db_path"`
	CompetitionCSV string `json:"competition_csv" yaml:"competition_csv"`
	ClassifierURL  string `json:"classifier_url" yaml:"classifier_url"`
	NotifyURL      string `json:"notify_url" yaml:"notify_url"`
}

const (
	defaultPort        = ":8000"
	defaultInboxDir    = "runtime/reports"
	defaultWorkDir     = "runtime/work"
	defaultDBFile      = "crime_reports.db"
	minQueueSize       = 1
	defaultQueueSize   = 100
	maxQueueSize       = 1024
	defaultWorkerCount = 4
)

// Load reads configuration from the environment, an optional .env file, and
// an optional YAML/JSON config file, applying sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		WorkerCount:   defaultWorkerCount,
		QueueSize:     defaultQueueSize,
		EnableWatcher: parseBoolEnvDefault("ENABLE_WATCHER", true),
		StrictConfig:  parseBoolEnv("STRICT_CONFIG"),
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.InboxDir = firstNonEmpty(os.Getenv("INBOX_DIR"), fileCfg.InboxDir, defaultInboxDir)
	cfg.WorkDir = firstNonEmpty(os.Getenv("WORK_DIR"), fileCfg.WorkDir, defaultWorkDir)
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	} else if fileCfg.DBPath != "" {
		cfg.DBPath = fileCfg.DBPath
	} else {
		cfg.DBPath = filepath.Join(cfg.WorkDir, defaultDBFile)
	}
	cfg.CompetitionCSV = firstNonEmpty(os.Getenv("COMPETITION_CSV"), fileCfg.CompetitionCSV)
	cfg.ClassifierURL = firstNonEmpty(os.Getenv("CLASSIFIER_URL"), fileCfg.ClassifierURL)
	cfg.NotifyURL = firstNonEmpty(os.Getenv("NOTIFY_URL"), fileCfg.NotifyURL)

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if legacyPort := os.Getenv("PORT"); legacyPort != "" && cfg.HTTPPort == defaultPort {
		cfg.HTTPPort = legacyPort
	}
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Printf("invalid WORKER_COUNT=%q, using default %d", v, defaultWorkerCount)
			n = defaultWorkerCount
		}
		cfg.WorkerCount = n
	}

	if v := os.Getenv("QUEUE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid QUEUE_SIZE=%q, using default %d", v, defaultQueueSize)
			n = defaultQueueSize
		}
		if n < minQueueSize {
			log.Printf("QUEUE_SIZE raised to minimum %d (was %d)", minQueueSize, n)
			n = minQueueSize
		}
		if n > maxQueueSize {
			log.Printf("QUEUE_SIZE capped at %d (was %d)", maxQueueSize, n)
			n = maxQueueSize
		}
		cfg.QueueSize = n
	}
	if cfg.QueueSize < cfg.WorkerCount {
		log.Printf("QUEUE_SIZE must be >= WORKER_COUNT; using %d", cfg.WorkerCount)
		cfg.QueueSize = cfg.WorkerCount
	}

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}

	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	return cfg, err
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.InboxDir) == "" {
		return errors.New("INBOX_DIR is required")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return errors.New("HTTP_PORT is required")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	if strings.TrimSpace(os.Getenv(key)) == "" {
		return defaultVal
	}
	return parseBoolEnv(key)
}

// Now returns a UTC timestamp truncated to the second for deterministic
// store writes.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
