package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds server configuration from environment.
type Config struct {
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	SeedEnabled     bool
	MetricsEnabled  bool
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaPartitions int
	RedisURL        string
	RedisChannel    string
	RedisPoolSize   int
}

var (
	cfg     *Config
	cfgOnce sync.Once
)

// Get returns the application config (loads once from env).
func Get() *Config {
	cfgOnce.Do(func() {
		cfg = Load()
	})
	return cfg
}

// Load reads the configuration from the current environment without caching it.
func Load() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "7148"),
		ReadTimeout:     getSecondsEnv("HTTP_READ_TIMEOUT_SEC", 10),
		WriteTimeout:    getSecondsEnv("HTTP_WRITE_TIMEOUT_SEC", 120),
		IdleTimeout:     getSecondsEnv("HTTP_IDLE_TIMEOUT_SEC", 120),
		ShutdownTimeout: getSecondsEnv("SHUTDOWN_TIMEOUT_SEC", 15),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SeedEnabled:     getBoolEnv("SEED_ENABLED", true),
		MetricsEnabled:  getBoolEnv("METRICS_ENABLED", true),
		KafkaBrokers:    getSliceEnv("KAFKA_BROKERS"),
		KafkaTopic:      getEnv("KAFKA_TOPIC", "todo-events"),
		KafkaPartitions: getIntEnv("KAFKA_PARTITIONS", 1),
		RedisURL:        os.Getenv("REDIS_URL"),
		RedisChannel:    getEnv("REDIS_CHANNEL", "todo-events"),
		RedisPoolSize:   getIntEnv("REDIS_POOL_SIZE", 10),
	}
}

// LoadEnvFile reads a .env file and sets env vars (only if not already set).
// A missing file is not an error.
func LoadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if len(val) >= 2 {
			if (val[0] == '"' && val[len(val)-1] == '"') || (val[0] == '\'' && val[len(val)-1] == '\'') {
				val = val[1 : len(val)-1]
			}
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getSecondsEnv(key string, defaultSec int) time.Duration {
	return time.Duration(getIntEnv(key, defaultSec)) * time.Second
}

// getSliceEnv splits a comma separated variable; unset means nil.
func getSliceEnv(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
