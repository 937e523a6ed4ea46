package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultUpstreamBaseURL = "https://satoru-flame.vercel.app"

type Service struct {
	Host     string
	Port     string
	Protocol string
}

type UpstreamConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

type Config struct {
	API         Service
	Upstream    UpstreamConfig
	CORSOrigins []string
	RulesFile   string
	LogLevel    string
	LogJSON     bool
}

// Load reads the process environment. Callers load .env first if they want it.
func Load() *Config {
	return &Config{
		API: Service{
			Host:     getEnvOrDefault("API_HOST", "0.0.0.0"),
			Port:     getEnvOrDefault("PORT", getEnvOrDefault("API_PORT", "3000")),
			Protocol: "http",
		},
		Upstream: UpstreamConfig{
			BaseURL:          strings.TrimRight(getEnvOrDefault("UPSTREAM_BASE_URL", DefaultUpstreamBaseURL), "/"),
			Timeout:          GetEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
			RateLimit:        GetEnvFloat("UPSTREAM_RATE_LIMIT", 10),
			Burst:            GetEnvInt("UPSTREAM_BURST", 5),
			BreakerThreshold: GetEnvInt("BREAKER_THRESHOLD", 5),
			BreakerTimeout:   GetEnvDuration("BREAKER_TIMEOUT", 30*time.Second),
		},
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
		RulesFile:   strings.TrimSpace(os.Getenv("RULES_FILE")),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogJSON:     os.Getenv("LOG_FORMAT") == "json",
	}
}

func (s *Service) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

func (s *Service) URL() string {
	return fmt.Sprintf("%s://%s:%s", s.Protocol, s.Host, s.Port)
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func GetEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func GetEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// GetEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
