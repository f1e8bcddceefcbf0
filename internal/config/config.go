package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Session store backends.
const (
	StoreCookie   = "cookie"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port            string
	APIBaseURL      string
	APITimeout      time.Duration
	SessionSecret   string
	SessionTTL      time.Duration
	SessionStore    string
	RedisAddr       string
	RedisPassword   string
	DatabaseURL     string
	CookieSecure    bool
	PageSizes       []int
	DefaultPageSize int
	AllowedOrigins  []string
	LogLevel        string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8081"),
		APIBaseURL:     strings.TrimRight(fallback(os.Getenv("API_BASE_URL"), "http://localhost:8080/api"), "/"),
		SessionSecret:  strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionStore:   strings.ToLower(fallback(os.Getenv("SESSION_STORE"), StoreCookie)),
		RedisAddr:      fallback(os.Getenv("REDIS_ADDR"), "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CookieSecure:   parseBool(os.Getenv("COOKIE_SECURE"), true),
		AllowedOrigins: parseCSV(os.Getenv("ALLOWED_ORIGINS")),
		LogLevel:       strings.ToLower(fallback(os.Getenv("LOG_LEVEL"), "info")),
	}

	cfg.APITimeout = parseDuration(os.Getenv("API_TIMEOUT_SECONDS"), 15, time.Second)
	cfg.SessionTTL = parseDuration(os.Getenv("SESSION_TTL_MINUTES"), 24*60, time.Minute)

	sizes, err := parseSizes(fallback(os.Getenv("PAGE_SIZES"), "10,25,50"))
	if err != nil {
		return Config{}, err
	}
	cfg.PageSizes = sizes

	def, err := strconv.Atoi(fallback(os.Getenv("DEFAULT_PAGE_SIZE"), strconv.Itoa(sizes[0])))
	if err != nil {
		return Config{}, fmt.Errorf("DEFAULT_PAGE_SIZE: %w", err)
	}
	if !slices.Contains(sizes, def) {
		return Config{}, fmt.Errorf("DEFAULT_PAGE_SIZE %d is not one of PAGE_SIZES", def)
	}
	cfg.DefaultPageSize = def

	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 32 {
		return Config{}, errors.New("SESSION_SECRET must be at least 32 characters")
	}
	switch cfg.SessionStore {
	case StoreCookie, StoreRedis:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(input string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return def
	}
	return v
}

func parseDuration(input string, def int, unit time.Duration) time.Duration {
	if n, err := strconv.Atoi(strings.TrimSpace(input)); err == nil && n > 0 {
		return time.Duration(n) * unit
	}
	return time.Duration(def) * unit
}

func parseSizes(input string) ([]int, error) {
	var sizes []int
	for _, part := range parseCSV(input) {
		n, err := strconv.Atoi(part)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("PAGE_SIZES: invalid size %q", part)
		}
		if !slices.Contains(sizes, n) {
			sizes = append(sizes, n)
		}
	}
	if len(sizes) == 0 {
		return nil, errors.New("PAGE_SIZES must list at least one size")
	}
	slices.Sort(sizes)
	return sizes, nil
}
