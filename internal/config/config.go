// Package config provides configuration loading from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults shared with the tool layer
const (
	DefaultPageSizeValue    = 50
	QueryMaxResultsValue    = 100
	ProjectCacheItemsValue  = 256
	FetchWorkersValue       = 8
	DefaultHTTPTimeoutMs    = 10000
	DefaultRefreshTimeoutMs = 15000
)

// Config holds all configuration for the MCP server.
type Config struct {
	BaseURL           string        // TASKRAUM_BASE_URL, default "http://localhost:8080"
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)
	RefreshTimeout    time.Duration // REFRESH_TIMEOUT_MS, default 15000ms (15s)

	// Views the client navigates between
	LoginViewPath string // LOGIN_VIEW_PATH, default "/login"
	HomeViewPath  string // HOME_VIEW_PATH, default "/dashboard"

	// Backend auth endpoints
	AuthLoginPath    string // AUTH_LOGIN_PATH, default "/auth/login"
	AuthRegisterPath string // AUTH_REGISTER_PATH, default "/auth/register"
	AuthRefreshPath  string // AUTH_REFRESH_PATH, default "/auth/refresh"
	AuthLogoutPath   string // AUTH_LOGOUT_PATH, default "/auth/logout"
	AuthMePath       string // AUTH_ME_PATH, default "/auth/me"

	FetchWorkers         int // FETCH_WORKERS, default 8
	ProjectCacheMaxItems int // PROJECT_CACHE_MAX_ITEMS, default 256
	DefaultPageSize      int // DEFAULT_PAGE_SIZE, default 50
	QueryMaxResults      int // QUERY_MAX_RESULTS, default 100

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible
// defaults. A .env file in the working directory is loaded first when
// present; variables already set in the environment win.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}

	return &Config{
		BaseURL:           getEnvString("TASKRAUM_BASE_URL", "http://localhost:8080"),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", DefaultHTTPTimeoutMs),
		RefreshTimeout:    getEnvDurationMs("REFRESH_TIMEOUT_MS", DefaultRefreshTimeoutMs),

		LoginViewPath: getEnvString("LOGIN_VIEW_PATH", "/login"),
		HomeViewPath:  getEnvString("HOME_VIEW_PATH", "/dashboard"),

		AuthLoginPath:    getEnvString("AUTH_LOGIN_PATH", "/auth/login"),
		AuthRegisterPath: getEnvString("AUTH_REGISTER_PATH", "/auth/register"),
		AuthRefreshPath:  getEnvString("AUTH_REFRESH_PATH", "/auth/refresh"),
		AuthLogoutPath:   getEnvString("AUTH_LOGOUT_PATH", "/auth/logout"),
		AuthMePath:       getEnvString("AUTH_ME_PATH", "/auth/me"),

		FetchWorkers:         getEnvInt("FETCH_WORKERS", FetchWorkersValue),
		ProjectCacheMaxItems: getEnvInt("PROJECT_CACHE_MAX_ITEMS", ProjectCacheItemsValue),
		DefaultPageSize:      getEnvInt("DEFAULT_PAGE_SIZE", DefaultPageSizeValue),
		QueryMaxResults:      getEnvInt("QUERY_MAX_RESULTS", QueryMaxResultsValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
