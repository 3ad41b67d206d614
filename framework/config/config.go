package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
// Embed or extend it in your app's own AppConfig.
type Config struct {
	App     AppConfig
	Log     LogConfig
	Metrics MetricsConfig
	Session SessionConfig
	Web     WebConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	URL   string
	Port  string

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string // panic | fatal | error | warn | info | debug | trace
	Format string // text | json
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type SessionConfig struct {
	Cookie string
	TTL    time.Duration
}

type WebConfig struct {
	// LateInstantiation makes request scopes build unregistered concrete
	// types and read string keys from the request.
	LateInstantiation bool
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:            env("APP_NAME", "GoGems"),
			Env:             env("APP_ENV", "local"),
			Debug:           envBool("APP_DEBUG", true),
			URL:             env("APP_URL", "http://localhost"),
			Port:            env("APP_PORT", "8000"),
			ShutdownTimeout: GetDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "text"),
		},
		Metrics: MetricsConfig{
			Enabled: envBool("METRICS_ENABLED", true),
			Path:    env("METRICS_PATH", "/metrics"),
		},
		Session: SessionConfig{
			Cookie: env("SESSION_COOKIE", "gems_session"),
			TTL:    GetDuration("SESSION_TTL", 30*time.Minute),
		},
		Web: WebConfig{
			LateInstantiation: envBool("WEB_LATE_INSTANTIATION", true),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// GetDuration returns a duration env value ("90s", "30m").
func GetDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
