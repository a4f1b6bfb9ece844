package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir    string `json:"log_dir"`
	ClipsDir  string `json:"clips_dir"`
	StaticDir string `json:"static_dir"`

	// Middleware settings
	Middleware MiddlewareConfig `json:"middleware"`

	// CORS Configuration
	CORS CORSConfig `json:"cors"`

	// Rate Limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Clip pipeline settings
	Clip ClipConfig `json:"clip"`

	// External tool settings
	Tools ToolsConfig `json:"tools"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCompress  bool `json:"enable_compress"`
	EnableETag      bool `json:"enable_etag"`
}

type ClipConfig struct {
	// FreshnessWindow bounds how long cached metadata and stream locators
	// are trusted before a re-resolve is required.
	FreshnessWindow time.Duration `json:"freshness_window"`

	// ProcessTimeout is the maximum time allowed for a single tool invocation.
	ProcessTimeout time.Duration `json:"process_timeout"`

	// MaxSegmentDuration caps the length of an extracted segment.
	MaxSegmentDuration time.Duration `json:"max_segment_duration"`

	// SweepInterval and MaxFileAge drive the transient-file janitor.
	SweepInterval time.Duration `json:"sweep_interval"`
	MaxFileAge    time.Duration `json:"max_file_age"`
}

type ToolsConfig struct {
	DownloaderPath string `json:"downloader_path"`
	TranscoderPath string `json:"transcoder_path"`
	UserAgent      string `json:"user_agent"`

	// MaxConcurrent caps the number of concurrently running subprocesses.
	MaxConcurrent int `json:"max_concurrent"`

	// LaunchesPerMinute throttles how fast new subprocesses may be spawned.
	LaunchesPerMinute int `json:"launches_per_minute"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

func defaultDevMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: false,
		EnableTimeout:   false, // easier debugging of long tool runs
		EnableCompress:  false,
		EnableETag:      false,
	}
}

func defaultProdMiddleware() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableTimeout:   true,
		EnableCompress:  true,
		EnableETag:      true,
	}
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 10*time.Minute),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		// Application paths
		LogDir:    getEnv("LOG_DIR", "/var/log/yt-clip"),
		ClipsDir:  getEnv("CLIPS_DIR", "/tmp/yt-clip/clips"),
		StaticDir: getEnv("STATIC_DIR", "./static"),

		// Application version
		Version: getEnv("VERSION", "1.0.0"),

		// Request and shutdown timeouts
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// CORS Configuration
		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Disposition"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		// Rate Limiting
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		// Clip pipeline
		Clip: ClipConfig{
			FreshnessWindow:    getEnvAsDuration("CLIP_FRESHNESS_WINDOW", 30*time.Minute),
			ProcessTimeout:     getEnvAsDuration("CLIP_PROCESS_TIMEOUT", 10*time.Minute),
			MaxSegmentDuration: getEnvAsDuration("CLIP_MAX_SEGMENT_DURATION", 10*time.Minute),
			SweepInterval:      getEnvAsDuration("CLIP_SWEEP_INTERVAL", 15*time.Minute),
			MaxFileAge:         getEnvAsDuration("CLIP_MAX_FILE_AGE", time.Hour),
		},

		// External tools
		Tools: ToolsConfig{
			DownloaderPath:    getEnv("DOWNLOADER_PATH", "yt-dlp"),
			TranscoderPath:    getEnv("TRANSCODER_PATH", "ffmpeg"),
			UserAgent:         getEnv("TOOL_USER_AGENT", defaultUserAgent),
			MaxConcurrent:     getEnvAsInt("TOOL_MAX_CONCURRENT", 4),
			LaunchesPerMinute: getEnvAsInt("TOOL_LAUNCHES_PER_MINUTE", 30),
		},

		// Middleware
		Middleware: defaultDevMiddleware(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdMiddleware()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}
	if err := validateTimeouts(c); err != nil {
		return err
	}
	return validateTools(c)
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.ClipsDir, "clips directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Clip.FreshnessWindow <= 0 {
		return fmt.Errorf("freshness window must be positive")
	}
	if c.Clip.ProcessTimeout <= 0 {
		return fmt.Errorf("process timeout must be positive")
	}
	return nil
}

func validateTools(c *Config) error {
	if c.Tools.DownloaderPath == "" {
		return fmt.Errorf("downloader path is required")
	}
	if c.Tools.TranscoderPath == "" {
		return fmt.Errorf("transcoder path is required")
	}
	if c.Tools.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent subprocesses must be positive")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
