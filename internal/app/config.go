package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (STORE_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (STORE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	JWTSecret   string `usage:"HMAC secret for admin session tokens (STORE_JWT_SECRET)" flag:"jwt-secret"`
	// SecureCookies marks the admin session cookie Secure. Disable only for
	// plain-HTTP local development.
	SecureCookies bool `default:"true" usage:"Mark the admin session cookie Secure" flag:"secure-cookies"`
	Media         MediaConfig
	Upload        UploadConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// MediaConfig configures the external media host holding product images
// and videos.
type MediaConfig struct {
	BaseURL   string `default:"https://api.cloudinary.com/v1_1" usage:"Media host API root" flag:"media-base-url"`
	CloudName string `usage:"Media host account name (STORE_MEDIA_CLOUD_NAME)" flag:"media-cloud-name"`
	APIKey    string `usage:"Media host API key" flag:"media-api-key"`
	APISecret string `usage:"Media host API secret" flag:"media-api-secret"`
	Folder    string `default:"store" usage:"Upload folder on the media host" flag:"media-folder"`
	// URLPrefix filters product media URLs: only URLs under this prefix
	// are accepted into the catalog. Derived from CloudName when unset;
	// empty disables the filter and accepts any URL.
	URLPrefix string `usage:"Accepted delivery URL prefix for product media" flag:"media-url-prefix"`
}

// UploadConfig caps admin media uploads.
type UploadConfig struct {
	MaxBytes int64 `default:"104857600" usage:"Max upload size in bytes" flag:"upload-max-bytes"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (session cookie)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "STORE",
		Files:     []string{"config.yaml", "/etc/store/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set STORE_DATABASE_URL or DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret is required: set STORE_JWT_SECRET")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables
// (Railway, Render, etc.) that use standard names like DATABASE_URL and
// PORT to the application's STORE_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
	if c.Media.URLPrefix == "" && c.Media.CloudName != "" {
		c.Media.URLPrefix = "https://res.cloudinary.com/" + c.Media.CloudName + "/"
	}
}
