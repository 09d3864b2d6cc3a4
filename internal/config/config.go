package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	OIDC    OIDCConfig    `mapstructure:"oidc"`
	Log     LogConfig     `mapstructure:"log"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Media   MediaConfig   `mapstructure:"media"`
	Views   ViewsConfig   `mapstructure:"views"`
	Auth    AuthConfig    `mapstructure:"auth"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"base_url"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	DSN string `mapstructure:"dsn"`
}

// OIDCConfig holds OIDC client configuration.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// SessionConfig holds editor session configuration.
type SessionConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// CacheConfig holds the rendered-content cache configuration.
type CacheConfig struct {
	FilePath string `mapstructure:"file_path"`
	TTL      int    `mapstructure:"ttl"` // seconds
}

// MediaConfig controls where article images are stored.
type MediaConfig struct {
	Driver      string   `mapstructure:"driver"` // "local" or "s3"
	Root        string   `mapstructure:"root"`
	Subdir      string   `mapstructure:"subdir"`
	Required    bool     `mapstructure:"required"`
	MaxUploadMB int64    `mapstructure:"max_upload_mb"`
	S3          S3Config `mapstructure:"s3"`
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ViewsConfig holds the view-count cookie settings.
type ViewsConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	MaxEntries int    `mapstructure:"max_entries"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// AuthConfig lists OIDC subjects granted the editor role at startup.
type AuthConfig struct {
	Editors []string `mapstructure:"editors"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("db.dsn", "news:news@tcp(localhost:3306)/news?parseTime=true")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("session.lifetime", 24)
	viper.SetDefault("cache.file_path", "cache.db")
	viper.SetDefault("cache.ttl", 600)
	viper.SetDefault("media.driver", "local")
	viper.SetDefault("media.root", "./uploads")
	viper.SetDefault("media.subdir", "article-images")
	viper.SetDefault("media.required", true)
	viper.SetDefault("media.max_upload_mb", 10)
	viper.SetDefault("views.cookie_name", "Views")
	viper.SetDefault("views.max_entries", 200)
	viper.SetDefault("views.max_age_days", 365)

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-news-app/")
	viper.AddConfigPath("$HOME/.go-news-app")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("NEWS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
