// Package config loads server settings from an optional config file and
// FILEHOST_-prefixed environment variables, with sane defaults for a
// local run.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FILEHOST"

// Config is the full runtime configuration.
type Config struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	StaticDir   string        `mapstructure:"static_dir"`
	LogPath     string        `mapstructure:"log_path"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	MaxConns    int64         `mapstructure:"max_conns"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	AuditPolicy string        `mapstructure:"audit_policy"`

	// DatabaseURL switches credential storage from in-memory to
	// Postgres when set.
	DatabaseURL string `mapstructure:"database_url"`

	// S3 settings switch static storage from local disk to an
	// S3-compatible backend when the endpoint is set.
	S3Endpoint  string `mapstructure:"s3_endpoint"`
	S3AccessKey string `mapstructure:"s3_access_key"`
	S3SecretKey string `mapstructure:"s3_secret_key"`
	S3Bucket    string `mapstructure:"s3_bucket"`
	S3UseSSL    bool   `mapstructure:"s3_use_ssl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "::1")
	v.SetDefault("port", 7878)
	v.SetDefault("static_dir", "static")
	v.SetDefault("log_path", "server.log")
	v.SetDefault("read_timeout", 5*time.Second)
	v.SetDefault("max_conns", 64)
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("audit_policy", "errors")

	// Empty defaults so AutomaticEnv binds these during Unmarshal.
	v.SetDefault("database_url", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("s3_bucket", "filehost-static")
	v.SetDefault("s3_use_ssl", false)
}

// Load reads configuration. A missing config file is not an error;
// environment variables and defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1, got %d", c.MaxConns)
	}
	switch c.AuditPolicy {
	case "none", "errors", "all":
	default:
		return fmt.Errorf("unknown audit_policy %q", c.AuditPolicy)
	}
	if c.S3Endpoint != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return fmt.Errorf("s3_endpoint set without credentials")
	}
	return nil
}
