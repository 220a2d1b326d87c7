package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 7878 {
		t.Errorf("default port = %d, want 7878", cfg.Port)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("default read_timeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("default session_ttl = %v, want 12h", cfg.SessionTTL)
	}
	if cfg.AuditPolicy != "errors" {
		t.Errorf("default audit_policy = %q, want errors", cfg.AuditPolicy)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FILEHOST_PORT", "9000")
	t.Setenv("FILEHOST_AUDIT_POLICY", "all")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Port)
	}
	if cfg.AuditPolicy != "all" {
		t.Errorf("audit_policy = %q, want all", cfg.AuditPolicy)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filehost.yaml")
	data := "port: 8111\nstatic_dir: /srv/static\nmax_conns: 8\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 8111 {
		t.Errorf("port = %d, want 8111", cfg.Port)
	}
	if cfg.StaticDir != "/srv/static" {
		t.Errorf("static_dir = %q", cfg.StaticDir)
	}
	if cfg.MaxConns != 8 {
		t.Errorf("max_conns = %d, want 8", cfg.MaxConns)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"negative port", func(c *Config) { c.Port = -1 }},
		{"zero max_conns", func(c *Config) { c.MaxConns = 0 }},
		{"bad audit policy", func(c *Config) { c.AuditPolicy = "verbose" }},
		{"s3 without creds", func(c *Config) { c.S3Endpoint = "minio:9000" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
