package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	cfg, err := load("", map[string]string{
		"AUTH_JWT_SECRET": "secret",
		"AUTH_TOKEN_TTL":  "15m",
		"CURRENCY":        "eur",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.StorageDriver != "local" || cfg.StorageRoot != "static/profile_pics" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TokenTTL != 15*time.Minute || cfg.Currency != "EUR" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoicing.yaml")
	data := "http_addr: \":9090\"\njwt_secret: from-file\nstorage_driver: s3\ns3_bucket: pics\ntoken_ttl: 2h\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := load(path, map[string]string{"AUTH_JWT_SECRET": "from-env"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.StorageDriver != "s3" || cfg.S3Bucket != "pics" || cfg.TokenTTL != 2*time.Hour {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("expected env to win, got %q", cfg.JWTSecret)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	_, err := load("", map[string]string{"STORAGE_DRIVER": "s3"})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"AUTH_JWT_SECRET", "S3_BUCKET"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in %v", want, err)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml"), map[string]string{}); err == nil {
		t.Fatalf("expected read error")
	}
}
