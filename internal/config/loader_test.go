// internal/config/loader_test.go

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
http:
  listen_addr: ":8080"
database:
  dsn: "soda:pw@tcp(127.0.0.1:3306)/soda?parseTime=true"
  retry_delay: 5s
  probe_interval: 15s
auth:
  secret: "0123456789abcdef0123456789abcdef"
  ttl: 1h
  issuer: "soda"
uploads:
  dir: "src/profilepicture"
  default_picture: "src/profilepicture/defaultProfile.png"
`

func writeConf(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoad(t *testing.T) {
	t.Setenv("SODA_ROOT", writeConf(t, testYAML))

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Database.RetryDelay != 5*time.Second {
		t.Errorf("retry_delay = %v", cfg.Database.RetryDelay)
	}
	if cfg.Auth.TTL != time.Hour {
		t.Errorf("ttl = %v", cfg.Auth.TTL)
	}
	if got := Get(); got == nil || got.HTTP.ListenAddr != ":8080" {
		t.Errorf("Get() = %+v", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SODA_ROOT", writeConf(t, testYAML))
	t.Setenv("SODA_HTTP__LISTEN_ADDR", ":9090")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want env override :9090", cfg.HTTP.ListenAddr)
	}
}

func TestValidationFailsFast(t *testing.T) {
	// Secret below the minimum length must abort startup.
	bad := testYAML
	t.Setenv("SODA_ROOT", writeConf(t, bad))
	t.Setenv("SODA_AUTH__SECRET", "short")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("Load accepted an undersized auth secret")
	}
}
