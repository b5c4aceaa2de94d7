// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
-------
`Load()` builds one immutable `Config` from three layers (highest precedence
last):

 1. Optional `conf/.env` dotenv file.
 2. `conf/global.yaml`.
 3. Environment variables prefixed `SODA_`, where `__` maps to “.”
    (e.g., `SODA_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, string leaves that carry the `vault:` prefix are resolved
through the Vault client, then the tree is unmarshalled into typed structs,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.

Instrumentation uses the global sugared logger so early boot issues surface
on the bootstrap console before the file logger is installed.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/saessac/soda-server/internal/vault"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SODA_ROOT or climbs directories until conf/global.yaml is
// found, so `go run ./cmd/api` works from any sub-directory.  Falls back to
// the executable heuristic for the production layout.
func rootDir() string {
	if r := os.Getenv("SODA_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, and env overrides, resolves Vault references,
// validates, and caches the result.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env is optional; no error when missing.
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: SODA_AUTH__SECRET → auth.secret
	if err := k.Load(env.Provider("SODA_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "SODA_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveVaultRefs(ctx, k); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen", cfg.HTTP.ListenAddr,
		"retry_delay", cfg.Database.RetryDelay,
		"token_ttl", cfg.Auth.TTL,
	)
	return &cfg, nil
}

// Get returns the last loaded Config, or nil before the first Load.
func Get() *Config { return current.Load() }

/*────────────────────────── vault resolution ───────────────────────────────*/

// resolveVaultRefs rewrites every `vault:`-prefixed string leaf in place.
// The Vault client is only constructed when at least one reference exists,
// so deployments without Vault need no VAULT_ADDR.
func resolveVaultRefs(ctx context.Context, k *koanf.Koanf) error {
	var refs []string
	for key, val := range k.All() {
		if s, ok := val.(string); ok && vault.IsRef(s) {
			refs = append(refs, key)
		}
	}
	if len(refs) == 0 {
		return nil
	}

	cli, err := vault.New(ctx, zap.S().Infof)
	if err != nil {
		return err
	}
	for _, key := range refs {
		plain, err := cli.Resolve(ctx, k.String(key))
		if err != nil {
			return err
		}
		if err := k.Set(key, plain); err != nil {
			return err
		}
	}
	return nil
}
