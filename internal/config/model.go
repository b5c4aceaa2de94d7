// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the tree `internal/config/loader.go` builds from
// three overlay layers:
//
//   • optional `conf/.env`                – dotenv values,
//   • `conf/global.yaml`                  – primary static file,
//   • `SODA_`-prefixed env overrides      – highest precedence.
//
// Any string value beginning with `vault:` is resolved through the Vault
// client *before* unmarshalling, so the model never stores Vault URIs, only
// plain strings.  Validation runs immediately after unmarshal; the app
// fails fast when required fields are missing.
//
// Notes
// -----
// • Struct tags use `koanf:"…"`; Koanf ignores `yaml` tags.
// • The `Paths` block is filled at runtime; YAML must not set it.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database configures the supervised MySQL pool.  RetryDelay is the fixed
// wait between reconnect attempts, ProbeInterval the liveness check period.
type Database struct {
	DSN           string        `koanf:"dsn" validate:"required"`
	RetryDelay    time.Duration `koanf:"retry_delay"`
	ProbeInterval time.Duration `koanf:"probe_interval"`
}

//
// Auth section
//

// Auth configures token issuance.  Secret is typically a `vault:` reference
// in YAML; TTL defaults to one hour when unset.
type Auth struct {
	Secret string        `koanf:"secret" validate:"required,min=16"`
	TTL    time.Duration `koanf:"ttl"`
	Issuer string        `koanf:"issuer"`
}

//
// Uploads section
//

// Uploads controls profile-picture storage.
type Uploads struct {
	Dir            string `koanf:"dir" validate:"required"`
	DefaultPicture string `koanf:"default_picture" validate:"required"`
}

//
// GeoIP section (optional)
//

// GeoIP points at a MaxMind database for access-log enrichment.  Empty path
// disables the lookup.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set via YAML or env.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Uploads  Uploads  `koanf:"uploads"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}
