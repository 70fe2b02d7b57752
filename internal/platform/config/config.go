package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	pstrings "eudrgate/pkg/platform/strings"
)

const configPathEnv = "EUDRGATE_CONFIG"

// Config holds everything the binaries need. Values come from an optional
// YAML file, overridden by environment variables (a local .env is honored
// when present) so main stays lean.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Registry   RegistryConfig   `yaml:"registry"`
	Validation ValidationConfig `yaml:"validation"`
	Redis      RedisConfig      `yaml:"redis"`
	Audit      AuditConfig      `yaml:"audit"`
	Trader     TraderConfig     `yaml:"trader"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LedgerConfig selects and parameterizes the ledger backend.
type LedgerConfig struct {
	// Backend is "file", "postgres" or "memory".
	Backend     string `yaml:"backend"`
	FilePath    string `yaml:"filePath"`
	PostgresDSN string `yaml:"postgresDsn"`
}

// RegistryConfig describes how to reach the attestation registry.
type RegistryConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	BearerToken string        `yaml:"bearerToken"`
	Timeout     time.Duration `yaml:"timeout"`
	// Mock swaps in the deterministic in-process registry.
	Mock bool `yaml:"mock"`
}

// ValidationConfig bounds the validator's registry fan-out.
type ValidationConfig struct {
	Concurrency int           `yaml:"concurrency"`
	CacheTTL    time.Duration `yaml:"cacheTtl"`
}

// RedisConfig wires the optional shared lookup cache.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuditConfig wires the optional Kafka audit trail.
type AuditConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// TraderConfig carries the operator identity stamped on every consolidated
// statement, mirroring what the registry expects in a TRADER submission.
type TraderConfig struct {
	OperatorName    string `yaml:"operatorName"`
	OperatorCountry string `yaml:"operatorCountry"`
	OperatorAddress string `yaml:"operatorAddress"`
	OperatorEmail   string `yaml:"operatorEmail"`
	HSHeading       string `yaml:"hsHeading"`
	GoodsDesc       string `yaml:"goodsDescription"`
	QuantityUnit    string `yaml:"quantityUnit"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides on top of the defaults.
func Load() Config {
	// Best effort: a missing .env is the normal case outside development.
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Ledger: LedgerConfig{
			Backend:  "file",
			FilePath: "data/ledger.json",
		},
		Registry: RegistryConfig{
			Timeout: 15 * time.Second,
			Mock:    true,
		},
		Validation: ValidationConfig{
			Concurrency: 4,
			CacheTTL:    5 * time.Minute,
		},
		Audit: AuditConfig{Topic: "eudrgate.ingestions"},
		Trader: TraderConfig{
			OperatorName:    "EMMELIBRI",
			OperatorCountry: "IT",
			OperatorAddress: "Via Roma 1, Milano",
			OperatorEmail:   "compliance@example.it",
			HSHeading:       "4901",
			GoodsDesc:       "Libri",
			QuantityUnit:    "KG",
		},
	}
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Server.Addr, "EUDRGATE_ADDR")
	setString(&c.Ledger.Backend, "LEDGER_BACKEND")
	setString(&c.Ledger.FilePath, "LEDGER_FILE")
	setString(&c.Ledger.PostgresDSN, "LEDGER_POSTGRES_DSN")
	setString(&c.Registry.BaseURL, "REGISTRY_BASE_URL")
	setString(&c.Registry.BearerToken, "REGISTRY_BEARER_TOKEN")
	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Audit.Topic, "AUDIT_KAFKA_TOPIC")

	if v := os.Getenv("REGISTRY_MOCK"); v != "" {
		c.Registry.Mock = v == "true" || v == "1"
	}
	if v := os.Getenv("REGISTRY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Registry.Timeout = d
		}
	}
	if v := os.Getenv("VALIDATION_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Validation.Concurrency = n
		}
	}
	if v := os.Getenv("VALIDATION_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Validation.CacheTTL = d
		}
	}
	if v := os.Getenv("AUDIT_KAFKA_BROKERS"); v != "" {
		c.Audit.Brokers = pstrings.DedupeAndTrim(strings.Split(v, ","))
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
