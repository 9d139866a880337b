package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// builtinSecret is the shared secret compiled into the binary. The
// distributor's code-generation tool embeds the same value. This is a
// friction gate, not DRM: anyone able to read the binary can recover it.
const builtinSecret = "MAAS-PlanComplexity-2021"

// Config represents the complete application configuration.
type Config struct {
	Product Product       `yaml:"product" envconfig:"PRODUCT"`
	Gate    GateConfig    `yaml:"gate" envconfig:"GATE"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// Product identifies what is being gated. Constructed once per process
// start and read-only thereafter.
type Product struct {
	Name    string `yaml:"name" envconfig:"NAME" default:"PlanComplexity"`
	Version string `yaml:"version" envconfig:"VERSION"`

	// Secret overrides the compiled-in shared secret. Intended for tests
	// and for deployments that re-key without rebuilding.
	Secret string `yaml:"secret" envconfig:"SECRET"`

	// CodeFormat selects which access-code form is canonical for this
	// deployment: "short" (8 hex chars) or "long" (MAAS-XXXX-hash).
	// Exactly one format is accepted per deployment, never both.
	CodeFormat string `yaml:"code_format" envconfig:"CODE_FORMAT" default:"short"`
}

// GateConfig controls the build-expiration gate.
type GateConfig struct {
	// AllowOnMissingExpiry decides the safe default when the build
	// carries no parsable expiration date. Allowing is the deliberate
	// default: a broken release stamp should not brick the tool.
	AllowOnMissingExpiry bool `yaml:"allow_on_missing_expiry" envconfig:"ALLOW_ON_MISSING_EXPIRY" default:"true"`
}

// ServerConfig contains the loopback status API configuration.
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8150"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RateLimit       RateLimit     `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimit throttles activation requests on the HTTP surface.
type RateLimit struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"5"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/gate.log"`
}

// Load loads configuration from environment variables and, if present, a
// YAML file beside the executable (override with MAAS_CONFIG_FILE). File
// values take precedence over envconfig defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("MAAS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := configFilePath(); FileExists(configFile) {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileCfg, cfg)
	}

	if cfg.Product.Version == "" {
		cfg.Product.Version = Version
	}
	if cfg.Product.Secret == "" {
		cfg.Product.Secret = builtinSecret
	}
	return &cfg, nil
}

// EffectiveSecret returns the shared secret for code derivation.
func (p Product) EffectiveSecret() string {
	if p.Secret != "" {
		return p.Secret
	}
	return builtinSecret
}

func configFilePath() string {
	if path := os.Getenv("MAAS_CONFIG_FILE"); path != "" {
		return path
	}
	exe, err := os.Executable()
	if err != nil {
		return "gate.yaml"
	}
	return filepath.Join(filepath.Dir(exe), "gate.yaml")
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid yaml in %s: %w", path, err)
	}
	return &cfg, nil
}

// merge overlays file values onto the env-derived config. The file is
// the deployment's explicit choice, so its non-zero values override the
// envconfig defaults; the secret stays env-first so tests can inject one.
func merge(file, env Config) Config {
	if file.Product.Name != "" {
		env.Product.Name = file.Product.Name
	}
	if file.Product.Version != "" {
		env.Product.Version = file.Product.Version
	}
	if env.Product.Secret == "" {
		env.Product.Secret = file.Product.Secret
	}
	if file.Product.CodeFormat != "" {
		env.Product.CodeFormat = file.Product.CodeFormat
	}

	// Gate booleans stay env-driven: a yaml zero value is
	// indistinguishable from an omitted section.

	if file.Server.Enabled {
		env.Server.Enabled = true
	}
	if file.Server.Port != 0 {
		env.Server.Port = file.Server.Port
	}
	if file.Server.ReadTimeout != 0 {
		env.Server.ReadTimeout = file.Server.ReadTimeout
	}
	if file.Server.WriteTimeout != 0 {
		env.Server.WriteTimeout = file.Server.WriteTimeout
	}
	if file.Server.ShutdownTimeout != 0 {
		env.Server.ShutdownTimeout = file.Server.ShutdownTimeout
	}

	if file.Logging.Level != "" {
		env.Logging.Level = file.Logging.Level
	}
	if file.Logging.Output != "" {
		env.Logging.Output = file.Logging.Output
	}
	if file.Logging.FilePath != "" {
		env.Logging.FilePath = file.Logging.FilePath
	}
	return env
}
