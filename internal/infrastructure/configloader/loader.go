package configloader

import (
	"errors"
	"fmt"
	"os"
	"time"

	"netprofile/internal/pkg/utils"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is where the binaries look for the application config.
	DefaultConfigPath = "config/config.yml"
	// DefaultProfileName is the profile used when none is requested.
	DefaultProfileName = "development"

	envServerPort     = "NETPROFILE_SERVER_PORT"
	envLogLevel       = "NETPROFILE_LOG_LEVEL"
	envGasOracleKey   = "NETPROFILE_GAS_ORACLE_API_KEY"
	envMaxConcurrency = "NETPROFILE_MAX_CONCURRENT_ROUTINES"
)

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port                   string `yaml:"port"`
	ReadTimeoutSeconds     int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds    int    `yaml:"writeTimeoutSeconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdownTimeoutSeconds"`
	SwaggerEnabled         bool   `yaml:"swaggerEnabled"`
	SwaggerFile            string `yaml:"swaggerFile"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NetworksConfig points at the profile document.
type NetworksConfig struct {
	File    string `yaml:"file"`    // empty means the embedded default document
	Default string `yaml:"default"` // profile used when none is requested
}

// PerformanceConfig bounds how hard nodes are probed.
type PerformanceConfig struct {
	MaxConcurrentRoutines    int     `yaml:"max_concurrent_routines"`
	ConnectionTimeoutSeconds int     `yaml:"connection_timeout_seconds"`
	RPCCallTimeoutSeconds    int     `yaml:"rpc_call_timeout_seconds"`
	RateLimit                float64 `yaml:"rate_limit"` // probes per second
	BurstLimit               int     `yaml:"burst_limit"`
	StatusCacheTTLSeconds    int     `yaml:"status_cache_ttl_seconds"`
}

// GasOracleConfig configures the reference gas price source. An empty BaseURL disables it.
type GasOracleConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	CacheTTLMinutes      int     `yaml:"cacheTTLMinutes"`
	Tolerance            float64 `yaml:"tolerance"` // allowed relative drift, 0.25 = 25%
}

// Config is the application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Networks    NetworksConfig    `yaml:"networks"`
	Performance PerformanceConfig `yaml:"performance"`
	GasOracle   GasOracleConfig   `yaml:"gasOracle"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML config at path and fills unset values with defaults.
// A missing file at DefaultConfigPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.GasOracle.Tolerance < 0 {
		return nil, fmt.Errorf("invalid config %s: gasOracle.tolerance must not be negative", path)
	}
	return &cfg, nil
}

// applyEnv lets the environment override values that usually differ per deployment.
func (cfg *Config) applyEnv() {
	cfg.Server.Port = utils.GetEnv(envServerPort, cfg.Server.Port)
	cfg.Logging.Level = utils.GetEnv(envLogLevel, cfg.Logging.Level)
	cfg.GasOracle.APIKey = utils.GetEnv(envGasOracleKey, cfg.GasOracle.APIKey)
	cfg.Performance.MaxConcurrentRoutines = utils.GetEnvInt(envMaxConcurrency, cfg.Performance.MaxConcurrentRoutines)
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 10
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}
	if cfg.Server.SwaggerFile == "" {
		cfg.Server.SwaggerFile = "./docs/swagger.yaml"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Networks.Default == "" {
		cfg.Networks.Default = DefaultProfileName
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.ConnectionTimeoutSeconds <= 0 {
		cfg.Performance.ConnectionTimeoutSeconds = 5
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.RateLimit <= 0 {
		cfg.Performance.RateLimit = 20
	}
	if cfg.Performance.BurstLimit <= 0 {
		cfg.Performance.BurstLimit = cfg.Performance.MaxConcurrentRoutines
	}
	if cfg.Performance.StatusCacheTTLSeconds <= 0 {
		cfg.Performance.StatusCacheTTLSeconds = 15
	}

	if cfg.GasOracle.RequestTimeoutMillis <= 0 {
		cfg.GasOracle.RequestTimeoutMillis = 10000
	}
	if cfg.GasOracle.CacheTTLMinutes <= 0 {
		cfg.GasOracle.CacheTTLMinutes = 5
	}
	if cfg.GasOracle.Tolerance == 0 {
		cfg.GasOracle.Tolerance = 0.5
	}
}

// ConnectionTimeout is the dial timeout for node clients.
func (p PerformanceConfig) ConnectionTimeout() time.Duration {
	return time.Duration(p.ConnectionTimeoutSeconds) * time.Second
}

// RPCCallTimeout bounds one probe batch.
func (p PerformanceConfig) RPCCallTimeout() time.Duration {
	return time.Duration(p.RPCCallTimeoutSeconds) * time.Second
}

// StatusCacheTTL is how long a probe result is served from cache.
func (p PerformanceConfig) StatusCacheTTL() time.Duration {
	return time.Duration(p.StatusCacheTTLSeconds) * time.Second
}

// RequestTimeout bounds one gas oracle request.
func (g GasOracleConfig) RequestTimeout() time.Duration {
	return time.Duration(g.RequestTimeoutMillis) * time.Millisecond
}

// CacheTTL is how long a gas reference is reused.
func (g GasOracleConfig) CacheTTL() time.Duration {
	return time.Duration(g.CacheTTLMinutes) * time.Minute
}

// Enabled reports whether a gas oracle is configured.
func (g GasOracleConfig) Enabled() bool {
	return g.BaseURL != ""
}
