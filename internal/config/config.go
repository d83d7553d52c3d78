package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/nglint/internal/lint"
)

// Config holds the full nglint configuration.
type Config struct {
	Rules     Rules           `yaml:"rules"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Session   SessionConfig   `yaml:"session"`
	Server    ServerConfig    `yaml:"server"`
	Gate      GateConfig      `yaml:"gate"`
}

// Rules is the ordered rules: mapping of a config file. Values are true,
// false or [true, args...].
type Rules struct {
	*lint.RuleSet
}

// UnmarshalYAML decodes the mapping in document order.
func (r *Rules) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: rules must be a mapping", value.Line)
	}
	rs := lint.NewRuleSet()
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var raw any
		if err := val.Decode(&raw); err != nil {
			return fmt.Errorf("line %d: rule %s: %w", val.Line, key.Value, err)
		}
		opts, err := lint.ParseOptions(raw)
		if err != nil {
			return fmt.Errorf("line %d: rule %s: %w", val.Line, key.Value, err)
		}
		rs.Set(key.Value, opts)
	}
	r.RuleSet = rs
	return nil
}

// Value returns the rule set, never nil.
func (r Rules) Value() *lint.RuleSet {
	if r.RuleSet == nil {
		return lint.NewRuleSet()
	}
	return r.RuleSet
}

// TelemetryConfig configures the OpenTelemetry exporters.
type TelemetryConfig struct {
	Enabled        bool              `yaml:"enabled"`
	Endpoint       string            `yaml:"endpoint"`
	Protocol       string            `yaml:"protocol"` // "grpc" or "http"
	Insecure       bool              `yaml:"insecure"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	ServiceName    string            `yaml:"service_name"`
	ServiceVersion string            `yaml:"service_version"`
	SampleRate     float64           `yaml:"sample_rate"`
}

// SessionConfig configures live editor sessions.
type SessionConfig struct {
	// DebounceDuration is a Go duration string, e.g. "300ms".
	DebounceDuration string `yaml:"debounce_duration"`
}

// Debounce parses DebounceDuration.
func (s SessionConfig) Debounce() (time.Duration, error) {
	if s.DebounceDuration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.DebounceDuration)
	if err != nil {
		return 0, fmt.Errorf("session.debounce_duration: %w", err)
	}
	return d, nil
}

// ServerConfig configures nglint serve.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	CacheSize int    `yaml:"cache_size"`
}

// GateConfig configures the policy gate of nglint lint --gate.
type GateConfig struct {
	// PolicyDir holds .rego files overriding the embedded policy.
	PolicyDir   string `yaml:"policy_dir"`
	MaxFailures int    `yaml:"max_failures"`
}

// Validate checks that the configuration is valid and ready to use
func (c *Config) Validate() error {
	if c.Telemetry.Protocol != "" && c.Telemetry.Protocol != "grpc" && c.Telemetry.Protocol != "http" {
		return fmt.Errorf("telemetry.protocol must be 'grpc' or 'http', got: %s", c.Telemetry.Protocol)
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got: %g", c.Telemetry.SampleRate)
	}
	d, err := c.Session.Debounce()
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("session.debounce_duration must not be negative")
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative, got: %d", c.Server.CacheSize)
	}
	if c.Gate.MaxFailures < 0 {
		return fmt.Errorf("gate.max_failures must not be negative, got: %d", c.Gate.MaxFailures)
	}
	return nil
}

// MergeConfigs merges configs in order of increasing precedence.
// Later configs override earlier ones. Non-zero fields override; rules
// are merged per id, keeping the position of the first tier that names
// them.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{Rules: Rules{lint.NewRuleSet()}}

	for _, cfg := range configs {
		if cfg == nil {
			continue
		}

		for _, e := range cfg.Rules.Value().Entries() {
			result.Rules.RuleSet.Set(e.ID, e.Options)
		}

		t := cfg.Telemetry
		if t.Enabled {
			result.Telemetry.Enabled = true
		}
		if t.Endpoint != "" {
			result.Telemetry.Endpoint = t.Endpoint
		}
		if t.Protocol != "" {
			result.Telemetry.Protocol = t.Protocol
		}
		if t.Insecure {
			result.Telemetry.Insecure = true
		}
		if len(t.Headers) > 0 {
			result.Telemetry.Headers = t.Headers
		}
		if t.ServiceName != "" {
			result.Telemetry.ServiceName = t.ServiceName
		}
		if t.ServiceVersion != "" {
			result.Telemetry.ServiceVersion = t.ServiceVersion
		}
		if t.SampleRate != 0 {
			result.Telemetry.SampleRate = t.SampleRate
		}

		if cfg.Session.DebounceDuration != "" {
			result.Session.DebounceDuration = cfg.Session.DebounceDuration
		}
		if cfg.Server.Addr != "" {
			result.Server.Addr = cfg.Server.Addr
		}
		if cfg.Server.CacheSize != 0 {
			result.Server.CacheSize = cfg.Server.CacheSize
		}
		if cfg.Gate.PolicyDir != "" {
			result.Gate.PolicyDir = cfg.Gate.PolicyDir
		}
		if cfg.Gate.MaxFailures != 0 {
			result.Gate.MaxFailures = cfg.Gate.MaxFailures
		}
	}

	return result
}

// LoadFromFile reads a YAML config file. Returns nil, nil if the file doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project config,
// and merges them in order of increasing precedence.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return MergeConfigs(system, machine, project), nil
}

// MachinePath returns the per-user config file location.
func MachinePath() string {
	return os.ExpandEnv("$HOME/.config/nglint/nglint.yaml")
}

// ProjectPath returns the config file location of the project rooted at dir.
func ProjectPath(dir string) string {
	return filepath.Join(dir, ".nglint", "nglint.yaml")
}

// ApplyEnv overrides cfg from NGLINT_* environment variables read
// through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) error {
	if addr := getenv("NGLINT_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if v := getenv("NGLINT_TELEMETRY_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("NGLINT_TELEMETRY_ENABLED: %w", err)
		}
		cfg.Telemetry.Enabled = enabled
	}
	return nil
}
