package config

import "github.com/chris-regnier/nglint/internal/lint"

// SystemDefaults returns the built-in recommended rules and service
// settings.
func SystemDefaults() *Config {
	rules := lint.NewRuleSet()
	for _, id := range []string{
		"use-input-property-decorator",
		"use-output-property-decorator",
		"use-host-property-decorator",
		"no-input-rename",
		"no-output-rename",
		"no-output-on-prefix",
		"no-output-native",
		"use-pipe-transform-interface",
		"component-class-suffix",
		"directive-class-suffix",
		"template-banana-in-box",
		"template-no-distracting-elements",
	} {
		rules.Set(id, lint.Enabled())
	}

	return &Config{
		Rules: Rules{rules},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			ServiceName: "nglint",
			SampleRate:  1.0,
		},
		Session: SessionConfig{
			DebounceDuration: "300ms",
		},
		Server: ServerConfig{
			Addr:      ":7070",
			CacheSize: 256,
		},
		Gate: GateConfig{
			MaxFailures: 0,
		},
	}
}
