package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chris-regnier/nglint/internal/lint"
)

func ids(rs *lint.RuleSet) []string {
	var out []string
	for _, e := range rs.Entries() {
		out = append(out, e.ID)
	}
	return out
}

func TestMergeRules_HigherTierOverrides(t *testing.T) {
	system := &Config{Rules: Rules{lint.NewRuleSet().
		Set("no-input-rename", lint.Enabled()).
		Set("component-class-suffix", lint.Enabled())}}
	project := &Config{Rules: Rules{lint.NewRuleSet().
		Set("component-class-suffix", lint.Enabled("Page")).
		Set("no-input-rename", lint.Options{Enabled: false})}}

	merged := MergeConfigs(system, project)
	rs := merged.Rules.Value()

	got := ids(rs)
	if len(got) != 2 || got[0] != "no-input-rename" || got[1] != "component-class-suffix" {
		t.Errorf("expected first-tier order preserved, got %v", got)
	}
	opts, _ := rs.Get("no-input-rename")
	if opts.Enabled {
		t.Error("expected project tier to disable no-input-rename")
	}
	opts, _ = rs.Get("component-class-suffix")
	if len(opts.Args) != 1 || opts.Args[0] != "Page" {
		t.Errorf("expected project args, got %v", opts.Args)
	}
}

func TestMergeRules_HigherTierAddsNew(t *testing.T) {
	system := &Config{Rules: Rules{lint.NewRuleSet().Set("no-input-rename", lint.Enabled())}}
	project := &Config{Rules: Rules{lint.NewRuleSet().Set("template-no-autofocus", lint.Enabled())}}
	merged := MergeConfigs(system, project)
	if merged.Rules.Len() != 2 {
		t.Errorf("expected 2 rules, got %d", merged.Rules.Len())
	}
}

func TestMergeConfigs_Sections(t *testing.T) {
	project := &Config{
		Server:  ServerConfig{Addr: ":9000"},
		Gate:    GateConfig{MaxFailures: 5},
		Session: SessionConfig{DebounceDuration: "1s"},
	}
	merged := MergeConfigs(SystemDefaults(), nil, project)
	if merged.Server.Addr != ":9000" {
		t.Errorf("expected addr override, got %q", merged.Server.Addr)
	}
	if merged.Server.CacheSize != 256 {
		t.Errorf("expected default cache size kept, got %d", merged.Server.CacheSize)
	}
	if merged.Gate.MaxFailures != 5 {
		t.Errorf("expected max failures 5, got %d", merged.Gate.MaxFailures)
	}
	if merged.Telemetry.ServiceName != "nglint" {
		t.Errorf("expected default service name, got %q", merged.Telemetry.ServiceName)
	}
	d, err := merged.Session.Debounce()
	if err != nil || d != time.Second {
		t.Errorf("expected 1s debounce, got %v, %v", d, err)
	}
}

func TestLoadFromFile_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nglint.yaml")
	content := `rules:
  template-no-autofocus: true
  component-selector: [true, element, [app, lib], kebab-case]
  no-input-rename: false
server:
  addr: ":8080"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config")
	}

	got := ids(cfg.Rules.Value())
	want := []string{"template-no-autofocus", "component-selector", "no-input-rename"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rule %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	opts, _ := cfg.Rules.Get("component-selector")
	if !opts.Enabled || len(opts.Args) != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if prefixes, ok := opts.Args[1].([]any); !ok || len(prefixes) != 2 {
		t.Errorf("expected nested prefix list, got %#v", opts.Args[1])
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected addr :8080, got %q", cfg.Server.Addr)
	}
}

func TestLoadFromFile_InvalidRule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nglint.yaml")
	if err := os.WriteFile(path, []byte("rules:\n  no-input-rename: [app]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for rule options without leading boolean")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := LoadFromFile("/nonexistent/path.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Error("expected nil config for missing file")
	}
}

func TestLoadTiered(t *testing.T) {
	dir := t.TempDir()
	machineConf := filepath.Join(dir, "machine.yaml")
	os.WriteFile(machineConf, []byte("rules:\n  no-input-rename: false\n"), 0644)
	projectConf := filepath.Join(dir, "project.yaml")
	os.WriteFile(projectConf, []byte("rules:\n  template-no-autofocus: true\n"), 0644)

	cfg, err := LoadTiered(machineConf, projectConf)
	if err != nil {
		t.Fatal(err)
	}
	rs := cfg.Rules.Value()
	if opts, ok := rs.Get("no-input-rename"); !ok || opts.Enabled {
		t.Error("expected machine tier to disable no-input-rename")
	}
	if _, ok := rs.Get("template-no-autofocus"); !ok {
		t.Error("expected project rule template-no-autofocus")
	}
	if _, ok := rs.Get("component-class-suffix"); !ok {
		t.Error("expected system default component-class-suffix")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad protocol", func(c *Config) { c.Telemetry.Protocol = "udp" }, true},
		{"bad sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, true},
		{"bad debounce", func(c *Config) { c.Session.DebounceDuration = "soon" }, true},
		{"negative debounce", func(c *Config) { c.Session.DebounceDuration = "-1s" }, true},
		{"negative cache", func(c *Config) { c.Server.CacheSize = -1 }, true},
		{"negative gate", func(c *Config) { c.Gate.MaxFailures = -1 }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := SystemDefaults()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"NGLINT_ADDR":              "127.0.0.1:9999",
		"NGLINT_TELEMETRY_ENABLED": "true",
	}
	cfg := SystemDefaults()
	if err := ApplyEnv(cfg, func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr override, got %q", cfg.Server.Addr)
	}
	if !cfg.Telemetry.Enabled {
		t.Error("expected telemetry enabled")
	}

	env["NGLINT_TELEMETRY_ENABLED"] = "maybe"
	if err := ApplyEnv(cfg, func(k string) string { return env[k] }); err == nil {
		t.Error("expected error for invalid boolean")
	}
}

func TestProjectPath(t *testing.T) {
	if got := ProjectPath("/repo"); got != filepath.Join("/repo", ".nglint", "nglint.yaml") {
		t.Errorf("unexpected project path %q", got)
	}
}
