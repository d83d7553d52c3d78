package rules

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/nglint/internal/lint"
)

//go:embed metadata.yaml
var metadataYAML []byte

// MetadataFile is the documentation source for rules.
type MetadataFile struct {
	Rules []lint.Metadata `yaml:"rules"`
}

// ParseMetadataFile decodes and validates rule documentation.
func ParseMetadataFile(data []byte) (*MetadataFile, error) {
	var mf MetadataFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing rule metadata: %w", err)
	}

	seen := make(map[string]bool)
	for i := range mf.Rules {
		m := &mf.Rules[i]
		if err := validateMetadata(m); err != nil {
			return nil, fmt.Errorf("rule %q (index %d): %w", m.Name, i, err)
		}
		if seen[m.Name] {
			return nil, fmt.Errorf("duplicate rule name %q", m.Name)
		}
		seen[m.Name] = true
	}
	return &mf, nil
}

func validateMetadata(m *lint.Metadata) error {
	if m.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if m.Description == "" {
		return fmt.Errorf("missing required field: description")
	}
	switch m.Type {
	case lint.TypeFunctionality, lint.TypeMaintainability, lint.TypeStyle:
	default:
		return fmt.Errorf("invalid type %q (must be functionality, maintainability or style)", m.Type)
	}
	return nil
}

func defaultMetadata() (map[string]lint.Metadata, error) {
	mf, err := ParseMetadataFile(metadataYAML)
	if err != nil {
		return nil, err
	}
	out := make(map[string]lint.Metadata, len(mf.Rules))
	for _, m := range mf.Rules {
		out[m.Name] = m
	}
	return out, nil
}
