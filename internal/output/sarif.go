package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/sarif"
)

// SARIFFormatter renders failures as a SARIF 2.1.0 JSON document enriched
// with GitHub Code Scanning properties (partial fingerprints, precision
// and invocation metadata).
type SARIFFormatter struct {
	Rules   []lint.Metadata
	Version string
}

// Format builds the log and serializes it as indented JSON with a trailing
// newline.
func (f *SARIFFormatter) Format(failures []lint.Failure) (string, error) {
	log := sarif.NewBuilder("nglint", f.Version).
		AddRules(f.Rules).
		AddFailures(failures).
		Build()

	for i := range log.Runs {
		enrichRun(&log.Runs[i])
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return "", fmt.Errorf("sarif formatter: %w", err)
	}
	return string(data) + "\n", nil
}

// enrichRun applies GitHub Code Scanning enrichments to a single run.
func enrichRun(run *sarif.Run) {
	run.Tool.Driver.InformationURI = "https://github.com/chris-regnier/nglint"

	wd, _ := os.Getwd()
	run.Invocations = []sarif.Invocation{{
		WorkingDirectory:    sarif.ArtifactLocation{URI: wd},
		ExecutionSuccessful: true,
	}}

	for j := range run.Results {
		enrichResult(&run.Results[j])
	}
}

// enrichResult adds a partial fingerprint and precision to a result.
func enrichResult(r *sarif.Result) {
	if r.PartialFingerprints == nil {
		r.PartialFingerprints = make(map[string]string)
	}
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}

	uri := ""
	startLine := 0
	if len(r.Locations) > 0 {
		loc := r.Locations[0]
		uri = loc.PhysicalLocation.ArtifactLocation.URI
		startLine = loc.PhysicalLocation.Region.StartLine
	}

	fingerprintInput := fmt.Sprintf("%s|%s|%d|%s", r.RuleID, uri, startLine, r.Message.Text)
	hash := sha256.Sum256([]byte(fingerprintInput))
	r.PartialFingerprints["primaryLocationLineHash"] = fmt.Sprintf("%x", hash[:16])

	// Syntactic rules are exact.
	r.Properties["precision"] = "very-high"
}
