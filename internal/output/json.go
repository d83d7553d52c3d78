package output

import (
	"fmt"

	"github.com/chris-regnier/nglint/internal/lint"
)

// JSONFormatter renders failures as the wire JSON array.
type JSONFormatter struct{}

// Format serializes failures in order. An empty list renders as [].
func (f *JSONFormatter) Format(failures []lint.Failure) (string, error) {
	data, err := lint.MarshalFailures(failures)
	if err != nil {
		return "", fmt.Errorf("json formatter: %w", err)
	}
	return string(data), nil
}
