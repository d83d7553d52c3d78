package lint

import (
	"errors"
	"fmt"
)

// ErrUnknownRule is returned when a RuleSet names a rule no registry knows.
var ErrUnknownRule = errors.New("unknown rule")

// RuleApplicationError wraps an error or panic raised while a rule was
// applied to a tree.
type RuleApplicationError struct {
	Rule string
	Err  error
}

func (e *RuleApplicationError) Error() string {
	return fmt.Sprintf("rule %s: %v", e.Rule, e.Err)
}

func (e *RuleApplicationError) Unwrap() error {
	return e.Err
}

// recovered converts a recovered panic value into an error.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", v)
}
