package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chris-regnier/nglint/internal/lint"
)

// MarkdownFormatter renders failures as GitHub-Flavored Markdown suitable
// for PR comments. Uses collapsible <details> sections for failures and
// severity emojis for quick visual scanning.
type MarkdownFormatter struct {
	Rules []lint.Metadata
}

// severityPriority returns a sort priority for severity levels.
// Lower values sort first: error (0) > warning (1) > note (2).
func severityPriority(level string) int {
	switch level {
	case "error":
		return 0
	case "warning":
		return 1
	case "note":
		return 2
	default:
		return 3
	}
}

// severityEmoji returns the GitHub emoji shortcode for a severity level.
func severityEmoji(level string) string {
	switch level {
	case "error":
		return ":red_circle:"
	case "warning":
		return ":warning:"
	case "note":
		return ":information_source:"
	default:
		return ":grey_question:"
	}
}

// Format produces GFM Markdown output from the failures.
func (f *MarkdownFormatter) Format(failures []lint.Failure) (string, error) {
	var b strings.Builder
	lv := levels(f.Rules)

	fileSet := make(map[string]struct{})
	ruleCounts := make(map[string]int)
	for _, fl := range failures {
		fileSet[fl.FileName] = struct{}{}
		ruleCounts[fl.RuleName]++
	}

	b.WriteString("## nglint Summary\n\n")
	fmt.Fprintf(&b, "**Failures:** %d | **Files:** %d\n", len(failures), len(fileSet))

	if len(failures) == 0 {
		b.WriteString("\n:white_check_mark: " + NoWarnings + ".\n")
		return b.String(), nil
	}

	rules := make([]string, 0, len(ruleCounts))
	for r := range ruleCounts {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool {
		pi, pj := severityPriority(levelOf(lv, rules[i])), severityPriority(levelOf(lv, rules[j]))
		if pi != pj {
			return pi < pj
		}
		return rules[i] < rules[j]
	})

	b.WriteString("\n### Failures by Rule\n")
	b.WriteString("| Rule | Severity | Count |\n")
	b.WriteString("|------|----------|-------|\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", r, levelOf(lv, r), ruleCounts[r])
	}

	sorted := make([]lint.Failure, len(failures))
	copy(sorted, failures)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := severityPriority(levelOf(lv, sorted[i].RuleName)), severityPriority(levelOf(lv, sorted[j].RuleName))
		if pi != pj {
			return pi < pj
		}
		return sorted[i].FileName < sorted[j].FileName
	})

	b.WriteString("\n### Failures\n\n")
	for _, fl := range sorted {
		level := levelOf(lv, fl.RuleName)
		b.WriteString("<details>\n")
		fmt.Fprintf(&b, "<summary>%s <strong>%s</strong>: %s in <code>%s:%d</code></summary>\n\n",
			severityEmoji(level), fl.RuleName, truncate(fl.Message, 80), fl.FileName, fl.Span.Start.Line+1)
		fmt.Fprintf(&b, "**Rule:** %s\n", fl.RuleName)
		fmt.Fprintf(&b, "**Location:** `%s` %s\n", fl.FileName, fl.Span)
		fmt.Fprintf(&b, "\n> %s\n", fl.Message)
		if fl.Fix != nil {
			b.WriteString("\n**Fix available**\n")
		}
		b.WriteString("\n</details>\n\n")
	}

	b.WriteString("---\n")
	b.WriteString("*Generated by [nglint](https://github.com/chris-regnier/nglint)*\n")
	return b.String(), nil
}

// truncate shortens a string to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
