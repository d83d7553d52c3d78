package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/nglint/internal/lint"
)

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	locationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	caretStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	levelStyles = map[string]lipgloss.Style{
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		"note":    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

// PrettyFormatter renders failures as human-readable terminal output
// grouped by file, with a highlighted source snippet when the file text
// is available.
type PrettyFormatter struct {
	Rules   []lint.Metadata
	Sources map[string]string
	Color   bool
}

// Format produces pretty terminal output.
func (f *PrettyFormatter) Format(failures []lint.Failure) (string, error) {
	render := func(s lipgloss.Style, text string) string {
		if !f.Color {
			return text
		}
		return s.Render(text)
	}

	if len(failures) == 0 {
		return render(cleanStyle, "✔ "+NoWarnings) + "\n", nil
	}

	lv := levels(f.Rules)
	var files []string
	byFile := make(map[string][]lint.Failure)
	for _, fl := range failures {
		if _, ok := byFile[fl.FileName]; !ok {
			files = append(files, fl.FileName)
		}
		byFile[fl.FileName] = append(byFile[fl.FileName], fl)
	}
	sort.Strings(files)

	counts := make(map[string]int)
	var b strings.Builder
	for _, file := range files {
		b.WriteString(render(fileStyle, file))
		b.WriteString("\n")
		lines := strings.Split(f.Sources[file], "\n")
		for _, fl := range byFile[file] {
			level := levelOf(lv, fl.RuleName)
			counts[level]++
			fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
				render(locationStyle, fmt.Sprintf("%-7s", fl.Span.Start.String())),
				render(levelStyles[level], fmt.Sprintf("%-7s", level)),
				fl.Message,
				render(ruleStyle, fl.RuleName))
			if _, ok := f.Sources[file]; ok && fl.Span.Start.Line < len(lines) {
				b.WriteString(f.snippet(lines[fl.Span.Start.Line], fl, render))
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%d %s (%d errors, %d warnings, %d notes)\n",
		len(failures), plural(len(failures), "problem", "problems"),
		counts["error"], counts["warning"], counts["note"])
	return b.String(), nil
}

// snippet renders the failing line with a caret underline.
func (f *PrettyFormatter) snippet(line string, fl lint.Failure, render func(lipgloss.Style, string) string) string {
	text := line
	if f.Color {
		if highlighted, err := highlightLine(line); err == nil {
			text = highlighted
		}
	}

	width := 1
	if fl.Span.End.Line == fl.Span.Start.Line && fl.Span.End.Column > fl.Span.Start.Column {
		width = fl.Span.End.Column - fl.Span.Start.Column
	}
	col := fl.Span.Start.Column
	if col > len(line) {
		col = len(line)
	}
	gutter := render(gutterStyle, fmt.Sprintf("%5d │", fl.Span.Start.Line+1))
	pad := strings.Repeat(" ", 6)
	caret := strings.Map(func(r rune) rune {
		if r == '\t' {
			return '\t'
		}
		return ' '
	}, line[:col])
	return fmt.Sprintf("%s %s\n%s│ %s%s\n", gutter, text, pad, caret, render(caretStyle, strings.Repeat("^", width)))
}

// highlightLine applies TypeScript syntax highlighting to a single line.
func highlightLine(line string) (string, error) {
	lexer := lexers.Get("typescript")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	if err := formatters.TTY16m.Format(&b, style, iterator); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
