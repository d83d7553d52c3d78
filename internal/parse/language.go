package parse

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	typescript "github.com/smacker/go-tree-sitter/typescript/typescript"
)

type langEntry struct {
	language *sitter.Language
	name     string
}

var extToLang map[string]langEntry

func init() {
	extToLang = map[string]langEntry{
		".ts":  {language: typescript.GetLanguage(), name: "typescript"},
		".mts": {language: typescript.GetLanguage(), name: "typescript"},
		".cts": {language: typescript.GetLanguage(), name: "typescript"},
		".tsx": {language: tsx.GetLanguage(), name: "tsx"},
	}
}

// Detect returns the tree-sitter Language, language name, and whether the
// identifier's extension is a supported host dialect.
func Detect(identifier string) (*sitter.Language, string, bool) {
	ext := strings.ToLower(filepath.Ext(identifier))
	entry, ok := extToLang[ext]
	if !ok {
		return nil, "", false
	}
	return entry.language, entry.name, true
}

// Supported reports whether identifier names a file the front-end parses.
func Supported(identifier string) bool {
	_, _, ok := Detect(identifier)
	return ok
}

func templateLanguage() *sitter.Language {
	return html.GetLanguage()
}
