// Package parse is the front-end boundary of the lint engine. It turns
// TypeScript source and embedded HTML templates into ast trees using
// tree-sitter grammars.
package parse

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/chris-regnier/nglint/internal/ast"
	"github.com/chris-regnier/nglint/internal/source"
)

// ErrInvalidSourceKind is returned when the front-end cannot produce a tree
// for an identifier, typically because of an unsupported extension.
var ErrInvalidSourceKind = errors.New("invalid source kind")

// Tree is a parsed host source file.
type Tree struct {
	Unit     *source.Unit
	Root     *ast.Node
	Language string
}

// Parse parses text as the host dialect selected by identifier's extension.
func Parse(ctx context.Context, identifier, text string) (*Tree, error) {
	lang, name, ok := Detect(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSourceKind, identifier)
	}
	root, err := parseWith(ctx, lang, text, ast.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSourceKind, identifier, err)
	}
	return &Tree{
		Unit:     source.NewUnit(identifier, text),
		Root:     root,
		Language: name,
	}, nil
}

// ParseTemplate parses text as an HTML template. Offsets of the returned
// nodes are relative to the start of text.
func ParseTemplate(ctx context.Context, text string) (*ast.Node, error) {
	return parseWith(ctx, templateLanguage(), text, ast.Template)
}

func parseWith(ctx context.Context, lang *sitter.Language, text string, dialect ast.Dialect) (*ast.Node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if tree == nil {
		return nil, errors.New("parser produced no tree")
	}
	defer tree.Close()

	return convert(tree.RootNode(), nil, "", dialect), nil
}

// convert copies a tree-sitter node into an ast.Node so the tree outlives
// the parser and carries parent links.
func convert(n *sitter.Node, parent *ast.Node, field string, dialect ast.Dialect) *ast.Node {
	out := &ast.Node{
		Kind:    n.Type(),
		Field:   field,
		Named:   n.IsNamed(),
		Dialect: dialect,
		Start:   int(n.StartByte()),
		End:     int(n.EndByte()),
		Parent:  parent,
	}
	count := int(n.ChildCount())
	if count == 0 {
		return out
	}
	out.Children = make([]*ast.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convert(child, out, n.FieldNameForChild(i), dialect))
	}
	return out
}
