// Package input collects the TypeScript sources a lint run operates on.
package input

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chris-regnier/nglint/internal/parse"
)

// StdinPath is the path argument that reads a single source from stdin.
const StdinPath = "-"

// Source is one file to lint.
type Source struct {
	Path    string
	Content string
}

// Handler reads sources from files, directories and streams.
type Handler struct {
	// Skip lists directory names never descended into.
	Skip []string
}

func NewHandler() *Handler {
	return &Handler{Skip: []string{"node_modules", "dist", "coverage"}}
}

// Collect reads every path: directories are walked for supported files,
// regular files are read as given, and StdinPath reads stdin under the
// name stdinName.
func (h *Handler) Collect(paths []string, stdin io.Reader, stdinName string) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		if p == StdinPath {
			src, err := h.ReadStream(stdinName, stdin)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			found, err := h.ReadDirectory(p)
			if err != nil {
				return nil, err
			}
			sources = append(sources, found...)
			continue
		}
		found, err := h.ReadFiles([]string{p})
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	return sources, nil
}

// ReadFiles reads paths in order. Files with invalid UTF-8 are skipped.
func (h *Handler) ReadFiles(paths []string) ([]Source, error) {
	var sources []Source
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !utf8.Valid(data) {
			slog.Warn("skipping file with invalid UTF-8", "path", p)
			continue
		}
		sources = append(sources, Source{Path: p, Content: string(data)})
	}
	return sources, nil
}

// ReadStream reads one source from r.
func (h *Handler) ReadStream(name string, r io.Reader) (Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if !utf8.Valid(data) {
		return Source{}, fmt.Errorf("reading %s: invalid UTF-8", name)
	}
	return Source{Path: name, Content: string(data)}, nil
}

// ReadDirectory walks dir for files the parser supports, skipping hidden
// directories, declaration files and h.Skip.
func (h *Handler) ReadDirectory(dir string) ([]Source, error) {
	var sources []Source
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && (strings.HasPrefix(info.Name(), ".") || h.skipped(info.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !parse.Supported(path) || strings.HasSuffix(path, ".d.ts") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			slog.Warn("skipping file with invalid UTF-8", "path", path)
			return nil
		}
		sources = append(sources, Source{Path: path, Content: string(data)})
		return nil
	})
	return sources, err
}

func (h *Handler) skipped(name string) bool {
	for _, s := range h.Skip {
		if s == name {
			return true
		}
	}
	return false
}
