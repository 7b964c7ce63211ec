// Package extract turns uploaded document payloads into the plain
// paragraph text the rendition layer paginates. Formats are pluggable
// through a small registry; anything without a registered format is
// rejected rather than guessed at.
package extract

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for file types no registered format
// can handle (pdf, docx, mobi and friends).
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Result is the extracted document content with precomputed counts used
// by progress estimation.
type Result struct {
	Text      string
	WordCount int
	CharCount int
}

// Format handles one family of file extensions.
type Format interface {
	Name() string
	Extensions() []string
	Extract(data []byte) (string, error)
}

var registry []Format

// Register adds a format to the registry. Called from format init funcs.
func Register(f Format) {
	registry = append(registry, f)
}

// SupportedExtensions lists every extension a registered format accepts.
func SupportedExtensions() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Extensions()...)
	}
	return out
}

// Extract picks a format by the filename's extension and runs it.
func Extract(filename string, data []byte) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext != e {
				continue
			}
			text, err := f.Extract(data)
			if err != nil {
				return nil, err
			}
			text = normalize(text)
			return &Result{
				Text:      text,
				WordCount: len(strings.Fields(text)),
				CharCount: utf8.RuneCountInString(text),
			}, nil
		}
	}
	return nil, ErrUnsupportedFormat
}

// normalize collapses runs of blank lines to single paragraph breaks and
// trims trailing whitespace so pagination sees clean paragraphs.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, para)
	}
	return strings.Join(out, "\n\n")
}
