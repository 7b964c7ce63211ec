package extract

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// PlainTextFormat handles .txt and .md payloads verbatim.
type PlainTextFormat struct{}

func init() {
	Register(&PlainTextFormat{})
}

func (f *PlainTextFormat) Name() string         { return "Plain text" }
func (f *PlainTextFormat) Extensions() []string { return []string{".txt", ".md"} }

func (f *PlainTextFormat) Extract(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}) // strip UTF-8 BOM
	if !utf8.Valid(data) {
		return "", fmt.Errorf("plain text payload is not valid utf-8")
	}
	return string(data), nil
}
