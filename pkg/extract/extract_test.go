package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	res, err := Extract("notes.txt", []byte("First paragraph.\r\n\r\nSecond one.\n\n\n\nThird."))
	require.NoError(t, err)

	assert.Equal(t, "First paragraph.\n\nSecond one.\n\nThird.", res.Text)
	assert.Equal(t, 5, res.WordCount)
	assert.Equal(t, len([]rune(res.Text)), res.CharCount)
}

func TestExtractStripsBOM(t *testing.T) {
	res, err := Extract("bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello world")...))
	require.NoError(t, err)
	assert.Equal(t, "hello world", res.Text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	_, err := Extract("bad.txt", []byte{0xff, 0xfe, 0x41})
	assert.Error(t, err)
}

func TestExtractUnsupportedFormats(t *testing.T) {
	for _, name := range []string{"paper.pdf", "report.docx", "book.mobi", "noext"} {
		_, err := Extract(name, []byte("payload"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestSupportedExtensions(t *testing.T) {
	exts := SupportedExtensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".epub")
}

func TestExtractEPUB(t *testing.T) {
	res, err := Extract("book.epub", buildEPUB(t))
	require.NoError(t, err)

	assert.Contains(t, res.Text, "Chapter One")
	assert.Contains(t, res.Text, "It was a dark and stormy night.")
	assert.Contains(t, res.Text, "The storm did not let up.")
	// Headings and paragraphs become separate paragraphs.
	paras := strings.Split(res.Text, "\n\n")
	assert.GreaterOrEqual(t, len(paras), 3)
	// Inline markup must not fragment the sentence.
	assert.Contains(t, res.Text, "dark and stormy")
	assert.NotContains(t, res.Text, "<em>")
	assert.Positive(t, res.WordCount)
}

func buildEPUB(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := []struct{ name, body string }{
		{"mimetype", "application/epub+zip"},
		{"META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`},
		{"OEBPS/content.opf", `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Stormy</dc:title>
    <dc:identifier id="id">test-book</dc:identifier>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="ch1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`},
		{"OEBPS/ch1.xhtml", `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title><style>p { margin: 0 }</style></head>
<body>
  <h1>Chapter One</h1>
  <p>It was a <em>dark and stormy</em> night.</p>
  <p>The storm did not let up.</p>
</body>
</html>`},
	}
	for _, f := range files {
		fw, err := w.Create(f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}
