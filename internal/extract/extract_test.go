// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package extract_test

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/sigil-dev/filesearch/internal/extract"
	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestText_PlainTextDropsInvalidUTF8(t *testing.T) {
	data := []byte("caf\xc3\xa9 \xff\xfebroken\x80 text")

	got, err := extract.Text("notes.txt", data)
	require.NoError(t, err)
	assert.Equal(t, "café broken text", got)
}

func TestText_NormalizesToNFC(t *testing.T) {
	// "e" followed by a combining acute accent.
	got, err := extract.Text("notes.txt", []byte("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", got)
}

func TestText_UnknownExtensionIsPlainText(t *testing.T) {
	got, err := extract.Text("README", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	got, err = extract.Text("data.csv", []byte("a,b\n1,2"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2", got)
}

func TestText_Markdown(t *testing.T) {
	src := "# Title\n\nSome *bold* text with `code`.\n\n- item one\n- item two\n\n```go\nfmt.Println(1)\n```\n\n<div>hidden</div>\n"

	got, err := extract.Text("guide.MD", []byte(src))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Title", "Some", "bold", "text", "with", "code.", "item", "one", "item", "two", "fmt.Println(1)"},
		strings.Fields(got))
	assert.NotContains(t, got, "#")
	assert.NotContains(t, got, "*")
}

func TestText_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Name"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "Score"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "alice"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 42))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, err := extract.Text("scores.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "## Sheet: Sheet1\nName\tScore\nalice\t42\n", got)
}

func TestText_DOCX(t *testing.T) {
	data := zipOf(t, map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			`<w:p><w:r><w:t>First paragraph &amp; more.</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t xml:space="preserve"> paragraph.</w:t></w:r></w:p>` +
			`</w:body></w:document>`,
	})

	got, err := extract.Text("report.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph & more.\nSecond paragraph.", got)
}

func TestText_PPTX(t *testing.T) {
	slide := func(text string) string {
		return `<p:sld xmlns:a="a" xmlns:p="p"><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` +
			text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
	}
	data := zipOf(t, map[string]string{
		"ppt/slides/slide2.xml":             slide("Second slide"),
		"ppt/slides/slide10.xml":            slide("Tenth slide"),
		"ppt/slides/slide1.xml":             slide("First slide"),
		"ppt/slides/_rels/slide1.xml.rels":  `<Relationships/>`,
		"ppt/slideLayouts/slideLayout1.xml": slide("layout text"),
	})

	got, err := extract.Text("deck.pptx", data)
	require.NoError(t, err)
	assert.Equal(t, "First slide\n\nSecond slide\n\nTenth slide", got)
}

func TestText_DecodeFailures(t *testing.T) {
	for _, name := range []string{"broken.pdf", "broken.docx", "broken.pptx", "broken.xlsx"} {
		t.Run(name, func(t *testing.T) {
			_, err := extract.Text(name, []byte("definitely not a document"))
			require.Error(t, err)
			assert.True(t, fserr.HasCode(err, fserr.CodeExtractDecodeFailure))
			assert.Equal(t, name, fserr.FieldsOf(err)["file"])
		})
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{".docx", ".markdown", ".md", ".pdf", ".pptx", ".xlsx"}, extract.Formats())
}
