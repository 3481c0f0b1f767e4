// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package extract

import (
	"archive/zip"
	"bytes"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/nguyenthenguyen/docx"
	"github.com/xuri/excelize/v2"
)

var (
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
	paragraphEnd = regexp.MustCompile(`</(w|a):p>`)
	slidePart    = regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`)
)

// xmlText keeps the character data of an OOXML part, one line per paragraph.
func xmlText(doc string) string {
	doc = paragraphEnd.ReplaceAllString(doc, "\n")
	doc = xmlTag.ReplaceAllString(doc, "")
	return strings.TrimSpace(html.UnescapeString(doc))
}

func decodeDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", decodeFailed(err, "docx")
	}
	defer r.Close()

	return xmlText(r.Editable().GetContent()), nil
}

func decodePPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", decodeFailed(err, "pptx")
	}

	var slides []*zip.File
	for _, f := range zr.File {
		if slidePart.MatchString(f.Name) {
			slides = append(slides, f)
		}
	}
	// slide10 sorts after slide9.
	sort.Slice(slides, func(i, j int) bool {
		a, b := slides[i].Name, slides[j].Name
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})

	parts := make([]string, 0, len(slides))
	for _, f := range slides {
		rc, err := f.Open()
		if err != nil {
			return "", decodeFailed(err, "pptx")
		}
		raw, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", decodeFailed(err, "pptx")
		}
		if text := xmlText(string(raw)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func decodeXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", decodeFailed(err, "xlsx")
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", decodeFailed(err, "xlsx")
		}
		b.WriteString("## Sheet: " + sheet + "\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
