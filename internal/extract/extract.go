// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

// Package extract turns uploaded file bytes into plain text for chunking.
package extract

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// Decoder extracts text from one file format.
type Decoder func(data []byte) (string, error)

var decoders = map[string]Decoder{
	".pdf":      decodePDF,
	".docx":     decodeDOCX,
	".pptx":     decodePPTX,
	".xlsx":     decodeXLSX,
	".md":       decodeMarkdown,
	".markdown": decodeMarkdown,
}

// Text returns the NFC-normalized text content of a file, chosen by the
// extension of name. Unknown extensions are read as UTF-8 with invalid
// bytes dropped.
func Text(name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	dec, ok := decoders[ext]
	if !ok {
		return norm.NFC.String(PlainText(data)), nil
	}

	text, err := dec(data)
	if err != nil {
		return "", fserr.With(err, fserr.FieldFile(name))
	}
	return norm.NFC.String(text), nil
}

// PlainText decodes data as UTF-8, dropping invalid byte sequences.
func PlainText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// Formats lists the extensions with a dedicated decoder.
func Formats() []string {
	return []string{".docx", ".markdown", ".md", ".pdf", ".pptx", ".xlsx"}
}

func decodeFailed(err error, format string) error {
	return fserr.Wrapf(err, fserr.CodeExtractDecodeFailure, "decoding %s", format)
}
