// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

func decodePDF(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", decodeFailed(fmt.Errorf("malformed pdf: %v", r), "pdf")
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", decodeFailed(err, "pdf")
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", decodeFailed(err, "pdf")
	}

	out, err := io.ReadAll(plain)
	if err != nil {
		return "", decodeFailed(err, "pdf")
	}
	return string(out), nil
}
