// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
)

// apiClient talks to a running filesearch server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(addr string, timeout time.Duration) *apiClient {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &apiClient{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// clientFor builds an apiClient from the --address and --timeout flags.
func clientFor(cmd *cobra.Command) *apiClient {
	addr, _ := cmd.Flags().GetString("address")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	return newAPIClient(addr, timeout)
}

func (c *apiClient) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "building request")
	}
	return c.do(req, dest)
}

func (c *apiClient) postJSON(ctx context.Context, path string, body, dest any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "encoding request")
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "building request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, dest)
}

// postFiles uploads paths as repeated "files" parts along with fields.
func (c *apiClient) postFiles(ctx context.Context, path string, fields url.Values, paths []string, dest any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range fields {
		for _, v := range vals {
			if err := mw.WriteField(key, v); err != nil {
				return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "encoding form")
			}
		}
	}
	for _, p := range paths {
		if err := addFilePart(mw, p); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "encoding form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "building request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req, dest)
}

func addFilePart(mw *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLIInputInvalid, "opening file", fserr.FieldFile(path))
	}
	defer func() { _ = f.Close() }()

	part, err := mw.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "encoding form")
	}
	if _, err := io.Copy(part, f); err != nil {
		return fserr.Wrap(err, fserr.CodeCLIInputInvalid, "reading file", fserr.FieldFile(path))
	}
	return nil
}

// do sends req and decodes a 2xx JSON response into dest. A refused
// connection is reported as CodeCLIServerNotRunning.
func (c *apiClient) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if isDialError(err) {
			return fserr.Errorf(fserr.CodeCLIServerNotRunning, "filesearch server at %s is not running", req.URL.Host)
		}
		return fserr.Wrap(err, fserr.CodeCLIRequestFailure, "request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return fserr.Errorf(fserr.CodeCLIRequestFailure, "server returned status %d: %s", resp.StatusCode, errorMessage(body))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fserr.Wrap(err, fserr.CodeCLIResponseInvalid, "invalid response")
	}
	return nil
}

// errorMessage extracts the message from a form error ({"error"}) or a
// huma problem body ({"detail"}).
func errorMessage(body []byte) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}

func pathEscape(id string) string {
	return url.PathEscape(id)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
