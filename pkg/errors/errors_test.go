// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	fserr "github.com/sigil-dev/filesearch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// New / Errorf
// ---------------------------------------------------------------------------

func TestNewIncludesCodeAndFields(t *testing.T) {
	err := fserr.New(
		fserr.CodeConfigValidateInvalidValue,
		"invalid embedding configuration",
		fserr.FieldStoreID("store_1"),
		fserr.Field("provider", "openai"),
	)

	require.Error(t, err)
	assert.Equal(t, fserr.CodeConfigValidateInvalidValue, fserr.CodeOf(err))
	assert.True(t, fserr.HasCode(err, fserr.CodeConfigValidateInvalidValue))

	fields := fserr.FieldsOf(err)
	assert.Equal(t, "store_1", fields["store_id"])
	assert.Equal(t, "openai", fields["provider"])
}

func TestNewWithNoFields(t *testing.T) {
	err := fserr.New(fserr.CodeStoreNotFound, "store missing")
	require.Error(t, err)
	assert.Equal(t, fserr.CodeStoreNotFound, fserr.CodeOf(err))
	assert.Contains(t, err.Error(), "store missing")
}

func TestErrorfFormatsMessage(t *testing.T) {
	err := fserr.Errorf(fserr.CodeExtractDecodeFailure, "reading %s: %d bytes", "notes.pdf", 42)
	require.Error(t, err)
	assert.Equal(t, fserr.CodeExtractDecodeFailure, fserr.CodeOf(err))
	assert.Contains(t, err.Error(), "reading notes.pdf: 42 bytes")
}

func TestErrorfWrapsInnerError(t *testing.T) {
	inner := stderrors.New("unexpected EOF")
	err := fserr.Errorf(fserr.CodeExtractDecodeFailure, "decoding pdf: %w", inner)
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, fserr.CodeExtractDecodeFailure, fserr.CodeOf(err))
}

// ---------------------------------------------------------------------------
// Wrap / Wrapf
// ---------------------------------------------------------------------------

func TestWrapPreservesWrappedErrorAndCode(t *testing.T) {
	root := stderrors.New("record missing")
	err := fserr.Wrap(root, fserr.CodeStoreNotFound, "loading store", fserr.FieldStoreID("store_9"))

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, fserr.CodeStoreNotFound, fserr.CodeOf(err))
	assert.True(t, fserr.IsNotFound(err))
	assert.Equal(t, "store_9", fserr.FieldsOf(err)["store_id"])
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, fserr.Wrap(nil, fserr.CodeServerInternalFailure, "ignored"))
}

func TestWrapfNilReturnsNil(t *testing.T) {
	assert.NoError(t, fserr.Wrapf(nil, fserr.CodeServerInternalFailure, "ignored %s", "arg"))
}

func TestWrapfFormatsAndPreservesChain(t *testing.T) {
	root := stderrors.New("timeout")
	err := fserr.Wrapf(root, fserr.CodeProviderUpstreamFailure, "calling %s model %s", "google", "gemini-embedding-001")

	require.Error(t, err)
	assert.ErrorIs(t, err, root)
	assert.Equal(t, fserr.CodeProviderUpstreamFailure, fserr.CodeOf(err))
	assert.Contains(t, err.Error(), "calling google model gemini-embedding-001")
}

func TestWrapMessageIncludesContext(t *testing.T) {
	err := fserr.Wrap(stderrors.New("EOF"), fserr.CodeExtractDecodeFailure, "reading sheet")

	assert.Contains(t, err.Error(), "reading sheet")
	assert.Contains(t, err.Error(), "EOF")
}

// ---------------------------------------------------------------------------
// With
// ---------------------------------------------------------------------------

func TestWithAddsContextWithoutChangingCode(t *testing.T) {
	base := fserr.New(fserr.CodeProviderResponseInvalid, "empty embedding")
	withCtx := fserr.With(base, fserr.FieldProvider("ollama"))

	require.Error(t, withCtx)
	assert.Equal(t, fserr.CodeProviderResponseInvalid, fserr.CodeOf(withCtx))
	assert.Equal(t, "ollama", fserr.FieldsOf(withCtx)["provider"])
}

func TestWithNilReturnsNil(t *testing.T) {
	assert.NoError(t, fserr.With(nil, fserr.FieldFile("a.txt")))
}

func TestWithOnPlainErrorDefaultsToInternalCode(t *testing.T) {
	enriched := fserr.With(stderrors.New("something broke"), fserr.FieldFile("a.txt"))

	require.Error(t, enriched)
	assert.Equal(t, fserr.CodeServerInternalFailure, fserr.CodeOf(enriched))
	assert.Equal(t, "a.txt", fserr.FieldsOf(enriched)["file"])
}

// ---------------------------------------------------------------------------
// CodeOf / FieldsOf
// ---------------------------------------------------------------------------

func TestCodeOfNilAndPlain(t *testing.T) {
	assert.Equal(t, fserr.Code(""), fserr.CodeOf(nil))
	assert.Equal(t, fserr.Code(""), fserr.CodeOf(stderrors.New("plain")))
	assert.Nil(t, fserr.FieldsOf(nil))
	assert.Nil(t, fserr.FieldsOf(stderrors.New("plain")))
}

func TestCodeOfReturnsInnermostCodedError(t *testing.T) {
	sentinel := stderrors.New("io")
	inner := fserr.Wrap(sentinel, fserr.CodeProviderUpstreamFailure, "embed")
	mid := fmt.Errorf("chunk 1: %w", inner)
	outer := fserr.Wrap(mid, fserr.CodeServerInternalFailure, "handler")

	// oops.AsOops walks to the deepest oops error.
	assert.Equal(t, fserr.CodeProviderUpstreamFailure, fserr.CodeOf(outer))
	assert.ErrorIs(t, outer, sentinel)
}

func TestTypedFieldHelpers(t *testing.T) {
	tests := []struct {
		name string
		attr fserr.Attr
		key  string
		val  string
	}{
		{"store_id", fserr.FieldStoreID("store_1"), "store_id", "store_1"},
		{"file", fserr.FieldFile("notes.md"), "file", "notes.md"},
		{"provider", fserr.FieldProvider("anthropic"), "provider", "anthropic"},
		{"model", fserr.FieldModel("gemini-2.5-flash"), "model", "gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.val, tt.attr.Value)
		})
	}
}

func TestFieldsWithEmptyKeyAreIgnored(t *testing.T) {
	err := fserr.New(fserr.CodeStoreInvalidInput, "bad",
		fserr.Field("", "should-be-dropped"),
		fserr.FieldFile("kept"),
	)
	fields := fserr.FieldsOf(err)
	assert.Equal(t, "kept", fields["file"])
	assert.NotContains(t, fields, "")
}

// ---------------------------------------------------------------------------
// Classification helpers
// ---------------------------------------------------------------------------

func TestClassificationAndStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		code   fserr.Code
		status int
		check  func(error) bool
	}{
		{name: "store not found", code: fserr.CodeStoreNotFound, status: http.StatusNotFound, check: fserr.IsNotFound},
		{name: "provider not found", code: fserr.CodeProviderNotFound, status: http.StatusNotFound, check: fserr.IsNotFound},
		{name: "invalid value", code: fserr.CodeConfigValidateInvalidValue, status: http.StatusBadRequest, check: fserr.IsInvalidInput},
		{name: "invalid format", code: fserr.CodeConfigParseInvalidFormat, status: http.StatusBadRequest, check: fserr.IsInvalidInput},
		{name: "pipeline input", code: fserr.CodePipelineInputInvalid, status: http.StatusBadRequest, check: fserr.IsInvalidInput},
		{name: "decode failure", code: fserr.CodeExtractDecodeFailure, status: http.StatusInternalServerError, check: func(err error) bool { return !fserr.IsInvalidInput(err) }},
		{name: "throttle cancelled", code: fserr.CodeThrottleWaitCancelled, status: http.StatusRequestTimeout, check: fserr.IsCancelled},
		{name: "upstream failure", code: fserr.CodeProviderUpstreamFailure, status: http.StatusBadGateway, check: fserr.IsUpstreamFailure},
		{name: "internal", code: fserr.CodeServerInternalFailure, status: http.StatusInternalServerError, check: func(err error) bool { return !fserr.IsNotFound(err) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fserr.New(tt.code, "boom")
			assert.Equal(t, tt.status, fserr.HTTPStatus(err))
			assert.True(t, tt.check(err))
		})
	}
}

func TestClassificationOnNilAndPlainErrors(t *testing.T) {
	for _, err := range []error{nil, stderrors.New("plain")} {
		assert.False(t, fserr.IsNotFound(err))
		assert.False(t, fserr.IsInvalidInput(err))
		assert.False(t, fserr.IsCancelled(err))
		assert.False(t, fserr.IsUpstreamFailure(err))
		assert.Equal(t, http.StatusInternalServerError, fserr.HTTPStatus(err))
	}
}

// ---------------------------------------------------------------------------
// Join
// ---------------------------------------------------------------------------

func TestJoinCombinesErrors(t *testing.T) {
	a := stderrors.New("first")
	b := stderrors.New("second")
	joined := fserr.Join(a, b)

	require.Error(t, joined)
	assert.ErrorIs(t, joined, a)
	assert.ErrorIs(t, joined, b)
	assert.Equal(t, fserr.CodeServerInternalFailure, fserr.CodeOf(joined))
}
