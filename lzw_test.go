// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	golzw "compress/lzw"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lzwEncode produces a PDF-variant (MSB-first, 8-bit literal width) LZW
// stream using the standard library's encoder, which implements the same
// TIFF/PDF bit order as the hand-rolled decoder under test.
func lzwEncode(t *testing.T, data []byte) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := golzw.NewWriter(buf, golzw.MSB, 8)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestLZWReader_DecodesStandardLibraryEncodedStream(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog the quick brown fox")
	encoded := lzwEncode(t, want)

	r := newLZWReader(bytes.NewReader(encoded), true)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLZWReader_EmptyInputDecodesToEmpty(t *testing.T) {
	encoded := lzwEncode(t, nil)
	r := newLZWReader(bytes.NewReader(encoded), true)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLZWReader_ThroughDecodeFilterDispatch(t *testing.T) {
	want := []byte("AAAAAAAAAAAAAAAAAAAABBBBBBBBBBBBBBBBBBBB")
	encoded := lzwEncode(t, want)

	rd, err := decodeFilter(bytes.NewReader(encoded), "LZWDecode", Value{})
	require.NoError(t, err)
	got, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
