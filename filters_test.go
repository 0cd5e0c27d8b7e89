// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLengthReader_LiteralAndRepeatRuns(t *testing.T) {
	// length byte 2 -> 3 literal bytes "abc", then length byte 257-5=252 -> repeat 'x' 5 times, then 128 -> EOD.
	in := []byte{2, 'a', 'b', 'c', 252, 'x', 128}
	r := newRunLengthReader(bytes.NewReader(in))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abcxxxxx", string(out))
}

func TestASCIIHexReader_DecodesPairsIgnoringWhitespaceAndTerminator(t *testing.T) {
	r := newASCIIHexReader(bytes.NewReader([]byte("48 65 6C 6C 6F>")))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(out))
}

func TestASCIIHexReader_OddDigitCountPadsWithZero(t *testing.T) {
	r := newASCIIHexReader(bytes.NewReader([]byte("4>")))
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40}, out)
}

func TestASCII85Decode_RoundTripsThroughAlphaReader(t *testing.T) {
	// "Man " ASCII85-encodes to "9jqo^" per the canonical RFC 1924-adjacent example.
	r := decodeMustASCII85(t, "9jqo^~>")
	assert.Equal(t, "Man ", r)
}

func decodeMustASCII85(t *testing.T, encoded string) string {
	t.Helper()
	rd, err := decodeFilter(bytes.NewReader([]byte(encoded)), "ASCII85Decode", Value{})
	require.NoError(t, err)
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	return string(out)
}

func TestAlphaReader_StripsWhitespaceAndStopsAtTilde(t *testing.T) {
	a := newAlphaReader(bytes.NewReader([]byte("9j qo^\n~>")))
	out, err := io.ReadAll(a)
	require.NoError(t, err)
	assert.Equal(t, "9jqo^", string(out))
}

func TestPNGPredictor_SubFilterUndoesHorizontalDiff(t *testing.T) {
	// rowBytes=3, bpp=1: row0 None [1,2,3]; row1 Sub [1,1,1] -> decoded [1,2,3]
	// (each byte adds the already-decoded byte to its left in the same row).
	raw := []byte{
		0, 1, 2, 3,
		1, 1, 1, 1,
	}
	r := newPNGPredictorReader(bytes.NewReader(raw), 3, 1)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 1, 2, 3}, out)
}

func TestPNGPredictor_UpFilterUndoesVerticalDiff(t *testing.T) {
	raw := []byte{
		0, 10, 20, 30,
		2, 1, 1, 1,
	}
	r := newPNGPredictorReader(bytes.NewReader(raw), 3, 1)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 20, 30, 11, 21, 31}, out)
}

func TestTIFFPredictor_HorizontalDifferencingAt8bpc(t *testing.T) {
	// 1 color, 8bpc, 3 columns: raw row [10, 5, 5] -> decoded [10, 15, 20].
	raw := []byte{10, 5, 5}
	r := newTIFFPredictorReader(bytes.NewReader(raw), 1, 8, 3)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 15, 20}, out)
}

func TestDecodeFilter_UnsupportedNameReturnsError(t *testing.T) {
	_, err := decodeFilter(bytes.NewReader(nil), "BogusDecode", Value{})
	assert.Error(t, err)
}

func TestDecodeFilter_DCTDecodePassesThroughUndecoded(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	rd, err := decodeFilter(bytes.NewReader(raw), "DCTDecode", Value{})
	require.NoError(t, err)
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}
