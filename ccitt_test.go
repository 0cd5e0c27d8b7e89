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

func TestParseCCITTParams_Defaults(t *testing.T) {
	p := parseCCITTParams(Value{})
	assert.Equal(t, 0, p.k)
	assert.Equal(t, 1728, p.columns)
	assert.False(t, p.blackIs1)
}

func TestParseCCITTParams_ColumnsFallbackWhenNonPositive(t *testing.T) {
	v := dictValue(map[string]any{"Columns": int64(0)})
	p := parseCCITTParams(v)
	assert.Equal(t, 1728, p.columns)
}

func TestParseCCITTParams_ReadsAllFields(t *testing.T) {
	v := dictValue(map[string]any{
		"K":                int64(-1),
		"Columns":          int64(1000),
		"Rows":             int64(10),
		"BlackIs1":         true,
		"EncodedByteAlign": true,
	})
	p := parseCCITTParams(v)
	assert.Equal(t, -1, p.k)
	assert.Equal(t, 1000, p.columns)
	assert.Equal(t, 10, p.rows)
	assert.True(t, p.blackIs1)
	assert.True(t, p.encodedByteAlign)
}

func TestCCITTBitReader_PeekAndSkipAdvanceIndependently(t *testing.T) {
	br := newCCITTBitReader(bytes.NewReader([]byte{0xB2})) // 1011 0010
	top, err := br.peekBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB), top)

	br.skipBits(4)
	bottom, err := br.peekBits(4)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2), bottom)
}

func TestCCITTBitReader_ReadBitWalksMSBFirst(t *testing.T) {
	br := newCCITTBitReader(bytes.NewReader([]byte{0x80}))
	first, err := br.readBit()
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := br.readBit()
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestCCITTReader_Group4SingleWhiteRowDecodesToZeroRow(t *testing.T) {
	// Pure 2D (K<0), one row, 8 columns: an all-imaginary-white reference
	// line makes a single Vertical-0 code ("1", 1 bit) span the whole row.
	param := dictValue(map[string]any{
		"K":       int64(-1),
		"Columns": int64(8),
		"Rows":    int64(1),
	})
	rd, err := newCCITTReader(bytes.NewReader([]byte{0x80}), param)
	require.NoError(t, err)

	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, out)
}
