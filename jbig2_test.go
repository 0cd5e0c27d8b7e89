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

func TestParseJBIG2Segment_EndOfFileShortForm(t *testing.T) {
	data := []byte{
		0, 0, 0, 0, // segment number (unused)
		0x33,       // flags: type 51 (end of file), short page-association
		0x00,       // referred-to segment count/retain flags: 0 refs
		0x00,       // page association (1 byte)
		0, 0, 0, 0, // data length: 0
	}
	seg, next, ok := parseJBIG2Segment(data)
	require.True(t, ok)
	assert.Equal(t, jbig2EndOfFile, seg.typ)
	assert.Equal(t, 11, next)
	assert.Empty(t, seg.data)
}

func TestParseJBIG2Segment_TooShortHeaderRejected(t *testing.T) {
	_, _, ok := parseJBIG2Segment([]byte{0, 0, 0})
	assert.False(t, ok)
}

func TestNewJBIG2Reader_NoGenericRegionYieldsBlankFallback(t *testing.T) {
	data := []byte{
		0, 0, 0, 0,
		0x33, 0x00, 0x00,
		0, 0, 0, 0,
	}
	rd, err := newJBIG2Reader(bytes.NewReader(data), Value{})
	require.NoError(t, err)
	out, err := io.ReadAll(rd)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, out)
}

func TestDecodeJBIG2GenericRegion_MMRDelegatesToCCITT(t *testing.T) {
	data := make([]byte, 19)
	// width = 8
	data[3] = 8
	// height = 1
	data[7] = 1
	// bytes 8..16: region X/Y location and combination flags (unused by this decoder)
	data[17] = 0x01 // MMR flag set
	data[18] = 0x80 // single Group-4 Vertical-0 code, all-white row

	bmp, w, h, err := decodeJBIG2GenericRegion(data)
	require.NoError(t, err)
	assert.Equal(t, 8, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, []byte{0x00}, bmp)
}

func TestDecodeJBIG2GenericRegion_TruncatedHeaderErrors(t *testing.T) {
	_, _, _, err := decodeJBIG2GenericRegion(make([]byte, 10))
	assert.Error(t, err)
}
