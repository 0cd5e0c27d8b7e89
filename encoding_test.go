// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUTF16Decode(t *testing.T) {
	// "Hi" with UTF-16BE BOM.
	raw := string([]byte{0xFE, 0xFF, 0x00, 'H', 0x00, 'i'})
	assert.True(t, isUTF16(raw))
	assert.Equal(t, "Hi", utf16Decode(raw))
}

func TestUTF16Decode_OddLengthTrailingByteDropped(t *testing.T) {
	raw := string([]byte{0xFE, 0xFF, 0x00, 'H', 0x00})
	assert.Equal(t, "H", utf16Decode(raw))
}

func TestPDFDocDecode_BulletAndASCII(t *testing.T) {
	raw := string([]byte{'A', 0x80, 'B'}) // 0x80 -> bullet (U+2022)
	assert.True(t, isPDFDocEncoded(raw))
	assert.Equal(t, "A•B", pdfDocDecode(raw))
}

func TestDecodeInfoString(t *testing.T) {
	assert.Equal(t, "plain ascii", DecodeInfoString("plain ascii"))

	bom := string([]byte{0xFE, 0xFF, 0x00, 'X'})
	assert.Equal(t, "X", DecodeInfoString(bom))
}

func TestWinAnsiEncodingTable_ASCIIIdentity(t *testing.T) {
	for c := byte('A'); c <= 'Z'; c++ {
		assert.Equal(t, rune(c), winAnsiEncoding[c])
	}
}

func TestMacRomanEncodingTable_ASCIIIdentity(t *testing.T) {
	for c := byte('a'); c <= 'z'; c++ {
		assert.Equal(t, rune(c), macRomanEncoding[c])
	}
}

func TestNameToRune(t *testing.T) {
	assert.Equal(t, 'A', nameToRune["A"])
	assert.Equal(t, 'z', nameToRune["z"])
}
