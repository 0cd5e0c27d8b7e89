// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInlineImageData_StopsAtWhitespaceBoundedEI(t *testing.T) {
	b := newBuffer(strings.NewReader("AB EX CD EI\nQ\n"), 0)
	b.allowEOF = true

	data := b.readInlineImageData()
	assert.Equal(t, "AB EX CD", string(data))
}

func TestReadInlineImageData_DoesNotTerminateOnBareEIWithoutLeadingWhitespace(t *testing.T) {
	// "xEI" has no whitespace before the E, so it is not a terminator; the
	// real terminator is the later " EI ".
	b := newBuffer(strings.NewReader("xEI more EI done"), 0)
	b.allowEOF = true

	data := b.readInlineImageData()
	assert.Equal(t, "xEI more", string(data))
}

func TestReadInlineImage_ExpandsAbbreviatedKeysAndValues(t *testing.T) {
	b := newBuffer(strings.NewReader("/W 4\n/H 2\n/CS /RGB\n/F /AHx\nID raw EI"), 0)
	b.allowEOF = true

	obj := b.readInlineImage()
	d, ok := obj.(dict)
	require.True(t, ok)

	assert.Equal(t, int64(4), d[name("Width")])
	assert.Equal(t, int64(2), d[name("Height")])
	assert.Equal(t, name("DeviceRGB"), d[name("ColorSpace")])
	assert.Equal(t, name("ASCIIHexDecode"), d[name("Filter")])
	assert.Equal(t, "raw", d["Data"])
}

func TestExpandInlineImageKey_MapsAbbreviationsAndPassesThroughUnknown(t *testing.T) {
	assert.Equal(t, "BitsPerComponent", expandInlineImageKey("BPC"))
	assert.Equal(t, "Interpolate", expandInlineImageKey("I"))
	assert.Equal(t, "Width", expandInlineImageKey("W"))
	assert.Equal(t, "SomethingElse", expandInlineImageKey("SomethingElse"))
}

func TestExpandInlineImageName_ColorSpaceAndFilterAbbreviationsDoNotCollideWithKeyI(t *testing.T) {
	// "I" as a dictionary key means Interpolate; "I" as a colorspace-valued
	// name means Indexed. The two tables are independent, so both resolve
	// correctly from the same literal "I".
	assert.Equal(t, "Interpolate", expandInlineImageKey("I"))
	assert.Equal(t, "Indexed", expandInlineImageName("I"))
}

func TestExpandInlineImageValue_RecursesIntoArrays(t *testing.T) {
	in := array{name("AHx"), name("Fl")}
	out := expandInlineImageValue(in)
	arr, ok := out.(array)
	require.True(t, ok)
	assert.Equal(t, name("ASCIIHexDecode"), arr[0])
	assert.Equal(t, name("FlateDecode"), arr[1])
}
