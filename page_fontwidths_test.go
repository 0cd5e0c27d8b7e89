// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetFontWidths_SimpleFontUsesFirstCharLastCharWidths(t *testing.T) {
	v := dictValue(map[string]any{
		"Subtype":   name("TrueType"),
		"FirstChar": int64(65),
		"LastChar":  int64(67),
		"Widths":    []any{float64(600), float64(700), float64(650)},
	})
	wd := getFontWidths(v)
	assert.Equal(t, float64(600), wd.codeWidth(65))
	assert.Equal(t, float64(700), wd.codeWidth(66))
	assert.Equal(t, float64(650), wd.codeWidth(67))
	assert.Equal(t, float64(0), wd.codeWidth(68)) // out of range, no MissingWidth set
}

func TestGetFontWidths_CIDFontLinearArraySpan(t *testing.T) {
	v := dictValue(map[string]any{
		"Subtype": name("CIDFontType2"),
		"DW":      float64(500),
		"W":       []any{int64(10), []any{float64(100), float64(200), float64(300)}},
	})
	wd := getFontWidths(v)
	assert.Equal(t, float64(100), wd.codeWidth(10))
	assert.Equal(t, float64(200), wd.codeWidth(11))
	assert.Equal(t, float64(300), wd.codeWidth(12))
	assert.Equal(t, float64(500), wd.codeWidth(13)) // falls back to DW
}

func TestGetFontWidths_CIDFontFixedWidthRangeSpan(t *testing.T) {
	v := dictValue(map[string]any{
		"Subtype": name("CIDFontType0"),
		"DW":      float64(1000),
		"W":       []any{int64(20), int64(30), float64(750)},
	})
	wd := getFontWidths(v)
	for code := 20; code <= 30; code++ {
		assert.Equal(t, float64(750), wd.codeWidth(code))
	}
	assert.Equal(t, float64(1000), wd.codeWidth(31))
	assert.Equal(t, float64(1000), wd.codeWidth(19))
}

func TestGetFontWidths_Type0DescendsIntoDescendantFont(t *testing.T) {
	descendant := map[string]any{
		"Subtype": name("CIDFontType2"),
		"DW":      float64(1000),
		"W":       []any{int64(5), []any{float64(250)}},
	}
	v := dictValue(map[string]any{
		"Subtype":         name("Type0"),
		"DescendantFonts": []any{descendant},
	})
	wd := getFontWidths(v)
	assert.Equal(t, float64(250), wd.codeWidth(5))
	assert.Equal(t, float64(1000), wd.codeWidth(6))
}

func TestFontWidth_CachesTableAcrossCalls(t *testing.T) {
	v := dictValue(map[string]any{
		"Subtype":   name("Type1"),
		"FirstChar": int64(32),
		"LastChar":  int64(33),
		"Widths":    []any{float64(250), float64(333)},
	})
	f := &Font{V: v}
	assert.Equal(t, float64(250), f.Width(32))
	assert.NotNil(t, f.wd)
	// second call reuses the cached table rather than rebuilding it
	assert.Equal(t, float64(333), f.Width(33))
}

func TestIsSameSentence_SameLineWithinGapContinuesSentence(t *testing.T) {
	a := Text{Font: "F1", FontSize: 12, X: 0, Y: 100, W: 20, S: "Hello"}
	b := Text{Font: "F1", FontSize: 12, X: 25, Y: 100.4}
	assert.True(t, IsSameSentence(a, b))
}

func TestIsSameSentence_DifferentFontBreaksSentence(t *testing.T) {
	a := Text{Font: "F1", FontSize: 12, X: 0, Y: 100, W: 20, S: "Hello"}
	b := Text{Font: "F2", FontSize: 12, X: 25, Y: 100}
	assert.False(t, IsSameSentence(a, b))
}

func TestIsSameSentence_DifferentBaselineBreaksSentence(t *testing.T) {
	a := Text{Font: "F1", FontSize: 12, X: 0, Y: 100, W: 20, S: "Hello"}
	b := Text{Font: "F1", FontSize: 12, X: 25, Y: 105}
	assert.False(t, IsSameSentence(a, b))
}

func TestIsSameSentence_LargeGapBreaksSentence(t *testing.T) {
	a := Text{Font: "F1", FontSize: 12, X: 0, Y: 100, W: 20, S: "Hello"}
	b := Text{Font: "F1", FontSize: 12, X: 200, Y: 100}
	assert.False(t, IsSameSentence(a, b))
}

func TestIsSameSentence_EmptyLastSegmentBreaksSentence(t *testing.T) {
	a := Text{Font: "F1", FontSize: 12, X: 0, Y: 100, W: 20}
	b := Text{Font: "F1", FontSize: 12, X: 25, Y: 100}
	assert.False(t, IsSameSentence(a, b))
}
