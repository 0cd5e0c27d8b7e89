// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Text-encoding helpers: PDFDocEncoding and UTF-16BE string detection and
// decoding, plus the WinAnsi/MacRoman/PDFDoc simple-font encoding tables and
// the Adobe glyph-name-to-rune table used to decode simple font text when no
// explicit /Differences array remaps a code to something else.
//
// Grounded on ScriptRock-pdf's internal/encoding/text.go (UTF-16 / PDFDoc
// string detection, NFKC normalization) and internal/encoding/dict.go
// (glyph-name table shape).

import (
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// isUTF16 reports whether s begins with the UTF-16BE byte-order mark used by
// PDF text strings (ISO 32000-1 §7.9.2.2) and has an even length.
func isUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF && len(s)%2 == 0
}

// utf16Decode decodes a UTF-16BE PDF text string (with its leading BOM) to
// a Go string, applying NFKC normalization the way ScriptRock-pdf's text.go
// does for text extracted from /Info and /XMP string values.
func utf16Decode(s string) string {
	if len(s) >= 2 && s[0] == 0xFE && s[1] == 0xFF {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		s = s[:len(s)-1]
	}
	u := make([]uint16, len(s)/2)
	for i := range u {
		u[i] = uint16(s[2*i])<<8 | uint16(s[2*i+1])
	}
	decoded := string(utf16.Decode(u))
	return norm.NFKC.String(decoded)
}

// isPDFDocEncoded reports whether s can be read as PDFDocEncoding: it is not
// a UTF-16BE string (see isUTF16) and every byte maps to a defined rune
// (not U+FFFD) under pdfDocEncoding.
func isPDFDocEncoded(s string) bool {
	if isUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == utf8.RuneError {
			return false
		}
	}
	return true
}

// pdfDocDecode decodes a PDFDocEncoded byte string to a Go string.
func pdfDocDecode(s string) string {
	out := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = pdfDocEncoding[s[i]]
	}
	return norm.NFKC.String(string(out))
}

// DecodeInfoString decodes a raw /Info or /XMP PDF string value into text:
// UTF-16BE if BOM-prefixed, PDFDocEncoding if it looks PDFDoc-encoded,
// otherwise the bytes are returned unchanged (most content-stream text
// strings are already encoded per the active font's simple encoding, handled
// separately in page.go's Font.Encoder).
func DecodeInfoString(s string) string {
	switch {
	case isUTF16(s):
		return utf16Decode(s)
	case isPDFDocEncoded(s):
		return pdfDocDecode(s)
	default:
		return s
	}
}

// DecodeUTF8OrPreserve decodes raw bytes from a CMap-mapped character code
// into runes: if s is already valid UTF-8, its runes are returned as-is;
// otherwise each byte is preserved as its own rune so the original bytes can
// always be recovered, rather than dropping them behind a placeholder glyph.
func DecodeUTF8OrPreserve(s string) []rune {
	if utf8.ValidString(s) {
		return []rune(s)
	}
	runes := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		runes[i] = rune(s[i])
	}
	return runes
}

// pdfDocEncoding maps PDFDocEncoding byte values (ISO 32000-1 Annex D.3) to
// Unicode code points. Bytes below 0x80 map to themselves except for a
// handful of reassigned control codes used for typographic punctuation.
var pdfDocEncoding = buildLatinLikeTable(map[byte]rune{
	0x18: 0x02D8, 0x19: 0x02C7, 0x1A: 0x02C6, 0x1B: 0x02D9,
	0x1C: 0x02DD, 0x1D: 0x02DB, 0x1E: 0x02DA, 0x1F: 0x02DC,
	0x80: 0x2022, 0x81: 0x2020, 0x82: 0x2021, 0x83: 0x2026,
	0x84: 0x2014, 0x85: 0x2013, 0x86: 0x0192, 0x87: 0x2044,
	0x88: 0x2039, 0x89: 0x203A, 0x8A: 0x2212, 0x8B: 0x2030,
	0x8C: 0x201E, 0x8D: 0x201C, 0x8E: 0x201D, 0x8F: 0x2018,
	0x90: 0x2019, 0x91: 0x201A, 0x92: 0x2122, 0x93: 0xFB01,
	0x94: 0xFB02, 0x95: 0x0141, 0x96: 0x0152, 0x97: 0x0160,
	0x98: 0x0178, 0x99: 0x017D, 0x9A: 0x0131, 0x9B: 0x0142,
	0x9C: 0x0153, 0x9D: 0x0161, 0x9E: 0x017E, 0xA0: 0x20AC,
})

// winAnsiEncoding maps WinAnsiEncoding byte values (ISO 32000-1 Annex D.2),
// essentially CP1252, to Unicode code points.
var winAnsiEncoding = buildLatinLikeTable(map[byte]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E,
	0x85: 0x2026, 0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6,
	0x89: 0x2030, 0x8A: 0x0160, 0x8B: 0x2039, 0x8C: 0x0152,
	0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019, 0x93: 0x201C,
	0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A,
	0x9C: 0x0153, 0x9E: 0x017E, 0x9F: 0x0178,
})

// macRomanEncoding maps MacRomanEncoding byte values (ISO 32000-1 Annex D.2)
// to Unicode code points.
var macRomanEncoding = buildMacRomanTable()

func buildLatinLikeTable(overrides map[byte]rune) [256]rune {
	var t [256]rune
	for i := 0; i < 256; i++ {
		t[i] = rune(i)
	}
	for k, v := range overrides {
		t[k] = v
	}
	return t
}

// buildMacRomanTable builds the upper half (0x80-0xFF) of MacRomanEncoding;
// the lower half matches ASCII.
func buildMacRomanTable() [256]rune {
	var t [256]rune
	for i := 0; i < 0x80; i++ {
		t[i] = rune(i)
	}
	upper := []rune{
		0x00C4, 0x00C5, 0x00C7, 0x00C9, 0x00D1, 0x00D6, 0x00DC, 0x00E1,
		0x00E0, 0x00E2, 0x00E4, 0x00E3, 0x00E5, 0x00E7, 0x00E9, 0x00E8,
		0x00EA, 0x00EB, 0x00ED, 0x00EC, 0x00EE, 0x00EF, 0x00F1, 0x00F3,
		0x00F2, 0x00F4, 0x00F6, 0x00F5, 0x00FA, 0x00F9, 0x00FB, 0x00FC,
		0x2020, 0x00B0, 0x00A2, 0x00A3, 0x00A7, 0x2022, 0x00B6, 0x00DF,
		0x00AE, 0x00A9, 0x2122, 0x00B4, 0x00A8, 0x2260, 0x00C6, 0x00D8,
		0x221E, 0x00B1, 0x2264, 0x2265, 0x00A5, 0x00B5, 0x2202, 0x2211,
		0x220F, 0x03C0, 0x222B, 0x00AA, 0x00BA, 0x03A9, 0x00E6, 0x00F8,
		0x00BF, 0x00A1, 0x00AC, 0x221A, 0x0192, 0x2248, 0x2206, 0x00AB,
		0x00BB, 0x2026, 0x00A0, 0x00C0, 0x00C3, 0x00D5, 0x0152, 0x0153,
		0x2013, 0x2014, 0x201C, 0x201D, 0x2018, 0x2019, 0x00F7, 0x25CA,
		0x00FF, 0x0178, 0x2044, 0x20AC, 0x2039, 0x203A, 0xFB01, 0xFB02,
		0x2021, 0x00B7, 0x201A, 0x201E, 0x2030, 0x00C2, 0x00CA, 0x00C1,
		0x00CB, 0x00C8, 0x00CD, 0x00CE, 0x00CF, 0x00CC, 0x00D3, 0x00D4,
		0xF8FF, 0x00D2, 0x00DA, 0x00DB, 0x00D9, 0x0131, 0x02C6, 0x02DC,
		0x00AF, 0x02D8, 0x02D9, 0x02DA, 0x00B8, 0x02DD, 0x02DB, 0x02C7,
	}
	copy(t[0x80:], upper)
	return t
}

// nameToRune maps PDF glyph names (as found in /Differences arrays and
// AGL-style encodings) to Unicode code points, covering the common Latin
// glyph set. A /Differences name not present here leaves the code's byte
// value unchanged (see dictEncoder in page.go).
var nameToRune = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#',
	"dollar": '$', "percent": '%', "ampersand": '&', "quotesingle": '\'',
	"parenleft": '(', "parenright": ')', "asterisk": '*', "plus": '+',
	"comma": ',', "hyphen": '-', "period": '.', "slash": '/',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4',
	"five": '5', "six": '6', "seven": '7', "eight": '8', "nine": '9',
	"colon": ':', "semicolon": ';', "less": '<', "equal": '=', "greater": '>',
	"question": '?', "at": '@',
	"bracketleft": '[', "backslash": '\\', "bracketright": ']',
	"asciicircum": '^', "underscore": '_', "grave": '`',
	"braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"quoteleft": 0x2018, "quoteright": 0x2019,
	"quotedblleft": 0x201C, "quotedblright": 0x201D,
	"endash": 0x2013, "emdash": 0x2014, "bullet": 0x2022,
	"ellipsis": 0x2026, "fi": 0xFB01, "fl": 0xFB02,
	"dagger": 0x2020, "daggerdbl": 0x2021, "florin": 0x0192,
	"Euro": 0x20AC, "trademark": 0x2122,
}

func init() {
	for c := 'A'; c <= 'Z'; c++ {
		nameToRune[string(c)] = c
	}
	for c := 'a'; c <= 'z'; c++ {
		nameToRune[string(c)] = c
	}
}
