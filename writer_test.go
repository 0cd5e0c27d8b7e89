// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"compress/zlib"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlateEncode_DecodesBackWithZlibReader(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	encoded := flateEncode(want)

	zr, err := zlib.NewReader(bytes.NewReader(encoded))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWritePDFName_EscapesDelimitersAndHash(t *testing.T) {
	buf := &bytes.Buffer{}
	writePDFName(buf, "A#B C")
	assert.Equal(t, "/A#23B#20C", buf.String())
}

func TestWritePDFName_PlainNamePassesThroughUnescaped(t *testing.T) {
	buf := &bytes.Buffer{}
	writePDFName(buf, "Helvetica")
	assert.Equal(t, "/Helvetica", buf.String())
}

func TestWritePDFString_EscapesParensAndBackslash(t *testing.T) {
	buf := &bytes.Buffer{}
	writePDFString(buf, `a(b)c\d`)
	assert.Equal(t, `(a\(b\)c\\d)`, buf.String())
}

func TestWritePDFString_EscapesNewlineAndCR(t *testing.T) {
	buf := &bytes.Buffer{}
	writePDFString(buf, "a\nb\rc")
	assert.Equal(t, `(a\nb\rc)`, buf.String())
}

func TestWriteValueBody_ScalarsAndArray(t *testing.T) {
	v := dictValue(map[string]any{
		"A": int64(1),
		"B": float64(1.5),
		"C": true,
		"D": []any{int64(1), int64(2)},
	})
	buf := &bytes.Buffer{}
	writeValueBody(buf, v)
	out := buf.String()
	assert.True(t, strings.Contains(out, "/A 1"))
	assert.True(t, strings.Contains(out, "/B 1.5"))
	assert.True(t, strings.Contains(out, "/C true"))
	assert.True(t, strings.Contains(out, "/D [1 2]"))
}

func TestWriteValueBody_NullAndFalse(t *testing.T) {
	v := dictValue(map[string]any{
		"N": nil,
		"F": false,
	})
	buf := &bytes.Buffer{}
	writeValueBody(buf, v)
	out := buf.String()
	assert.True(t, strings.Contains(out, "/N null"))
	assert.True(t, strings.Contains(out, "/F false"))
}

func TestGroupConsecutive_SplitsOnGaps(t *testing.T) {
	groups := groupConsecutive([]uint32{5, 1, 2, 3, 10, 11})
	require.Len(t, groups, 3)
	assert.Equal(t, []uint32{1, 2, 3}, groups[0])
	assert.Equal(t, []uint32{5}, groups[1])
	assert.Equal(t, []uint32{10, 11}, groups[2])
}

func TestGroupConsecutive_SingleRun(t *testing.T) {
	groups := groupConsecutive([]uint32{0, 1, 2})
	require.Len(t, groups, 1)
	assert.Equal(t, []uint32{0, 1, 2}, groups[0])
}

func TestXrefPrevOffset_ReadsIntegerOrDefaultsToZero(t *testing.T) {
	withPrev := dictValue(map[string]any{"Prev": int64(1234)})
	assert.Equal(t, int64(1234), xrefPrevOffset(withPrev))

	withoutPrev := dictValue(map[string]any{})
	assert.Equal(t, int64(0), xrefPrevOffset(withoutPrev))
}

func TestWriterWriteFull_EmitsHeaderXrefAndTrailer(t *testing.T) {
	d, _ := newTestDocument()
	d.AddObject(dict{"Type": name("Catalog")})

	w := NewWriter(d, WriterConfig{})
	buf := &bytes.Buffer{}
	require.NoError(t, w.Write(buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-1.7\n"))
	assert.True(t, strings.Contains(out, "xref\n"))
	assert.True(t, strings.Contains(out, "trailer\n"))
	assert.True(t, strings.Contains(out, "startxref\n"))
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
}

func TestWriterWriteIncremental_PreservesOriginalBytesVerbatim(t *testing.T) {
	d, _ := newTestDocument()
	ptr := d.AddObject(dict{"Type": name("Test")})
	d.UpdateObject(ptr, dict{"Type": name("Updated")})

	original := []byte("%PDF-1.7\n1 0 obj\n<< >>\nendobj\n")
	w := NewWriter(d, WriterConfig{IncrementalUpdate: true})
	buf := &bytes.Buffer{}
	require.NoError(t, w.WriteIncremental(buf, original))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, string(original)))
	assert.True(t, strings.Contains(out, "/Prev"))
	assert.True(t, strings.Contains(out, "startxref"))
}

// TestWriterRoundTrip_RootSurvivesReparseWhenRootIsNotObjectOne exercises
// spec.md §8's round-trip invariant directly: /Root must resolve, after a
// full rewrite and reparse, to an object structurally equal to the one this
// document actually holds, for a document whose Catalog isn't object 1 (the
// common case for a PDF this library didn't author itself).
func TestWriterRoundTrip_RootSurvivesReparseWhenRootIsNotObjectOne(t *testing.T) {
	r := &Reader{
		trailer: dict{
			"Size": int64(3),
			"Root": objptr{id: 2, gen: 0},
		},
		xref: []xref{
			{}, // object 0: unused
			{ptr: objptr{id: 1, gen: 0}},
			{ptr: objptr{id: 2, gen: 0}},
		},
	}
	d := NewDocument(r)
	d.UpdateObject(objptr{id: 1, gen: 0}, dict{"Type": name("Pages"), "Count": int64(0)})
	d.UpdateObject(objptr{id: 2, gen: 0}, dict{"Type": name("Catalog"), "Pages": objptr{id: 1, gen: 0}})

	w := NewWriter(d, WriterConfig{})
	buf := &bytes.Buffer{}
	require.NoError(t, w.Write(buf))

	out := buf.Bytes()
	reparsed, err := NewReader(bytes.NewReader(out), int64(len(out)))
	require.NoError(t, err)

	root := reparsed.Trailer().Key("Root")
	require.Equal(t, objptr{id: 2, gen: 0}, root.ptr)

	want := map[string]interface{}{
		"Type":  "Catalog",
		"Pages": map[string]interface{}{"Type": "Pages", "Count": int64(0)},
	}
	got := snapshotValue(root)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round-tripped /Root is not structurally equal to the original (-want +got):\n%s", diff)
	}
}

// snapshotValue converts a Value into plain Go data (maps, slices,
// primitives) so two Values backed by different *Reader instances — as a
// freshly written document and its reparsed form always are — can be
// compared with cmp.Diff without tripping over unexported-field identity.
func snapshotValue(v Value) interface{} {
	switch v.Kind() {
	case Dict:
		out := make(map[string]interface{})
		for _, k := range v.Keys() {
			out[k] = snapshotValue(v.Key(k))
		}
		return out
	case Array:
		out := make([]interface{}, v.Len())
		for i := range out {
			out[i] = snapshotValue(v.Index(i))
		}
		return out
	case Name:
		return v.Name()
	case Integer:
		return v.Int64()
	case Real:
		return v.Float64()
	case String:
		return v.RawString()
	case Bool:
		return v.Bool()
	default:
		return nil
	}
}
