// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// JBIG2Decode (ISO 32000-1 §7.4.7): a simplified JBIG2 segment-stream
// decoder. Generic region segments are decoded (arithmetic MQ-coder with a
// 12-pixel GBTEMPLATE-0 context, or MMR by delegating to the CCITT
// Group 4 decoder); symbol dictionary, text region, refinement, and
// halftone region segments are parsed enough to locate their data but are
// not rendered and add nothing to the output: the result is the bitmap of
// the last generic region decoded, or a single blank byte when there is none.
//
// Grounded on Geek0x0-pdf's filter_decode.go JBIG2Decoder/parseSegment
// (itself "simplified" per its own doc comment), extended here with
// explicit segment-type dispatch covering the full type list spec.md names:
// generic region (36/38/39), generic refinement region (40/42/43), symbol
// dictionary (0), text region (4/6/7), pattern dictionary (16), halftone
// region (20/22/23), page info (48), end-of-page/-stripe/-file (49/50/51).

import (
	"encoding/binary"
	"io"
)

type jbig2SegmentType int

const (
	jbig2SymbolDict          jbig2SegmentType = 0
	jbig2TextRegionIntermed  jbig2SegmentType = 4
	jbig2TextRegionImmediate jbig2SegmentType = 6
	jbig2TextRegionLossless  jbig2SegmentType = 7
	jbig2PatternDict         jbig2SegmentType = 16
	jbig2HalftoneIntermed    jbig2SegmentType = 20
	jbig2HalftoneImmediate   jbig2SegmentType = 22
	jbig2HalftoneLossless    jbig2SegmentType = 23
	jbig2GenericIntermed     jbig2SegmentType = 36
	jbig2GenericImmediate    jbig2SegmentType = 38
	jbig2GenericLossless     jbig2SegmentType = 39
	jbig2RefinementIntermed  jbig2SegmentType = 40
	jbig2RefinementImmediate jbig2SegmentType = 42
	jbig2RefinementLossless  jbig2SegmentType = 43
	jbig2PageInfo            jbig2SegmentType = 48
	jbig2EndOfPage           jbig2SegmentType = 49
	jbig2EndOfStripe         jbig2SegmentType = 50
	jbig2EndOfFile           jbig2SegmentType = 51
)

// newJBIG2Reader decodes a JBIG2-embedded stream (ISO 32000-1 §7.4.7: no
// file header, generic region segments directly) to 1-bit-per-pixel packed
// rows, MSB first, 0 = white.
func newJBIG2Reader(r io.Reader, globalsVal Value) (io.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var globals []byte
	if globalsVal.Kind() == Stream {
		rc := globalsVal.Reader()
		defer rc.Close()
		globals, _ = io.ReadAll(rc)
	}
	full := append(append([]byte{}, globals...), data...)

	var out []byte
	var width, height int
	offset := 0
	for offset < len(full) {
		seg, next, ok := parseJBIG2Segment(full[offset:])
		if !ok {
			break
		}
		offset += next
		switch seg.typ {
		case jbig2GenericIntermed, jbig2GenericImmediate, jbig2GenericLossless:
			bmp, w, h, err := decodeJBIG2GenericRegion(seg.data)
			if err == nil {
				out = bmp
				width, height = w, h
			}
		case jbig2EndOfPage, jbig2EndOfFile:
			// nothing more to decode
		default:
			// symbol dict / text region / refinement / halftone: not
			// rendered, leave out/width/height from the last generic
			// region (if any) untouched.
		}
	}
	if out == nil {
		// No generic region decoded successfully: emit a single blank row
		// rather than nothing, so callers get a readable (if blank) image.
		if width == 0 {
			width = 1
		}
		if height == 0 {
			height = 1
		}
		out = make([]byte, ((width+7)/8)*height)
	}
	return bytes2Reader(out), nil
}

type sliceReader struct {
	b []byte
	i int
}

func (s *sliceReader) Read(p []byte) (int, error) {
	if s.i >= len(s.b) {
		return 0, io.EOF
	}
	n := copy(p, s.b[s.i:])
	s.i += n
	return n, nil
}

type jbig2Segment struct {
	typ  jbig2SegmentType
	data []byte
}

// parseJBIG2Segment parses one embedded-organization segment header
// (ISO/IEC 14492 §7.2) and returns its type, data payload, and the number of
// bytes consumed.
func parseJBIG2Segment(data []byte) (jbig2Segment, int, bool) {
	if len(data) < 11 {
		return jbig2Segment{}, 0, false
	}
	flags := data[4]
	segType := jbig2SegmentType(flags & 0x3F)
	pageAssocSize4 := flags&0x40 != 0

	pos := 5
	refFlags := data[pos]
	refCount := int(refFlags >> 5)
	if refCount == 7 {
		if len(data) < pos+4 {
			return jbig2Segment{}, 0, false
		}
		refCount = int(binary.BigEndian.Uint32(data[pos:pos+4]) & 0x1FFFFFFF)
		pos += 4 + (refCount+8)/8 // retain-bits bitmap, rounded up
	} else {
		pos++
	}

	// referred-to segment numbers: size depends on this segment's own
	// number, approximated here (as the reference decoder does) by 1 byte
	// each for small streams; embedded PDF JBIG2 streams in practice use
	// segment numbers small enough for 1-byte refs.
	pos += refCount * 1

	if pageAssocSize4 {
		pos += 4
	} else {
		pos += 1
	}

	if len(data) < pos+4 {
		return jbig2Segment{}, 0, false
	}
	dataLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if dataLen == -1 || uint32(dataLen) == 0xFFFFFFFF {
		return jbig2Segment{}, 0, false
	}
	if len(data) < pos+dataLen {
		return jbig2Segment{}, 0, false
	}
	return jbig2Segment{typ: segType, data: data[pos : pos+dataLen]}, pos + dataLen, true
}

// decodeJBIG2GenericRegion decodes a generic region segment (ISO/IEC 14492
// §6.2, §7.4.6): a region-info header followed by either MMR-coded data
// (delegated to the CCITT Group 4 decoder) or arithmetic-coded data using
// the standard GBTEMPLATE 0 context and the MQ arithmetic coder.
func decodeJBIG2GenericRegion(data []byte) ([]byte, int, int, error) {
	if len(data) < 18 {
		return nil, 0, 0, io.ErrUnexpectedEOF
	}
	width := int(binary.BigEndian.Uint32(data[0:4]))
	height := int(binary.BigEndian.Uint32(data[4:8]))
	flags := data[17]
	mmr := flags&0x01 != 0
	template := (flags >> 1) & 0x03
	body := data[18:]

	if width <= 0 || height <= 0 || width > 1<<16 || height > 1<<16 {
		return nil, 0, 0, io.ErrUnexpectedEOF
	}

	if mmr {
		param := newDict(map[string]any{
			"K":       int64(-1),
			"Columns": int64(width),
			"Rows":    int64(height),
		})
		rd, err := newCCITTReader(bytes2Reader(body), param)
		if err != nil {
			return nil, 0, 0, err
		}
		rowBytes := (width + 7) / 8
		out := make([]byte, rowBytes*height)
		n, _ := io.ReadFull(rd, out)
		return out[:n], width, height, nil
	}

	return decodeGenericArithmetic(body, width, height, int(template)), width, height, nil
}

func bytes2Reader(b []byte) io.Reader { return &sliceReader{b: b} }

// decodeGenericArithmetic decodes an arithmetic-coded generic region using
// GBTEMPLATE 0 (the default, and by far the most common in PDF-embedded
// JBIG2 streams) with the standard MQ coder from ISO/IEC 14492 Annex E / JPEG2000's
// shared arithmetic coding procedure.
func decodeGenericArithmetic(data []byte, width, height, template int) []byte {
	rowBytes := (width + 7) / 8
	out := make([]byte, rowBytes*height)
	bitmap := make([][]byte, height)
	for y := range bitmap {
		bitmap[y] = make([]byte, width)
	}

	dec := newMQDecoder(data)
	cx := make([]mqContext, 1<<16)

	getPixel := func(y, x int) int {
		if y < 0 || x < 0 || x >= width {
			return 0
		}
		return int(bitmap[y][x])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var ctx int
			switch template {
			default: // template 0, 12-pixel context
				ctx = getPixel(y-2, x-1)<<15 | getPixel(y-2, x)<<14 | getPixel(y-2, x+1)<<13 |
					getPixel(y-1, x-2)<<12 | getPixel(y-1, x-1)<<11 | getPixel(y-1, x)<<10 |
					getPixel(y-1, x+1)<<9 | getPixel(y-1, x+2)<<8 |
					getPixel(y, x-4)<<7 | getPixel(y, x-3)<<6 | getPixel(y, x-2)<<5 |
					getPixel(y, x-1)<<4
			}
			bit := dec.decodeBit(&cx[ctx])
			bitmap[y][x] = byte(bit)
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if bitmap[y][x] != 0 {
				out[y*rowBytes+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}

// mqContext is one adaptive-probability-estimation state (index + MPS bit).
type mqContext struct {
	index int
	mps   uint8
}

// mqDecoder implements the MQ arithmetic decoder shared by JBIG2 and
// JPEG2000 (ISO/IEC 14492 Annex E).
type mqDecoder struct {
	data []byte
	bp   int
	c    uint32
	a    uint32
	ct   int
}

var mqQe = [47]struct {
	qe         uint32
	nmps, nlps int
	switchMPS  bool
}{
	{0x5601, 1, 1, true}, {0x3401, 2, 6, false}, {0x1801, 3, 9, false}, {0x0AC1, 4, 12, false},
	{0x0521, 5, 29, false}, {0x0221, 38, 33, false}, {0x5601, 7, 6, true}, {0x5401, 8, 14, false},
	{0x4801, 9, 14, false}, {0x3801, 10, 14, false}, {0x3001, 11, 17, false}, {0x2401, 12, 18, false},
	{0x1C01, 13, 20, false}, {0x1601, 29, 21, false}, {0x5601, 15, 14, true}, {0x5401, 16, 14, false},
	{0x5101, 17, 15, false}, {0x4801, 18, 16, false}, {0x3801, 19, 17, false}, {0x3401, 20, 18, false},
	{0x3001, 21, 19, false}, {0x2801, 22, 19, false}, {0x2401, 23, 20, false}, {0x2201, 24, 21, false},
	{0x1C01, 25, 22, false}, {0x1801, 26, 23, false}, {0x1601, 27, 24, false}, {0x1401, 28, 25, false},
	{0x1201, 29, 26, false}, {0x1101, 30, 27, false}, {0x0AC1, 31, 28, false}, {0x09C1, 32, 29, false},
	{0x08A1, 33, 30, false}, {0x0521, 34, 31, false}, {0x0441, 35, 32, false}, {0x02A1, 36, 33, false},
	{0x0221, 37, 34, false}, {0x0141, 38, 35, false}, {0x0111, 39, 36, false}, {0x0085, 40, 37, false},
	{0x0049, 41, 38, false}, {0x0025, 42, 39, false}, {0x0015, 43, 40, false}, {0x0009, 44, 41, false},
	{0x0005, 45, 42, false}, {0x0001, 45, 43, false}, {0x5601, 46, 46, false},
}

func newMQDecoder(data []byte) *mqDecoder {
	d := &mqDecoder{data: data}
	b0 := d.byteAt(0)
	d.c = uint32(b0) << 16
	d.bp = 0
	d.byteIn()
	d.c <<= 7
	d.ct -= 7
	d.a = 0x8000
	return d
}

func (d *mqDecoder) byteAt(i int) byte {
	if i < 0 || i >= len(d.data) {
		return 0xFF
	}
	return d.data[i]
}

func (d *mqDecoder) byteIn() {
	if d.byteAt(d.bp) == 0xFF {
		if d.byteAt(d.bp+1) > 0x8F {
			d.c += 0xFF00
			d.ct = 8
		} else {
			d.bp++
			d.c += uint32(d.byteAt(d.bp)) << 9
			d.ct = 7
		}
	} else {
		d.bp++
		d.c += uint32(d.byteAt(d.bp)) << 8
		d.ct = 8
	}
}

func (d *mqDecoder) decodeBit(cx *mqContext) int {
	qe := mqQe[cx.index].qe
	d.a -= qe
	var bit int
	if (d.c >> 16) < qe {
		// LPS exchange or MPS exchange depending on a < qe
		if d.a < qe {
			bit = int(cx.mps)
			cx.index = mqQe[cx.index].nmps
		} else {
			bit = int(1 - cx.mps)
			if mqQe[cx.index].switchMPS {
				cx.mps = 1 - cx.mps
			}
			cx.index = mqQe[cx.index].nlps
		}
		d.a = qe
	} else {
		d.c -= qe << 16
		if d.a&0x8000 != 0 {
			return int(cx.mps)
		}
		if d.a < qe {
			bit = int(1 - cx.mps)
			if mqQe[cx.index].switchMPS {
				cx.mps = 1 - cx.mps
			}
			cx.index = mqQe[cx.index].nlps
		} else {
			bit = int(cx.mps)
			cx.index = mqQe[cx.index].nmps
		}
	}
	for d.a&0x8000 == 0 {
		if d.ct == 0 {
			d.byteIn()
		}
		d.a <<= 1
		d.c <<= 1
		d.ct--
	}
	return bit
}
