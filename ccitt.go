// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// CCITTFaxDecode (ISO 32000-1 §7.4.6): Group 3 (1D/mixed) and Group 4 (pure
// 2D) fax decoding, modified Huffman run-length tables (ITU-T T.4), with the
// a0/b1/b2 reference-line algorithm for 2D mode.
//
// Grounded on Geek0x0-pdf's filter_decode.go (CCITTFaxDecoder, decode1D/
// decode2D, the white/black Huffman tables, bitReader), adapted to this
// package's buffered io.Reader-returning filter style and DecodeParms
// parsing via Value instead of a standalone params struct constructor.

import (
	"bytes"
	"fmt"
	"io"
)

type ccittParams struct {
	k                int
	columns          int
	rows             int
	blackIs1         bool
	encodedByteAlign bool
}

func parseCCITTParams(param Value) ccittParams {
	p := ccittParams{k: 0, columns: 1728}
	if param.Kind() == Null {
		return p
	}
	if v := param.Key("K"); v.Kind() == Integer {
		p.k = int(v.Int64())
	}
	if v := param.Key("Columns"); v.Kind() == Integer {
		p.columns = int(v.Int64())
	}
	if v := param.Key("Rows"); v.Kind() == Integer {
		p.rows = int(v.Int64())
	}
	if v := param.Key("BlackIs1"); v.Kind() == Bool {
		p.blackIs1 = v.Bool()
	}
	if v := param.Key("EncodedByteAlign"); v.Kind() == Bool {
		p.encodedByteAlign = v.Bool()
	}
	if p.columns <= 0 {
		p.columns = 1728
	}
	return p
}

func newCCITTReader(r io.Reader, param Value) (io.Reader, error) {
	p := parseCCITTParams(param)
	return &ccittDecoder{
		r:          newCCITTBitReader(r),
		params:     p,
		width:      p.columns,
		height:     p.rows,
		buf:        new(bytes.Buffer),
		refLine:    make([]byte, p.columns),
		currentLn:  make([]byte, p.columns),
	}, nil
}

type ccittDecoder struct {
	r          *ccittBitReader
	params     ccittParams
	width      int
	height     int
	currentRow int
	buf        *bytes.Buffer
	refLine    []byte
	currentLn  []byte
	done       bool
}

func (d *ccittDecoder) Read(p []byte) (int, error) {
	if d.done {
		return 0, io.EOF
	}
	for d.buf.Len() < len(p) && !d.done {
		if err := d.decodeRow(); err != nil {
			if err == io.EOF {
				d.done = true
				break
			}
			return 0, err
		}
	}
	return d.buf.Read(p)
}

func (d *ccittDecoder) decodeRow() error {
	if d.params.encodedByteAlign {
		d.r.alignByte()
	}
	switch {
	case d.params.k < 0:
		return d.decode2D()
	case d.params.k == 0:
		return d.decode1D()
	default:
		bit, err := d.r.readBit()
		if err != nil {
			return err
		}
		if bit == 1 {
			return d.decode1D()
		}
		return d.decode2D()
	}
}

func (d *ccittDecoder) decode1D() error {
	col := 0
	white := true
	for col < d.width {
		var runLen int
		var err error
		if white {
			runLen, err = d.readRunLen(ccittWhiteTable)
		} else {
			runLen, err = d.readRunLen(ccittBlackTable)
		}
		if err != nil {
			return err
		}
		val := byte(0)
		if !white {
			val = 1
		}
		if d.params.blackIs1 {
			val = 1 - val
		}
		for i := 0; i < runLen && col < d.width; i++ {
			d.currentLn[col] = val
			col++
		}
		white = !white
	}
	d.outputRow()
	d.currentRow++
	if d.height > 0 && d.currentRow >= d.height {
		return io.EOF
	}
	return nil
}

func (d *ccittDecoder) decode2D() error {
	col := 0
	a0 := -1
	for col < d.width {
		code, err := d.read2DCode()
		if err != nil {
			return err
		}
		switch code {
		case ccittEOFB:
			return io.EOF
		case ccittPass:
			b1 := d.findB1(a0, col)
			b2 := d.findB2(b1)
			col = b2
		case ccittHorizontal:
			var run1, run2 int
			isWhite := a0 < 0 || d.refLine[a0] == 0
			if isWhite {
				run1, err = d.readRunLen(ccittWhiteTable)
				if err == nil {
					run2, err = d.readRunLen(ccittBlackTable)
				}
			} else {
				run1, err = d.readRunLen(ccittBlackTable)
				if err == nil {
					run2, err = d.readRunLen(ccittWhiteTable)
				}
			}
			if err != nil {
				return err
			}
			val1 := byte(0)
			if !isWhite {
				val1 = 1
			}
			for i := 0; i < run1 && col < d.width; i++ {
				d.currentLn[col] = val1
				col++
			}
			val2 := 1 - val1
			for i := 0; i < run2 && col < d.width; i++ {
				d.currentLn[col] = val2
				col++
			}
			a0 = col - 1
		case ccittVertical0:
			b1 := d.findB1(a0, col)
			col = b1
			d.fillTo(a0+1, col)
			a0 = col - 1
		case ccittVerticalR1, ccittVerticalR2, ccittVerticalR3:
			b1 := d.findB1(a0, col)
			col = b1 + (code - ccittVertical0)
			d.fillTo(a0+1, col)
			a0 = col - 1
		case ccittVerticalL1, ccittVerticalL2, ccittVerticalL3:
			b1 := d.findB1(a0, col)
			col = b1 - (code - ccittVerticalR3)
			if col < 0 {
				col = 0
			}
			d.fillTo(a0+1, col)
			a0 = col - 1
		}
	}
	d.outputRow()
	copy(d.refLine, d.currentLn)
	d.currentRow++
	if d.height > 0 && d.currentRow >= d.height {
		return io.EOF
	}
	return nil
}

func (d *ccittDecoder) findB1(a0, col int) int {
	start := a0 + 1
	if start < 0 {
		start = 0
	}
	cur := byte(0)
	if a0 >= 0 && a0 < d.width {
		cur = d.currentLn[a0]
	}
	for i := start; i < d.width; i++ {
		if d.refLine[i] != cur {
			return i
		}
	}
	return d.width
}

func (d *ccittDecoder) findB2(b1 int) int {
	if b1 >= d.width {
		return d.width
	}
	color := d.refLine[b1]
	for i := b1 + 1; i < d.width; i++ {
		if d.refLine[i] != color {
			return i
		}
	}
	return d.width
}

func (d *ccittDecoder) fillTo(from, to int) {
	if from < 0 {
		from = 0
	}
	var val byte
	if from > 0 && from <= d.width {
		val = 1 - d.currentLn[from-1]
	}
	for i := from; i < to && i < d.width; i++ {
		d.currentLn[i] = val
	}
}

func (d *ccittDecoder) outputRow() {
	for i := 0; i < d.width; i += 8 {
		var b byte
		for j := 0; j < 8 && i+j < d.width; j++ {
			if d.currentLn[i+j] != 0 {
				b |= 0x80 >> uint(j)
			}
		}
		d.buf.WriteByte(b)
	}
}

const (
	ccittPass = iota
	ccittHorizontal
	ccittVertical0
	ccittVerticalR1
	ccittVerticalR2
	ccittVerticalR3
	ccittVerticalL1
	ccittVerticalL2
	ccittVerticalL3
	ccittEOFB
)

func (d *ccittDecoder) read2DCode() (int, error) {
	bits, err := d.r.peekBits(7)
	if err != nil {
		return 0, err
	}
	switch {
	case bits>>6 == 1:
		d.r.skipBits(1)
		return ccittVertical0, nil
	case bits>>4 == 1:
		d.r.skipBits(3)
		return ccittHorizontal, nil
	case bits>>3 == 1:
		d.r.skipBits(4)
		return ccittPass, nil
	case bits>>4 == 3:
		d.r.skipBits(3)
		return ccittVerticalR1, nil
	case bits>>4 == 2:
		d.r.skipBits(3)
		return ccittVerticalL1, nil
	case bits>>1 == 3:
		d.r.skipBits(6)
		return ccittVerticalR2, nil
	case bits>>1 == 2:
		d.r.skipBits(6)
		return ccittVerticalL2, nil
	case bits == 3:
		d.r.skipBits(7)
		return ccittVerticalR3, nil
	case bits == 2:
		d.r.skipBits(7)
		return ccittVerticalL3, nil
	}
	if bits == 0 {
		more, _ := d.r.peekBits(12)
		if more == 0 {
			return ccittEOFB, nil
		}
	}
	return 0, fmt.Errorf("pdf: invalid CCITT 2D code")
}

func (d *ccittDecoder) readRunLen(table []ccittCode) (int, error) {
	total := 0
	for {
		run, err := d.lookupCode(table)
		if err != nil {
			return 0, err
		}
		total += run
		if run < 64 {
			return total, nil
		}
	}
}

func (d *ccittDecoder) lookupCode(table []ccittCode) (int, error) {
	bits, err := d.r.peekBits(13)
	if err != nil && err != io.EOF {
		return 0, err
	}
	for _, e := range table {
		mask := uint32(0xFFFF) << (16 - e.bits)
		if (bits<<3)&mask == uint32(e.code)<<(16-e.bits) {
			d.r.skipBits(int(e.bits))
			return int(e.runLen), nil
		}
	}
	return 0, fmt.Errorf("pdf: invalid CCITT Huffman code")
}

type ccittCode struct {
	code   uint16
	bits   uint8
	runLen uint16
}

var ccittWhiteTable = []ccittCode{
	{0x35, 8, 0}, {0x7, 6, 1}, {0x7, 4, 2}, {0x8, 4, 3}, {0xB, 4, 4},
	{0xC, 4, 5}, {0xE, 4, 6}, {0xF, 4, 7}, {0x13, 5, 8}, {0x14, 5, 9},
	{0x7, 5, 10}, {0x8, 5, 11}, {0x8, 6, 12}, {0x3, 6, 13}, {0x34, 6, 14},
	{0x35, 6, 15}, {0x2A, 6, 16}, {0x2B, 6, 17}, {0x27, 7, 18}, {0xC, 7, 19},
	{0x8, 7, 20}, {0x17, 7, 21}, {0x3, 7, 22}, {0x4, 7, 23}, {0x28, 7, 24},
	{0x2B, 7, 25}, {0x13, 7, 26}, {0x24, 7, 27}, {0x18, 7, 28}, {0x2, 8, 29},
	{0x3, 8, 30}, {0x1A, 8, 31}, {0x1B, 8, 32}, {0x12, 8, 33}, {0x13, 8, 34},
	{0x14, 8, 35}, {0x15, 8, 36}, {0x16, 8, 37}, {0x17, 8, 38}, {0x28, 8, 39},
	{0x29, 8, 40}, {0x2A, 8, 41}, {0x2B, 8, 42}, {0x2C, 8, 43}, {0x2D, 8, 44},
	{0x4, 8, 45}, {0x5, 8, 46}, {0xA, 8, 47}, {0xB, 8, 48}, {0x52, 8, 49},
	{0x53, 8, 50}, {0x54, 8, 51}, {0x55, 8, 52}, {0x24, 8, 53}, {0x25, 8, 54},
	{0x58, 8, 55}, {0x59, 8, 56}, {0x5A, 8, 57}, {0x5B, 8, 58}, {0x4A, 8, 59},
	{0x4B, 8, 60}, {0x32, 8, 61}, {0x33, 8, 62}, {0x34, 8, 63},
	{0x1B, 5, 64}, {0x12, 5, 128}, {0x17, 6, 192}, {0x37, 7, 256},
	{0x36, 8, 320}, {0x37, 8, 384}, {0x64, 8, 448}, {0x65, 8, 512},
	{0x68, 8, 576}, {0x67, 8, 640}, {0xCC, 9, 704}, {0xCD, 9, 768},
	{0xD2, 9, 832}, {0xD3, 9, 896}, {0xD4, 9, 960}, {0xD5, 9, 1024},
	{0xD6, 9, 1088}, {0xD7, 9, 1152}, {0xD8, 9, 1216}, {0xD9, 9, 1280},
	{0xDA, 9, 1344}, {0xDB, 9, 1408}, {0x98, 9, 1472}, {0x99, 9, 1536},
	{0x9A, 9, 1600}, {0x18, 6, 1664}, {0x9B, 9, 1728},
}

var ccittBlackTable = []ccittCode{
	{0x37, 10, 0}, {0x2, 3, 1}, {0x3, 2, 2}, {0x2, 2, 3}, {0x3, 3, 4},
	{0x3, 4, 5}, {0x2, 4, 6}, {0x3, 5, 7}, {0x5, 6, 8}, {0x4, 6, 9},
	{0x4, 7, 10}, {0x5, 7, 11}, {0x7, 7, 12}, {0x4, 8, 13}, {0x7, 8, 14},
	{0x18, 9, 15}, {0x17, 10, 16}, {0x18, 10, 17}, {0x8, 10, 18}, {0x67, 11, 19},
	{0x68, 11, 20}, {0x6C, 11, 21}, {0x37, 11, 22}, {0x28, 11, 23}, {0x17, 11, 24},
	{0x18, 11, 25}, {0xCA, 12, 26}, {0xCB, 12, 27}, {0xCC, 12, 28}, {0xCD, 12, 29},
	{0x68, 12, 30}, {0x69, 12, 31}, {0x6A, 12, 32}, {0x6B, 12, 33}, {0xD2, 12, 34},
	{0xD3, 12, 35}, {0xD4, 12, 36}, {0xD5, 12, 37}, {0xD6, 12, 38}, {0xD7, 12, 39},
	{0x6C, 12, 40}, {0x6D, 12, 41}, {0xDA, 12, 42}, {0xDB, 12, 43}, {0x54, 12, 44},
	{0x55, 12, 45}, {0x56, 12, 46}, {0x57, 12, 47}, {0x64, 12, 48}, {0x65, 12, 49},
	{0x52, 12, 50}, {0x53, 12, 51}, {0x24, 12, 52}, {0x37, 12, 53}, {0x38, 12, 54},
	{0x27, 12, 55}, {0x28, 12, 56}, {0x58, 12, 57}, {0x59, 12, 58}, {0x2B, 12, 59},
	{0x2C, 12, 60}, {0x5A, 12, 61}, {0x66, 12, 62}, {0x67, 12, 63},
	{0xF, 10, 64}, {0xC8, 12, 128}, {0xC9, 12, 192}, {0x5B, 12, 256},
	{0x33, 12, 320}, {0x34, 12, 384}, {0x35, 12, 448}, {0x6C, 13, 512},
	{0x6D, 13, 576}, {0x4A, 13, 640}, {0x4B, 13, 704}, {0x4C, 13, 768},
	{0x4D, 13, 832}, {0x72, 13, 896}, {0x73, 13, 960}, {0x74, 13, 1024},
	{0x75, 13, 1088}, {0x76, 13, 1152}, {0x77, 13, 1216}, {0x52, 13, 1280},
	{0x53, 13, 1344}, {0x54, 13, 1408}, {0x55, 13, 1472}, {0x5A, 13, 1536},
	{0x5B, 13, 1600}, {0x64, 13, 1664}, {0x65, 13, 1728},
}

// ccittBitReader provides bit-level reading for the Huffman/mode decoder.
type ccittBitReader struct {
	r    io.Reader
	buf  uint32
	bits int
}

func newCCITTBitReader(r io.Reader) *ccittBitReader {
	return &ccittBitReader{r: r}
}

func (br *ccittBitReader) fill() error {
	var b [1]byte
	if _, err := br.r.Read(b[:]); err != nil {
		return err
	}
	br.buf = (br.buf << 8) | uint32(b[0])
	br.bits += 8
	return nil
}

func (br *ccittBitReader) readBit() (int, error) {
	if br.bits == 0 {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	br.bits--
	return int((br.buf >> uint(br.bits)) & 1), nil
}

func (br *ccittBitReader) peekBits(n int) (uint32, error) {
	for br.bits < n {
		if err := br.fill(); err != nil {
			if err == io.EOF && br.bits > 0 {
				return br.buf << uint(n-br.bits), nil
			}
			return 0, err
		}
	}
	return (br.buf >> uint(br.bits-n)) & ((1 << uint(n)) - 1), nil
}

func (br *ccittBitReader) skipBits(n int) {
	if n <= br.bits {
		br.bits -= n
		return
	}
	n -= br.bits
	br.bits = 0
	for n >= 8 {
		br.fill()
		n -= 8
	}
	if n > 0 {
		br.fill()
		br.bits -= n
	}
}

func (br *ccittBitReader) alignByte() {
	br.bits -= br.bits % 8
}
