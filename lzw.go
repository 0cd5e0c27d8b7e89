// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// LZWDecode (ISO 32000-1 §7.4.4): variable-width codes up to 12 bits, with
// the first two non-literal codes reserved as clear and EOF. compress/lzw
// has no EarlyChange option, so the decoder is hand-rolled here, following
// the dominant idiom
// of this pack (every filter in filters.go is hand-rolled, not delegated to
// an external codec module).
//
// Grounded on other_examples/b367ab19 (seehuhn-go-pdf's internal LZW
// reader), itself derived from compress/lzw and adapted for the PDF
// variant; renamed to this package's unexported conventions and wired into
// filters.go's decodeFilter dispatch instead of exposing a separate package.

import (
	"bufio"
	"errors"
	"io"
)

const (
	lzwLitWidth  = 8
	lzwMaxWidth  = 12
	lzwClear     = 1 << lzwLitWidth
	lzwEOF       = lzwClear + 1
	lzwFlushSize = 1 << lzwMaxWidth
	lzwInvalid   = 0xffff
)

// lzwReader decodes a PDF-variant LZW stream.
type lzwReader struct {
	src          io.ByteReader
	bits         uint32
	nBits        uint
	currentWidth uint
	err          error

	hi, overflow, last uint16

	suffix [1 << lzwMaxWidth]uint8
	prefix [1 << lzwMaxWidth]uint16

	output [2 * (1 << lzwMaxWidth)]byte
	o      int
	toRead []byte

	earlyChange uint16
}

// newLZWReader returns a reader that decompresses src as PDF LZW data.
// earlyChange matches the /EarlyChange DecodeParms entry (default true).
func newLZWReader(src io.Reader, earlyChange bool) io.Reader {
	br, ok := src.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(src)
	}
	r := &lzwReader{src: br}
	r.currentWidth = 1 + uint(lzwLitWidth)
	r.hi = lzwEOF
	r.overflow = uint16(1) << r.currentWidth
	r.last = lzwInvalid
	if earlyChange {
		r.earlyChange = 1
	}
	return r
}

func (r *lzwReader) read() (uint16, error) {
	for r.nBits < r.currentWidth {
		x, err := r.src.ReadByte()
		if err != nil {
			return 0, err
		}
		r.bits |= uint32(x) << (24 - r.nBits)
		r.nBits += 8
	}
	code := uint16(r.bits >> (32 - r.currentWidth))
	r.bits <<= r.currentWidth
	r.nBits -= r.currentWidth
	return code, nil
}

func (r *lzwReader) Read(b []byte) (int, error) {
	for {
		if len(r.toRead) > 0 {
			n := copy(b, r.toRead)
			r.toRead = r.toRead[n:]
			return n, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		r.decode()
	}
}

func (r *lzwReader) decode() {
loop:
	for {
		code, err := r.read()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			r.err = err
			break
		}
		switch {
		case code < lzwClear:
			r.output[r.o] = uint8(code)
			r.o++
			if r.last != lzwInvalid {
				r.suffix[r.hi] = uint8(code)
				r.prefix[r.hi] = r.last
			}
		case code == lzwClear:
			r.currentWidth = 1 + uint(lzwLitWidth)
			r.hi = lzwEOF
			r.overflow = 1 << r.currentWidth
			r.last = lzwInvalid
			continue
		case code == lzwEOF:
			r.err = io.EOF
			break loop
		case code <= r.hi:
			c, i := code, len(r.output)-1
			if code == r.hi && r.last != lzwInvalid {
				c = r.last
				for c >= lzwClear {
					c = r.prefix[c]
				}
				r.output[i] = uint8(c)
				i--
				c = r.last
			}
			for c >= lzwClear {
				r.output[i] = r.suffix[c]
				i--
				c = r.prefix[c]
			}
			r.output[i] = uint8(c)
			r.o += copy(r.output[r.o:], r.output[i:])
			if r.last != lzwInvalid {
				r.suffix[r.hi] = uint8(c)
				r.prefix[r.hi] = r.last
			}
		default:
			r.err = errors.New("pdf: invalid LZW code")
			break loop
		}
		r.last, r.hi = code, r.hi+1
		if r.hi+r.earlyChange >= r.overflow {
			if r.currentWidth >= lzwMaxWidth {
				r.last = lzwInvalid
				r.hi--
			} else {
				r.currentWidth++
				r.overflow = 1 << r.currentWidth
			}
		}
		if r.o >= lzwFlushSize {
			break
		}
	}
	r.toRead = r.output[:r.o]
	r.o = 0
}
