// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// The stream filter pipeline (ISO 32000-1 §7.4): FlateDecode with the full
// PNG predictor family plus TIFF predictor, LZWDecode, ASCIIHexDecode,
// ASCII85Decode, RunLengthDecode, and DCTDecode/JPXDecode passthrough (image
// samples are left compressed; callers that need pixels decode DCT/JPX with
// an image codec at a higher layer, per spec.md's explicit Non-goal on
// embedded raster image decoding for those two formats).
//
// Grounded on benedoc-inc-pdfer's parser/filters.go (ASCIIHex/ASCII85/
// RunLength/DCT passthrough) and Geek0x0-pdf's filter_decode.go (full PNG
// predictor family, TIFF predictor). CCITTFaxDecode and JBIG2Decode are
// dispatched here but implemented in ccitt.go/jbig2.go.

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"fmt"
	"io"
)

// decodeFilter decodes a single named filter stage against rd, given its
// DecodeParms value (Null if absent).
func decodeFilter(rd io.Reader, name string, param Value) (io.Reader, error) {
	switch name {
	case "FlateDecode", "Fl":
		zr, err := zlib.NewReader(rd)
		if err != nil {
			return nil, fmt.Errorf("pdf: FlateDecode: %w", err)
		}
		return applyPredictor(zr, param)

	case "LZWDecode", "LZW":
		early := int64(1)
		if e := param.Key("EarlyChange"); e.Kind() == Integer {
			early = e.Int64()
		}
		lr := newLZWReader(rd, early != 0)
		return applyPredictor(lr, param)

	case "ASCIIHexDecode", "AHx":
		return newASCIIHexReader(rd), nil

	case "ASCII85Decode", "A85":
		return ascii85.NewDecoder(newAlphaReader(rd)), nil

	case "RunLengthDecode", "RL":
		return newRunLengthReader(rd), nil

	case "CCITTFaxDecode", "CCF":
		return newCCITTReader(rd, param)

	case "JBIG2Decode":
		globals := param.Key("JBIG2Globals")
		return newJBIG2Reader(rd, globals)

	case "DCTDecode", "DCT", "JPXDecode":
		// Passthrough: these are raster image codecs, not general-purpose
		// stream compressors. Callers that need decoded pixels run a JPEG
		// or JPEG2000 decoder on the raw bytes; the extraction pipeline
		// itself only needs the encoded bytes (spec.md's image Non-goals).
		return rd, nil

	default:
		return nil, fmt.Errorf("pdf: unsupported filter %q", name)
	}
}

// applyPredictor applies the Predictor entry of a DecodeParms dictionary, if
// present, to an already-inflated stream.
func applyPredictor(rd io.Reader, param Value) (io.Reader, error) {
	pred := param.Key("Predictor")
	if pred.Kind() == Null || pred.Int64() <= 1 {
		return rd, nil
	}

	colors := int64(1)
	if c := param.Key("Colors"); c.Kind() == Integer {
		colors = c.Int64()
	}
	bpc := int64(8)
	if b := param.Key("BitsPerComponent"); b.Kind() == Integer {
		bpc = b.Int64()
	}
	columns := int64(1)
	if c := param.Key("Columns"); c.Kind() == Integer {
		columns = c.Int64()
	}

	bytesPerPixel := int((colors*bpc + 7) / 8)
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}
	rowBytes := int((colors*bpc*columns + 7) / 8)

	switch pred.Int64() {
	case 2:
		return newTIFFPredictorReader(rd, int(colors), int(bpc), int(columns)), nil
	default:
		// 10-15: PNG predictor family, row-tagged with a filter-type byte.
		return newPNGPredictorReader(rd, rowBytes, bytesPerPixel), nil
	}
}

// pngPredictorReader undoes the PNG predictor family (None/Sub/Up/Average/
// Paeth), selected per row by a leading filter-type byte, as used by
// FlateDecode/LZWDecode streams with /Predictor 10-15.
type pngPredictorReader struct {
	r        io.Reader
	rowBytes int
	bpp      int
	prev     []byte
	cur      []byte
	tmp      []byte
	pend     []byte
}

func newPNGPredictorReader(r io.Reader, rowBytes, bpp int) *pngPredictorReader {
	return &pngPredictorReader{
		r:        r,
		rowBytes: rowBytes,
		bpp:      bpp,
		prev:     make([]byte, rowBytes),
		cur:      make([]byte, rowBytes),
		tmp:      make([]byte, 1+rowBytes),
	}
}

func (p *pngPredictorReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(p.pend) > 0 {
			m := copy(b, p.pend)
			n += m
			b = b[m:]
			p.pend = p.pend[m:]
			continue
		}
		if _, err := io.ReadFull(p.r, p.tmp); err != nil {
			if n > 0 && err == io.ErrUnexpectedEOF {
				return n, nil
			}
			return n, err
		}
		filterType := p.tmp[0]
		row := p.tmp[1:]
		for i := 0; i < p.rowBytes; i++ {
			var a, c byte
			if i >= p.bpp {
				a = p.cur[i-p.bpp]
				c = p.prev[i-p.bpp]
			}
			b0 := p.prev[i]
			switch filterType {
			case 0: // None
				p.cur[i] = row[i]
			case 1: // Sub
				p.cur[i] = row[i] + a
			case 2: // Up
				p.cur[i] = row[i] + b0
			case 3: // Average
				p.cur[i] = row[i] + byte((int(a)+int(b0))/2)
			case 4: // Paeth
				p.cur[i] = row[i] + paethPredictor(a, b0, c)
			default:
				return n, fmt.Errorf("pdf: unknown PNG predictor row filter %d", filterType)
			}
		}
		copy(p.prev, p.cur)
		p.pend = p.cur
	}
	return n, nil
}

func paethPredictor(a, b, c byte) byte {
	pa := abs(int(b) - int(c))
	pb := abs(int(a) - int(c))
	pc := abs(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// tiffPredictorReader undoes TIFF Predictor 2 (horizontal differencing per
// sample, no per-row tag byte).
type tiffPredictorReader struct {
	r        io.Reader
	colors   int
	bpc      int
	columns  int
	rowBytes int
	row      []byte
	pend     []byte
}

func newTIFFPredictorReader(r io.Reader, colors, bpc, columns int) *tiffPredictorReader {
	rowBytes := (colors*bpc*columns + 7) / 8
	return &tiffPredictorReader{
		r: r, colors: colors, bpc: bpc, columns: columns,
		rowBytes: rowBytes, row: make([]byte, rowBytes),
	}
}

func (t *tiffPredictorReader) Read(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		if len(t.pend) > 0 {
			m := copy(b, t.pend)
			n += m
			b = b[m:]
			t.pend = t.pend[m:]
			continue
		}
		if _, err := io.ReadFull(t.r, t.row); err != nil {
			if n > 0 && err == io.ErrUnexpectedEOF {
				return n, nil
			}
			return n, err
		}
		if t.bpc == 8 {
			for i := t.colors; i < len(t.row); i++ {
				t.row[i] += t.row[i-t.colors]
			}
		}
		// bpc != 8 (1,2,4,16) TIFF predictor is rare in practice for text
		// extraction workloads; rows are passed through undifferenced in
		// that case rather than guessing at bit-packed arithmetic.
		cp := make([]byte, len(t.row))
		copy(cp, t.row)
		t.pend = cp
	}
	return n, nil
}

// asciiHexReader decodes ASCIIHexDecode (ISO 32000-1 §7.4.2): pairs of hex
// digits, whitespace ignored, terminated by '>'.
type asciiHexReader struct {
	r    *byteScanner
	done bool
}

func newASCIIHexReader(r io.Reader) *asciiHexReader {
	return &asciiHexReader{r: newByteScanner(r)}
}

func (a *asciiHexReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		if a.done {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		var hi, lo int = -1, -1
		for hi < 0 {
			c, err := a.r.ReadByte()
			if err != nil {
				a.done = true
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
			if c == '>' {
				a.done = true
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
			if v := unhex(c); v >= 0 {
				hi = v
			}
		}
		for lo < 0 {
			c, err := a.r.ReadByte()
			if err != nil {
				lo = 0
				a.done = true
				break
			}
			if c == '>' {
				lo = 0
				a.done = true
				break
			}
			if v := unhex(c); v >= 0 {
				lo = v
			}
		}
		b[n] = byte(hi<<4 | lo)
		n++
	}
	return n, nil
}

// runLengthReader decodes RunLengthDecode (ISO 32000-1 §7.4.5).
type runLengthReader struct {
	r    io.Reader
	pend []byte
	done bool
}

func newRunLengthReader(r io.Reader) *runLengthReader {
	return &runLengthReader{r: r}
}

func (rl *runLengthReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		if len(rl.pend) > 0 {
			m := copy(b[n:], rl.pend)
			n += m
			rl.pend = rl.pend[m:]
			continue
		}
		if rl.done {
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		var lenByte [1]byte
		if _, err := io.ReadFull(rl.r, lenByte[:]); err != nil {
			rl.done = true
			if n == 0 {
				return 0, io.EOF
			}
			return n, nil
		}
		l := lenByte[0]
		switch {
		case l == 128:
			rl.done = true
		case l < 128:
			buf := make([]byte, int(l)+1)
			if _, err := io.ReadFull(rl.r, buf); err != nil {
				return n, err
			}
			rl.pend = buf
		default:
			var rep [1]byte
			if _, err := io.ReadFull(rl.r, rep[:]); err != nil {
				return n, err
			}
			count := 257 - int(l)
			buf := bytes.Repeat(rep[:], count)
			rl.pend = buf
		}
	}
	return n, nil
}

// byteScanner is a minimal buffered byte-at-a-time reader, used by the
// ASCII85/ASCIIHex decoders which need lookahead over raw bytes without
// pulling in bufio's line-oriented API surface.
type byteScanner struct {
	r   io.Reader
	buf [4096]byte
	n   int
	pos int
}

func newByteScanner(r io.Reader) *byteScanner {
	return &byteScanner{r: r}
}

func (s *byteScanner) ReadByte() (byte, error) {
	if s.pos >= s.n {
		n, err := s.r.Read(s.buf[:])
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		s.n = n
		s.pos = 0
	}
	c := s.buf[s.pos]
	s.pos++
	return c, nil
}

// alphaReader strips whitespace from an ASCII85 stream, so encoding/ascii85's
// stricter decoder (which rejects embedded whitespace) can consume it
// directly, and stops at the trailing "~" end-of-data marker.
type alphaReader struct {
	s       *byteScanner
	skipped bool
}

func newAlphaReader(r io.Reader) *alphaReader {
	return &alphaReader{s: newByteScanner(r)}
}

func (a *alphaReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		c, err := a.s.ReadByte()
		if err != nil {
			if n == 0 {
				return 0, err
			}
			return n, nil
		}
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v' {
			continue
		}
		if c == '~' {
			// trailing delimiter; remaining bytes (if any, typically just
			// '>') are not part of the data.
			return n, io.EOF
		}
		b[n] = c
		n++
	}
	return n, nil
}
