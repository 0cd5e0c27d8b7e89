// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// PDF function evaluation (ISO 32000-1 §7.10): Sampled (Type 0), Exponential
// Interpolation (Type 2), Stitching (Type 3), and PostScript Calculator
// (Type 4) functions.
//
// Grounded on ScriptRock-pdf's ps.go for the base operand-stack shape
// (stack/interpret), extended substantially here since ps.go's interpreter
// explicitly has no executable-block support, which Type 4 functions
// require for "{ ... } if"/"{ ... } { ... } ifelse".

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrMissingEncode is returned by a Type 3 stitching function whose
// sub-domain /Encode array is absent. spec.md's Open Question on this case
// is resolved as a parse error rather than a guessed default.
var ErrMissingEncode = errors.New("pdf: stitching function missing required /Encode array")

// Function evaluates a PDF function Value against in, returning the output
// values per ISO 32000-1 §7.10.
type Function struct {
	domain []float64
	rnge   []float64
	eval   func(in []float64) ([]float64, error)
}

// ParseFunction builds a Function from a Value naming a PDF function
// dictionary or stream (its /FunctionType entry selects Type 0/2/3/4).
func ParseFunction(v Value) (*Function, error) {
	domain := floatArray(v.Key("Domain"))
	rnge := floatArray(v.Key("Range"))
	ft := v.Key("FunctionType").Int64()

	f := &Function{domain: domain, rnge: rnge}
	switch ft {
	case 0:
		eval, err := parseSampledFunction(v, domain, rnge)
		if err != nil {
			return nil, err
		}
		f.eval = eval
	case 2:
		eval, err := parseExponentialFunction(v)
		if err != nil {
			return nil, err
		}
		f.eval = eval
	case 3:
		eval, err := parseStitchingFunction(v, domain)
		if err != nil {
			return nil, err
		}
		f.eval = eval
	case 4:
		eval, err := parsePostScriptFunction(v)
		if err != nil {
			return nil, err
		}
		f.eval = eval
	default:
		return nil, fmt.Errorf("pdf: unsupported function type %d", ft)
	}
	return f, nil
}

// Eval clips in to Domain, evaluates the function, and clips the result to
// Range (when present), per ISO 32000-1 §7.10.1.
func (f *Function) Eval(in []float64) ([]float64, error) {
	clipped := make([]float64, len(in))
	for i, x := range in {
		clipped[i] = clip(x, f.domain, i)
	}
	out, err := f.eval(clipped)
	if err != nil {
		return nil, err
	}
	if len(f.rnge) > 0 {
		for i := range out {
			out[i] = clip(out[i], f.rnge, i)
		}
	}
	return out, nil
}

func clip(x float64, bounds []float64, i int) float64 {
	if 2*i+1 >= len(bounds) {
		return x
	}
	lo, hi := bounds[2*i], bounds[2*i+1]
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func interpolate(x, xmin, xmax, ymin, ymax float64) float64 {
	if xmax == xmin {
		return ymin
	}
	return ymin + (x-xmin)*(ymax-ymin)/(xmax-xmin)
}

func floatArray(v Value) []float64 {
	if v.Kind() != Array {
		return nil
	}
	out := make([]float64, v.Len())
	for i := range out {
		e := v.Index(i)
		if e.Kind() == Integer {
			out[i] = float64(e.Int64())
		} else {
			out[i] = e.Float64()
		}
	}
	return out
}

// --- Type 0: Sampled ---

func parseSampledFunction(v Value, domain, rnge []float64) (func([]float64) ([]float64, error), error) {
	size := floatArray(v.Key("Size"))
	if len(size) == 0 {
		return nil, errors.New("pdf: sampled function missing /Size")
	}
	bps := v.Key("BitsPerSample").Int64()
	if bps == 0 {
		bps = 8
	}
	encode := floatArray(v.Key("Encode"))
	if len(encode) == 0 {
		encode = make([]float64, 2*len(size))
		for i, s := range size {
			encode[2*i] = 0
			encode[2*i+1] = s - 1
		}
	}
	decode := floatArray(v.Key("Decode"))
	if len(decode) == 0 {
		decode = rnge
	}
	nOut := len(rnge) / 2
	if nOut == 0 {
		return nil, errors.New("pdf: sampled function missing /Range")
	}

	rc := v.Reader()
	raw, err := readAllClose(rc)
	if err != nil {
		return nil, err
	}
	samples := unpackSamples(raw, bps)
	maxVal := float64((uint64(1) << uint(bps)) - 1)

	sizeInt := make([]int, len(size))
	for i, s := range size {
		sizeInt[i] = int(s)
	}

	sampleAt := func(idx []int, outIdx int) float64 {
		offset := 0
		mul := 1
		for i, s := range sizeInt {
			offset += idx[i] * mul
			mul *= s
		}
		pos := offset*nOut + outIdx
		if pos >= len(samples) {
			return 0
		}
		return float64(samples[pos]) / maxVal
	}

	return func(in []float64) ([]float64, error) {
		// encode each input into sample-space, clipped to [0, size-1]
		e := make([]float64, len(in))
		idx0 := make([]int, len(in))
		frac := make([]float64, len(in))
		for i, x := range in {
			lo, hi := domainAt(domain, i)
			ev := interpolate(x, lo, hi, encode[2*i], encode[2*i+1])
			if ev < 0 {
				ev = 0
			}
			if ev > size[i]-1 {
				ev = size[i] - 1
			}
			e[i] = ev
			idx0[i] = int(math.Floor(ev))
			frac[i] = ev - float64(idx0[i])
		}

		out := make([]float64, nOut)
		for o := 0; o < nOut; o++ {
			// multilinear interpolation over the 2^n corners of the cell
			corners := 1 << uint(len(in))
			var sum float64
			for c := 0; c < corners; c++ {
				weight := 1.0
				idx := make([]int, len(in))
				for i := range in {
					bit := (c >> uint(i)) & 1
					idx[i] = idx0[i]
					if bit == 1 {
						if idx0[i]+1 < sizeInt[i] {
							idx[i] = idx0[i] + 1
						}
						weight *= frac[i]
					} else {
						weight *= 1 - frac[i]
					}
				}
				if weight == 0 {
					continue
				}
				sum += weight * sampleAt(idx, o)
			}
			dlo, dhi := decode[2*o], decode[2*o+1]
			out[o] = interpolate(sum, 0, 1, dlo, dhi)
		}
		return out, nil
	}, nil
}

func domainAt(domain []float64, i int) (float64, float64) {
	if 2*i+1 >= len(domain) {
		return 0, 1
	}
	return domain[2*i], domain[2*i+1]
}

func unpackSamples(data []byte, bps int64) []uint32 {
	var out []uint32
	bitPos := 0
	total := len(data) * 8
	for bitPos+int(bps) <= total {
		var v uint32
		for b := int64(0); b < bps; b++ {
			byteIdx := (bitPos + int(b)) / 8
			bitIdx := 7 - (bitPos+int(b))%8
			bit := (data[byteIdx] >> uint(bitIdx)) & 1
			v = v<<1 | uint32(bit)
		}
		out = append(out, v)
		bitPos += int(bps)
	}
	return out
}

func readAllClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	var buf []byte
	tmp := make([]byte, 4096)
	for {
		n, err := rc.Read(tmp)
		buf = append(buf, tmp[:n]...)
		if n == 0 || err != nil {
			break
		}
	}
	return buf, nil
}

// --- Type 2: Exponential Interpolation ---

func parseExponentialFunction(v Value) (func([]float64) ([]float64, error), error) {
	c0 := floatArray(v.Key("C0"))
	c1 := floatArray(v.Key("C1"))
	if len(c0) == 0 && len(c1) == 0 {
		c0 = []float64{0}
		c1 = []float64{1}
	} else if len(c0) == 0 {
		c0 = make([]float64, len(c1))
	} else if len(c1) == 0 {
		c1 = make([]float64, len(c0))
	}
	n := v.Key("N").Float64()

	return func(in []float64) ([]float64, error) {
		if len(in) != 1 {
			return nil, errors.New("pdf: exponential function requires exactly one input")
		}
		x := in[0]
		xn := math.Pow(x, n)
		out := make([]float64, len(c0))
		for i := range out {
			out[i] = c0[i] + xn*(c1[i]-c0[i])
		}
		return out, nil
	}, nil
}

// --- Type 3: Stitching ---

func parseStitchingFunction(v Value, domain []float64) (func([]float64) ([]float64, error), error) {
	funcsVal := v.Key("Functions")
	bounds := floatArray(v.Key("Bounds"))
	encode := floatArray(v.Key("Encode"))
	if len(encode) == 0 {
		return nil, ErrMissingEncode
	}
	n := funcsVal.Len()
	subs := make([]*Function, n)
	for i := 0; i < n; i++ {
		f, err := ParseFunction(funcsVal.Index(i))
		if err != nil {
			return nil, err
		}
		subs[i] = f
	}
	if len(domain) < 2 {
		domain = []float64{0, 1}
	}

	return func(in []float64) ([]float64, error) {
		if len(in) != 1 {
			return nil, errors.New("pdf: stitching function requires exactly one input")
		}
		x := in[0]
		k := n - 1
		lo, hi := domain[0], domain[1]
		for i, b := range bounds {
			if x < b {
				k = i
				hi = b
				break
			}
			lo = b
		}
		if k > 0 && k <= len(bounds) {
			lo = boundsLow(bounds, domain, k)
		}
		if k < len(bounds) {
			hi = bounds[k]
		} else {
			hi = domain[1]
		}
		if 2*k+1 >= len(encode) {
			return nil, fmt.Errorf("pdf: stitching function /Encode too short for sub-function %d", k)
		}
		ev := interpolate(x, lo, hi, encode[2*k], encode[2*k+1])
		return subs[k].Eval([]float64{ev})
	}, nil
}

func boundsLow(bounds, domain []float64, k int) float64 {
	if k == 0 {
		return domain[0]
	}
	return bounds[k-1]
}

// --- Type 4: PostScript Calculator ---

// psToken is one token of a Type 4 function body: a number, operator
// keyword, or a nested procedure block.
type psToken struct {
	num   float64
	isNum bool
	op    string
	block []psToken
}

func parsePostScriptFunction(v Value) (func([]float64) ([]float64, error), error) {
	rc := v.Reader()
	src, err := readAllClose(rc)
	if err != nil {
		return nil, err
	}
	toks, _, err := tokenizePS(src, 0)
	if err != nil {
		return nil, err
	}
	// The outermost program is itself wrapped in "{ ... }" per ISO 32000-1
	// §7.10.5.2; unwrap a single top-level block if present.
	if len(toks) == 1 && toks[0].block != nil {
		toks = toks[0].block
	}

	return func(in []float64) ([]float64, error) {
		stk := append([]float64{}, in...)
		out, err := evalPS(toks, stk)
		if err != nil {
			return nil, err
		}
		return out, nil
	}, nil
}

// tokenizePS lexes a PostScript calculator body into a flat token list,
// recursing into "{" ... "}" procedure blocks (used by if/ifelse).
func tokenizePS(src []byte, pos int) ([]psToken, int, error) {
	var toks []psToken
	for pos < len(src) {
		c := src[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			pos++
		case c == '{':
			block, next, err := tokenizePS(src, pos+1)
			if err != nil {
				return nil, 0, err
			}
			toks = append(toks, psToken{block: block})
			pos = next
		case c == '}':
			return toks, pos + 1, nil
		default:
			start := pos
			for pos < len(src) && src[pos] != ' ' && src[pos] != '\t' &&
				src[pos] != '\r' && src[pos] != '\n' && src[pos] != '{' && src[pos] != '}' {
				pos++
			}
			word := string(src[start:pos])
			if word == "" {
				pos++
				continue
			}
			if f, ok := parsePSNumber(word); ok {
				toks = append(toks, psToken{num: f, isNum: true})
			} else {
				toks = append(toks, psToken{op: word})
			}
		}
	}
	return toks, pos, nil
}

func parsePSNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var f float64
	n, err := fmt.Sscanf(s, "%g", &f)
	if err != nil || n != 1 {
		return 0, false
	}
	return f, true
}

// evalPS runs a token program against a value stack (bottom to top), as
// ISO 32000-1 §7.10.5 defines for Type 4 functions: arithmetic, comparison,
// boolean, and stack-manipulation operators, plus if/ifelse on procedure
// blocks.
func evalPS(toks []psToken, stk []float64) ([]float64, error) {
	pop := func() (float64, error) {
		if len(stk) == 0 {
			return 0, errors.New("pdf: PostScript function stack underflow")
		}
		v := stk[len(stk)-1]
		stk = stk[:len(stk)-1]
		return v, nil
	}
	push := func(v float64) { stk = append(stk, v) }
	pushBool := func(b bool) {
		if b {
			push(1)
		} else {
			push(0)
		}
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.isNum {
			push(t.num)
			continue
		}
		if t.block != nil {
			// A bare block is only meaningful immediately preceding if/ifelse;
			// look ahead for the controlling operator.
			if i+1 < len(toks) && toks[i+1].op == "if" {
				cond, err := pop()
				if err != nil {
					return nil, err
				}
				if cond != 0 {
					var err error
					stk, err = evalPS(t.block, stk)
					if err != nil {
						return nil, err
					}
				}
				i++
				continue
			}
			if i+2 < len(toks) && toks[i+1].block != nil && toks[i+2].op == "ifelse" {
				elseBlock := toks[i+1].block
				cond, err := pop()
				if err != nil {
					return nil, err
				}
				var err2 error
				if cond != 0 {
					stk, err2 = evalPS(t.block, stk)
				} else {
					stk, err2 = evalPS(elseBlock, stk)
				}
				if err2 != nil {
					return nil, err2
				}
				i += 2
				continue
			}
			return nil, errors.New("pdf: PostScript function block not followed by if/ifelse")
		}

		switch t.op {
		case "add":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(a + b)
		case "sub":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(a - b)
		case "mul":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(a * b)
		case "div":
			b, err1 := pop()
			a, err2 := pop()
			if err1 != nil || err2 != nil {
				return nil, errors.New("pdf: PostScript function stack underflow")
			}
			if b == 0 {
				return nil, errors.New("pdf: PostScript function division by zero")
			}
			push(a / b)
		case "idiv":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			if int64(b) == 0 {
				return nil, errors.New("pdf: PostScript function division by zero")
			}
			push(float64(int64(a) / int64(b)))
		case "mod":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			if int64(b) == 0 {
				return nil, errors.New("pdf: PostScript function division by zero")
			}
			push(float64(int64(a) % int64(b)))
		case "neg":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(-a)
		case "abs":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Abs(a))
		case "sqrt":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Sqrt(a))
		case "sin":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Sin(a * math.Pi / 180))
		case "cos":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Cos(a * math.Pi / 180))
		case "atan":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			deg := math.Atan2(a, b) * 180 / math.Pi
			if deg < 0 {
				deg += 360
			}
			push(deg)
		case "exp":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Pow(a, b))
		case "ln":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Log(a))
		case "log":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Log10(a))
		case "ceiling":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Ceil(a))
		case "floor":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Floor(a))
		case "round":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Round(a))
		case "truncate":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(math.Trunc(a))
		case "cvi":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(float64(int64(a)))
		case "cvr":
			// no-op: values are already float64
		case "eq":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a == b)
		case "ne":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a != b)
		case "gt":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a > b)
		case "ge":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a >= b)
		case "lt":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a < b)
		case "le":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			pushBool(a <= b)
		case "and":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(float64(int64(a) & int64(b)))
		case "or":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(float64(int64(a) | int64(b)))
		case "xor":
			b, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(float64(int64(a) ^ int64(b)))
		case "not":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			if a == 0 || a == 1 {
				pushBool(a == 0)
			} else {
				push(float64(^int64(a)))
			}
		case "bitshift":
			shift, _ := pop()
			a, err := pop()
			if err != nil {
				return nil, err
			}
			s := int64(shift)
			if s >= 0 {
				push(float64(int64(a) << uint(s)))
			} else {
				push(float64(int64(a) >> uint(-s)))
			}
		case "true":
			push(1)
		case "false":
			push(0)
		case "pop":
			if _, err := pop(); err != nil {
				return nil, err
			}
		case "exch":
			b, err1 := pop()
			a, err2 := pop()
			if err1 != nil || err2 != nil {
				return nil, errors.New("pdf: PostScript function stack underflow")
			}
			push(b)
			push(a)
		case "dup":
			a, err := pop()
			if err != nil {
				return nil, err
			}
			push(a)
			push(a)
		case "copy":
			n, err := pop()
			if err != nil {
				return nil, err
			}
			k := int(n)
			if k < 0 || k > len(stk) {
				return nil, errors.New("pdf: PostScript function copy out of range")
			}
			stk = append(stk, stk[len(stk)-k:]...)
		case "index":
			n, err := pop()
			if err != nil {
				return nil, err
			}
			k := int(n)
			if k < 0 || k >= len(stk) {
				return nil, errors.New("pdf: PostScript function index out of range")
			}
			push(stk[len(stk)-1-k])
		case "roll":
			j, err1 := pop()
			n, err2 := pop()
			if err1 != nil || err2 != nil {
				return nil, errors.New("pdf: PostScript function stack underflow")
			}
			k := int(n)
			if k < 0 || k > len(stk) {
				return nil, errors.New("pdf: PostScript function roll out of range")
			}
			shift := int(j) % k
			if shift < 0 {
				shift += k
			}
			if k > 0 && shift != 0 {
				seg := stk[len(stk)-k:]
				rolled := append(append([]float64{}, seg[k-shift:]...), seg[:k-shift]...)
				copy(seg, rolled)
			}
		default:
			return nil, fmt.Errorf("pdf: unsupported PostScript function operator %q", t.op)
		}
	}
	return stk, nil
}
