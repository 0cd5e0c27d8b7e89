// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// A minimal PostScript-like operand-stack interpreter, used by content
// stream / CMap / text-state interpretation in page.go. Type 4 calculator
// functions in functions.go run on their own float64 stack (evalPS).
//
// Grounded on ScriptRock-pdf's ps.go (stack/interpret), generalized and
// exported to match the names page.go already calls (Interpret, Stack).

import (
	"fmt"
)

// A Stack is an evaluation stack of operands read from a content stream or
// similar operator/operand token sequence.
type Stack struct {
	stk []Value
}

// Push pushes a value onto the stack.
func (stk *Stack) Push(v Value) {
	stk.stk = append(stk.stk, v)
}

// Pop removes and returns the top value on the stack, or the zero Value if
// the stack is empty.
func (stk *Stack) Pop() Value {
	if len(stk.stk) == 0 {
		return Value{}
	}
	v := stk.stk[len(stk.stk)-1]
	stk.stk = stk.stk[:len(stk.stk)-1]
	return v
}

// Len returns the number of operands currently on the stack.
func (stk *Stack) Len() int {
	return len(stk.stk)
}

// Get returns the i'th operand from the bottom of the stack (0-indexed).
func (stk *Stack) Get(i int) Value {
	if i < 0 || i >= len(stk.stk) {
		return Value{}
	}
	return stk.stk[i]
}

// Reset discards all operands currently on the stack, called after every
// operator in a content-stream interpretation loop.
func (stk *Stack) Reset() {
	stk.stk = stk.stk[:0]
}

// newDict builds a Value of kind Dict out of plain Go values, used by
// callers (readCmap, inline-image parsing) that need to construct a
// synthetic dictionary-shaped Value without a backing Reader.
func newDict(m map[string]any) Value {
	d := make(dict)
	for k, v := range m {
		d[name(k)] = toObject(v)
	}
	return Value{nil, objptr{}, d}
}

func toObject(v any) object {
	switch x := v.(type) {
	case []any:
		arr := make(array, len(x))
		for i, e := range x {
			arr[i] = toObject(e)
		}
		return arr
	case map[string]any:
		d := make(dict)
		for k, e := range x {
			d[name(k)] = toObject(e)
		}
		return d
	default:
		return x
	}
}

// Interpret reads tokens from the content of strm (already-decoded operator
// stream bytes) and invokes fn once per operator keyword encountered, with
// stk holding the operands accumulated since the previous operator. Numbers,
// strings, names, and arrays/dicts push operands; any other keyword is
// treated as an operator and dispatched to fn, after which the stack is
// reset (ISO 32000-1 §7.8.2: operators consume their preceding operands).
func Interpret(strm Value, fn func(stk *Stack, op string)) {
	rc := strm.Reader()
	defer rc.Close()

	b := newBuffer(rc, 0)
	b.allowEOF = true
	b.allowObjptr = false
	b.allowStream = false

	var stk Stack
	for {
		tok := b.readToken()
		if tok == nil {
			continue
		}
		switch t := tok.(type) {
		case error:
			return
		case keyword:
			switch t {
			case "<<":
				stk.Push(b.resolveInlineObject(b.readDict()))
				continue
			case "[":
				stk.Push(b.resolveInlineObject(b.readArray()))
				continue
			case "true":
				stk.Push(Value{nil, objptr{}, true})
				continue
			case "false":
				stk.Push(Value{nil, objptr{}, false})
				continue
			case "BI":
				img := b.readInlineImage()
				stk.Push(b.resolveInlineObject(img))
				fn(&stk, "EI")
				stk.Reset()
				continue
			}
			fn(&stk, string(t))
			stk.Reset()
		case bool, int64, float64, string, name:
			stk.Push(b.resolveInlineObject(t))
		default:
			// unknown token kind: ignore
		}
		if b.eof {
			return
		}
	}
}

// resolveInlineObject wraps a bare lexer token in a Value without a Reader
// binding, for use inside content streams where there is no indirect-object
// graph to resolve against.
func (b *buffer) resolveInlineObject(x object) Value {
	return Value{nil, objptr{}, x}
}

var errUnexpectedToken = fmt.Errorf("pdf: unexpected token in operator stream")
