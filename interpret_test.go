// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contentStreamValue(content string) Value {
	r := &Reader{f: bytes.NewReader([]byte(content)), end: int64(len(content))}
	return Value{r, objptr{}, stream{hdr: dict{"Length": int64(len(content))}, offset: 0}}
}

type recordedOp struct {
	op    string
	stack []Value
}

func TestInterpret_DispatchesOperatorsWithAccumulatedOperands(t *testing.T) {
	strm := contentStreamValue("1 0 0 rg\nQ\n")

	var ops []recordedOp
	Interpret(strm, func(stk *Stack, op string) {
		var vals []Value
		for i := 0; i < stk.Len(); i++ {
			vals = append(vals, stk.Get(i))
		}
		ops = append(ops, recordedOp{op: op, stack: vals})
	})

	require.Len(t, ops, 2)
	assert.Equal(t, "rg", ops[0].op)
	require.Len(t, ops[0].stack, 3)
	assert.Equal(t, int64(1), ops[0].stack[0].Int64())
	assert.Equal(t, int64(0), ops[0].stack[1].Int64())
	assert.Equal(t, "Q", ops[1].op)
	assert.Empty(t, ops[1].stack)
}

func TestInterpret_InlineImageDispatchesSyntheticEIOperator(t *testing.T) {
	strm := contentStreamValue("1 0 0 rg\nBI\n/W 2\n/H 1\n/BPC 8\n/CS /G\nID XY EI\nQ\n")

	var ops []recordedOp
	Interpret(strm, func(stk *Stack, op string) {
		var vals []Value
		for i := 0; i < stk.Len(); i++ {
			vals = append(vals, stk.Get(i))
		}
		ops = append(ops, recordedOp{op: op, stack: vals})
	})

	require.Len(t, ops, 3)
	assert.Equal(t, "rg", ops[0].op)
	assert.Equal(t, "EI", ops[1].op)
	require.Len(t, ops[1].stack, 1)

	img := ops[1].stack[0]
	assert.Equal(t, int64(2), img.Key("Width").Int64())
	assert.Equal(t, int64(1), img.Key("Height").Int64())
	assert.Equal(t, int64(8), img.Key("BitsPerComponent").Int64())
	assert.Equal(t, "DeviceGray", img.Key("ColorSpace").Name())
	assert.Equal(t, "XY", img.Key("Data").RawString())

	assert.Equal(t, "Q", ops[2].op)
}

func TestInterpret_InlineImageExpandsAbbreviatedFilterName(t *testing.T) {
	strm := contentStreamValue("BI\n/W 1\n/H 1\n/F /Fl\nID Z EI\n")

	var filter string
	Interpret(strm, func(stk *Stack, op string) {
		if op == "EI" && stk.Len() > 0 {
			filter = stk.Get(0).Key("Filter").Name()
		}
	})
	assert.Equal(t, "FlateDecode", filter)
}
