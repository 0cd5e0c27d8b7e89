// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dictValue(m map[string]any) Value {
	return newDict(m)
}

func TestParseFunction_Exponential(t *testing.T) {
	v := dictValue(map[string]any{
		"FunctionType": int64(2),
		"Domain":       []any{float64(0), float64(1)},
		"C0":           []any{float64(0)},
		"C1":           []any{float64(1)},
		"N":            float64(1),
	})
	f, err := ParseFunction(v)
	require.NoError(t, err)

	out, err := f.Eval([]float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[0], 1e-9)
}

func TestParseFunction_ExponentialConstant(t *testing.T) {
	// C0 == C1: evaluate(x) == C0 for all x in Domain.
	v := dictValue(map[string]any{
		"FunctionType": int64(2),
		"Domain":       []any{float64(0), float64(1)},
		"C0":           []any{float64(0.25)},
		"C1":           []any{float64(0.25)},
		"N":            float64(3),
	})
	f, err := ParseFunction(v)
	require.NoError(t, err)

	for _, x := range []float64{0, 0.3, 0.7, 1} {
		out, err := f.Eval([]float64{x})
		require.NoError(t, err)
		assert.InDelta(t, 0.25, out[0], 1e-9)
	}
}

func TestParseFunction_StitchingMissingEncode(t *testing.T) {
	v := dictValue(map[string]any{
		"FunctionType": int64(3),
		"Domain":       []any{float64(0), float64(1)},
		"Functions":    []any{},
		"Bounds":       []any{},
	})
	_, err := ParseFunction(v)
	assert.ErrorIs(t, err, ErrMissingEncode)
}

func TestParseFunction_StitchingDispatch(t *testing.T) {
	lo := dictValue(map[string]any{
		"FunctionType": int64(2),
		"Domain":       []any{float64(0), float64(1)},
		"C0":           []any{float64(0)},
		"C1":           []any{float64(0)},
		"N":            float64(1),
	})
	hi := dictValue(map[string]any{
		"FunctionType": int64(2),
		"Domain":       []any{float64(0), float64(1)},
		"C0":           []any{float64(1)},
		"C1":           []any{float64(1)},
		"N":            float64(1),
	})
	v := dictValue(map[string]any{
		"FunctionType": int64(3),
		"Domain":       []any{float64(0), float64(1)},
		"Functions":    []any{lo.data, hi.data},
		"Bounds":       []any{float64(0.5)},
		"Encode":       []any{float64(0), float64(1), float64(0), float64(1)},
	})
	f, err := ParseFunction(v)
	require.NoError(t, err)

	out, err := f.Eval([]float64{0.2})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1e-9)

	out, err = f.Eval([]float64{0.8})
	require.NoError(t, err)
	assert.InDelta(t, 1, out[0], 1e-9)
}

func TestParseFunction_PostScriptArithmetic(t *testing.T) {
	v := dictValue(map[string]any{
		"FunctionType": int64(4),
		"Domain":       []any{float64(0), float64(1)},
		"Range":        []any{float64(0), float64(1)},
	})
	// {dup mul} is assembled manually below since newDict has no stream
	// backing; PostScript function bodies are tested via evalPS directly.
	toks, _, err := tokenizePS([]byte("{ dup mul }"), 0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	out, err := evalPS(toks[0].block, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out[0], 1e-9)
	_ = v
}

func TestParseFunction_PostScriptIfElse(t *testing.T) {
	toks, _, err := tokenizePS([]byte("{ dup 0.5 gt { pop 1 } { pop 0 } ifelse }"), 0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	body := toks[0].block

	out, err := evalPS(body, []float64{0.9})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out)

	out, err = evalPS(body, []float64{0.1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, out)
}

func TestFunction_ClipsDomainAndRange(t *testing.T) {
	v := dictValue(map[string]any{
		"FunctionType": int64(2),
		"Domain":       []any{float64(0), float64(1)},
		"Range":        []any{float64(0), float64(0.5)},
		"C0":           []any{float64(0)},
		"C1":           []any{float64(1)},
		"N":            float64(1),
	})
	f, err := ParseFunction(v)
	require.NoError(t, err)

	out, err := f.Eval([]float64{5}) // clipped to Domain max 1
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[0], 1e-9) // then clipped to Range max 0.5
}
