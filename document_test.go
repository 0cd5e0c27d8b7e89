// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocument() (*Document, *Reader) {
	r := &Reader{
		trailer: dict{
			"Size": int64(3),
			"Root": objptr{id: 1, gen: 0},
		},
		xref: []xref{
			{}, // object 0: unused
			{ptr: objptr{id: 1, gen: 0}},
			{ptr: objptr{id: 2, gen: 0}},
		},
	}
	return NewDocument(r), r
}

func TestDocument_AddUpdateRemoveObject(t *testing.T) {
	d, _ := newTestDocument()

	ptr := d.AddObject(dict{"Type": name("Test")})
	v := d.GetObject(ptr)
	assert.Equal(t, "Test", v.Key("Type").Name())

	d.UpdateObject(ptr, dict{"Type": name("Updated")})
	v = d.GetObject(ptr)
	assert.Equal(t, "Updated", v.Key("Type").Name())

	d.RemoveObject(ptr.id)
	v = d.GetObject(ptr)
	assert.True(t, v.IsNull())
}

func TestDocument_ResolveRecursiveChasesMultipleLevels(t *testing.T) {
	d, _ := newTestDocument()

	leaf := d.AddObject(int64(42))
	mid := d.AddObject(leaf)
	top := d.AddObject(mid)

	v := d.Resolve(top)
	assert.Equal(t, int64(42), v.Int64())
}

func TestDocument_ResolveCycleReturnsNull(t *testing.T) {
	d, _ := newTestDocument()

	a := objptr{id: 100, gen: 0}
	b := objptr{id: 101, gen: 0}
	d.overlay[a] = b
	d.overlay[b] = a

	v := d.Resolve(a)
	assert.True(t, v.IsNull())
}

func TestDocument_GetObjectFollowsExactlyOneLevel(t *testing.T) {
	d, _ := newTestDocument()

	inner := d.AddObject(int64(7))
	outer := d.AddObject(inner)

	v := d.GetObject(outer)
	// GetObject must NOT chase past the first indirection: the result is
	// itself still an objptr, not the resolved int64.
	ptr, ok := v.data.(objptr)
	require.True(t, ok)
	assert.Equal(t, inner, ptr)
}

func TestDocument_GetPageContentsNullWhenAbsent(t *testing.T) {
	d, _ := newTestDocument()
	page := Value{nil, objptr{}, dict{}}
	data, err := d.GetPageContents(page)
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestDocument_GetInheritedWalksParentChain(t *testing.T) {
	d, _ := newTestDocument()
	parent := dict{"Resources": dict{"Font": dict{}}}
	child := Value{nil, objptr{}, dict{"Parent": parent}}

	res := d.getInherited(child, "Resources")
	assert.False(t, res.IsNull())
}
