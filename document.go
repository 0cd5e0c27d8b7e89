// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Document is the mutable object-store layer the teacher's read-only Reader
// lacks: get_object/add_object/update_object/remove_object on top of the
// xref table, plus page-tree traversal with inherited-attribute lookup.
//
// Grounded on mikeschinkel-gxpdf's document.go (the Document-as-wrapper-
// over-a-parsed-file shape: Page/PageCount/Pages accessors, Info/Version/
// encryption-state queries) and ScriptRock-pdf's internal/types.Objptr/
// Objdef (the (id, gen) + stored-object pairing this store is built on),
// adapted to this package's own dict/array/objptr primitives from lex.go.

import (
	"fmt"
)

// maxResolveHops bounds indirect-reference chasing (spec.md §4.5: resolve
// recursively until non-ref, returning Null on unresolvable cycles after
// N>=50 hops).
const maxResolveHops = 50

// A Document wraps a Reader with a mutable object store: objects added via
// AddObject/UpdateObject override what GetObject/Resolve return, without
// touching the underlying file until a Writer serializes the result.
type Document struct {
	r        *Reader
	overlay  map[objptr]object // added/updated objects, keyed by (id,gen)
	removed  map[uint32]bool   // tombstoned object numbers
	nextFree uint32
}

// NewDocument wraps r for mutation. r's own xref/object graph is read
// through unmodified until overridden by a mutation call.
func NewDocument(r *Reader) *Document {
	return &Document{
		r:       r,
		overlay: make(map[objptr]object),
		removed: make(map[uint32]bool),
	}
}

// GetObject follows exactly one level of indirection, per spec.md §4.5: if
// ref resolves to another indirect reference it is returned unresolved.
func (d *Document) GetObject(ref objptr) Value {
	if d.removed[ref.id] {
		return Value{}
	}
	if obj, ok := d.overlay[ref]; ok {
		// obj is already the value stored at ref; wrap it directly rather
		// than handing it to r.resolve, which would instead try to
		// dereference it against the original file's xref table (wrong
		// when obj happens to itself be an objptr into the overlay).
		return Value{d.r, ref, obj}
	}
	return d.r.resolve(objptr{}, ref)
}

// Resolve recursively dereferences x until it is no longer an indirect
// reference, returning a null Value if it does not bottom out within
// maxResolveHops (guards against cyclic object graphs, which are otherwise
// representable since references are flat (id,gen) indices rather than
// direct pointers).
func (d *Document) Resolve(x object) Value {
	hops := 0
	for {
		ptr, ok := x.(objptr)
		if !ok {
			return d.r.resolve(objptr{}, x)
		}
		if hops >= maxResolveHops {
			return Value{}
		}
		hops++
		if d.removed[ptr.id] {
			return Value{}
		}
		if obj, ok := d.overlay[ptr]; ok {
			x = obj
			continue
		}
		v := d.r.resolve(objptr{}, ptr)
		if v.IsNull() {
			return Value{}
		}
		x = v.data
	}
}

// AddObject allocates the next free object number (generation 0) and stores
// obj under it, returning the new reference.
func (d *Document) AddObject(obj object) objptr {
	id := d.allocate()
	ptr := objptr{id: id, gen: 0}
	d.overlay[ptr] = obj
	return ptr
}

// UpdateObject overwrites the object at ptr (which must already exist, via
// the original file or a prior AddObject) and rewires resolution to the new
// value; the generation in ptr is preserved.
func (d *Document) UpdateObject(ptr objptr, obj object) {
	delete(d.removed, ptr.id)
	d.overlay[ptr] = obj
	if ptr.id >= d.nextFree {
		d.nextFree = ptr.id + 1
	}
}

// RemoveObject tombstones the object number so future GetObject/Resolve
// calls return a null Value, without physically deleting bytes from the
// source file (matching the append-only nature of incremental updates).
func (d *Document) RemoveObject(id uint32) {
	d.removed[id] = true
	for ptr := range d.overlay {
		if ptr.id == id {
			delete(d.overlay, ptr)
		}
	}
}

func (d *Document) allocate() uint32 {
	if d.nextFree == 0 {
		d.nextFree = uint32(len(d.r.xref))
		if d.nextFree == 0 {
			d.nextFree = 1
		}
	}
	id := d.nextFree
	d.nextFree++
	return id
}

// touchedObjects returns every (objptr, object) pair added or updated since
// the Document was created, for the incremental writer.
func (d *Document) touchedObjects() map[objptr]object {
	return d.overlay
}

// Trailer returns the document's trailer dictionary.
func (d *Document) Trailer() Value {
	return d.r.Trailer()
}

// --- Page-tree traversal with inherited-attribute lookup ---

// GetPage performs a DFS of Pages.Kids to locate the i'th leaf Page node
// (0-indexed), per spec.md §4.5 ("O(tree size) and sufficient; no need to
// cache").
func (d *Document) GetPage(i int) (Value, error) {
	root := d.Trailer().Key("Root").Key("Pages")
	if root.IsNull() {
		return Value{}, fmt.Errorf("pdf: no page tree root")
	}
	counter := i
	page, ok := d.walkPages(root, &counter, 0)
	if !ok {
		return Value{}, fmt.Errorf("pdf: page index %d out of range", i)
	}
	return page, nil
}

func (d *Document) walkPages(node Value, counter *int, depth int) (Value, bool) {
	if depth > maxResolveHops {
		return Value{}, false
	}
	typ := node.Key("Type").Name()
	if typ == "Page" {
		if *counter == 0 {
			return node, true
		}
		*counter--
		return Value{}, false
	}
	kids := node.Key("Kids")
	for k := 0; k < kids.Len(); k++ {
		if page, ok := d.walkPages(kids.Index(k), counter, depth+1); ok {
			return page, true
		}
	}
	return Value{}, false
}

// getInherited walks the Parent chain looking up key, per the inherited
// page attributes (Resources, MediaBox, CropBox, Rotate) ISO 32000-1 §7.7.3.4
// defines; this mirrors page.go's own findInherited but operates through
// the Document's overlay-aware resolution.
func (d *Document) getInherited(node Value, key string) Value {
	for depth := 0; depth < maxResolveHops; depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		parent := node.Key("Parent")
		if parent.IsNull() {
			return Value{}
		}
		node = parent
	}
	return Value{}
}

// GetPageMediaBox returns the effective (possibly inherited) /MediaBox.
func (d *Document) GetPageMediaBox(page Value) Value {
	return d.getInherited(page, "MediaBox")
}

// GetPageResources returns the effective (possibly inherited) /Resources.
func (d *Document) GetPageResources(page Value) Value {
	return d.getInherited(page, "Resources")
}

// GetPageContents returns the logical content-stream bytes of page: a
// single stream's bytes, or each array element's bytes concatenated with a
// whitespace boundary between them (ISO 32000-1 §7.8.2: "the effect shall
// be as if all of the streams in the array were concatenated ... treat the
// data as if it were a single stream").
func (d *Document) GetPageContents(page Value) ([]byte, error) {
	contents := page.Key("Contents")
	switch contents.Kind() {
	case Stream:
		return readAllClose(contents.Reader())
	case Array:
		var out []byte
		for i := 0; i < contents.Len(); i++ {
			part, err := readAllClose(contents.Index(i).Reader())
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
			out = append(out, '\n')
		}
		return out, nil
	case Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("pdf: unexpected /Contents kind %v", contents.Kind())
	}
}
