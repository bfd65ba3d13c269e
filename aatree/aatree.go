// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package aatree implements an ordered set of uint64 keys as an AA tree,
// a red-black variant that only allows red nodes on the right and
// rebalances with two small rotations. The precompute passes use it to
// deduplicate maps while keeping a deterministic sorted order.
package aatree

type node struct {
	key   uint64
	level int
	left  *node
	right *node
}

// Tree is an ordered uint64 set. The zero value is an empty tree.
type Tree struct {
	root *node
	size int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// skew removes a left horizontal link by rotating right.
func skew(n *node) *node {
	if n.left == nil || n.left.level != n.level {
		return n
	}
	l := n.left
	n.left = l.right
	l.right = n
	return l
}

// split removes two consecutive right horizontal links by rotating left
// and promoting the middle node.
func split(n *node) *node {
	if n.right == nil || n.right.right == nil || n.right.right.level != n.level {
		return n
	}
	r := n.right
	n.right = r.left
	r.left = n
	r.level++
	return r
}

// Insert adds key to the set and reports whether it was absent.
func (t *Tree) Insert(key uint64) bool {
	var added bool
	t.root = insert(t.root, key, &added)
	if added {
		t.size++
	}
	return added
}

func insert(n *node, key uint64, added *bool) *node {
	if n == nil {
		*added = true
		return &node{key: key, level: 1}
	}
	switch {
	case key < n.key:
		n.left = insert(n.left, key, added)
	case key > n.key:
		n.right = insert(n.right, key, added)
	default:
		return n
	}
	return split(skew(n))
}

// Contains reports whether key is in the set.
func (t *Tree) Contains(key uint64) bool {
	n := t.root
	for n != nil {
		switch {
		case key < n.key:
			n = n.left
		case key > n.key:
			n = n.right
		default:
			return true
		}
	}
	return false
}

// Len returns the number of keys in the set.
func (t *Tree) Len() int {
	return t.size
}

// Ascend calls fn on every key in increasing order until fn returns
// false.
func (t *Tree) Ascend(fn func(key uint64) bool) {
	ascend(t.root, fn)
}

func ascend(n *node, fn func(uint64) bool) bool {
	if n == nil {
		return true
	}
	if !ascend(n.left, fn) {
		return false
	}
	if !fn(n.key) {
		return false
	}
	return ascend(n.right, fn)
}
