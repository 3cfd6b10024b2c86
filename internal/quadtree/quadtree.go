// Package quadtree is the collision broadphase: a region quadtree over
// axis-aligned boxes, stored as an arena of nodes addressed by index.
//
// The tree holds no state worth keeping between rebuilds. Clear rewinds the
// arena cursor and the next round of inserts reuses the node slots and their
// item slices, so a tree rebuilt every substep stops allocating once it has
// reached its working size.
//
// A box belongs to a child quadrant only if it lies entirely inside it. Boxes
// straddling a dividing line stay in the node where the split happened. A
// coordinate exactly on a dividing line counts as right (or bottom), and the
// same rule is used for inserts and queries.
package quadtree

import "gonum.org/v1/gonum/spatial/r2"

// Quadrant order of the four children of a split node.
const (
	NE = iota
	NW
	SW
	SE
)

const (
	DefaultMaxObjects = 4
	DefaultMaxDepth   = 8

	none = -1
)

// Item is a box keyed by the caller's identifier (a pool index).
type Item struct {
	ID  int
	Box r2.Box
}

type node struct {
	region r2.Box
	level  int
	child  int // arena index of the NE child, none for a leaf
	items  []Item
}

// Tree is an arena quadtree. The zero value is not usable; call New.
type Tree struct {
	nodes      []node
	used       int
	count      int
	maxObjects int
	maxDepth   int
	region     r2.Box
}

// New returns an empty tree covering region. A non-positive maxObjects or a
// negative maxDepth falls back to the default.
func New(region r2.Box, maxObjects, maxDepth int) *Tree {
	if maxObjects <= 0 {
		maxObjects = DefaultMaxObjects
	}
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{
		maxObjects: maxObjects,
		maxDepth:   maxDepth,
		region:     region,
	}
	t.Clear()
	return t
}

// Reset clears the tree and changes the root region.
func (t *Tree) Reset(region r2.Box) {
	t.region = region
	t.Clear()
}

// Clear drops every node below the root and every stored item.
func (t *Tree) Clear() {
	t.used = 0
	t.count = 0
	t.alloc(t.region, 0)
}

// Region is the area covered by the root.
func (t *Tree) Region() r2.Box { return t.region }

// Len is the number of stored items.
func (t *Tree) Len() int { return t.count }

// NodeCount is the number of live nodes, root included.
func (t *Tree) NodeCount() int { return t.used }

func (t *Tree) alloc(region r2.Box, level int) int {
	if t.used == len(t.nodes) {
		t.nodes = append(t.nodes, node{})
	}
	i := t.used
	t.used++
	n := &t.nodes[i]
	n.region = region
	n.level = level
	n.child = none
	n.items = n.items[:0]
	return i
}

// split appends the four children of node i in quadrant order. The arena may
// grow, so no node pointer is held across the allocations.
func (t *Tree) split(i int) {
	r := t.nodes[i].region
	level := t.nodes[i].level + 1
	mid := midpoint(r)

	first := t.alloc(r2.Box{Min: r2.Vec{X: mid.X, Y: r.Min.Y}, Max: r2.Vec{X: r.Max.X, Y: mid.Y}}, level)
	t.alloc(r2.Box{Min: r.Min, Max: mid}, level)
	t.alloc(r2.Box{Min: r2.Vec{X: r.Min.X, Y: mid.Y}, Max: r2.Vec{X: mid.X, Y: r.Max.Y}}, level)
	t.alloc(r2.Box{Min: mid, Max: r.Max}, level)

	t.nodes[i].child = first
}

func midpoint(r r2.Box) r2.Vec {
	return r2.Vec{X: r.Min.X + (r.Max.X-r.Min.X)/2, Y: r.Min.Y + (r.Max.Y-r.Min.Y)/2}
}

// quadrant returns the child quadrant that fully contains b, or none if b
// straddles a dividing line. Left and top are strict, so a box touching the
// midline from the right or bottom is placed right or bottom.
func quadrant(region, b r2.Box) int {
	mid := midpoint(region)
	left := b.Max.X < mid.X
	right := b.Min.X >= mid.X
	top := b.Max.Y < mid.Y
	bottom := b.Min.Y >= mid.Y

	switch {
	case right && top:
		return NE
	case left && top:
		return NW
	case left && bottom:
		return SW
	case right && bottom:
		return SE
	}
	return none
}

// Insert stores box under id.
func (t *Tree) Insert(id int, box r2.Box) {
	t.count++
	t.insertAt(0, Item{ID: id, Box: box})
}

// rehome splits node i if needed and pushes down every local item that now
// fits a single child. Items that still straddle stay local.
func (t *Tree) rehome(i int) {
	if t.nodes[i].child == none {
		t.split(i)
	}
	n := &t.nodes[i]
	region, first := n.region, n.child

	kept := n.items[:0]
	var moved []Item
	for _, it := range n.items {
		if q := quadrant(region, it.Box); q != none {
			moved = append(moved, it)
			continue
		}
		kept = append(kept, it)
	}
	t.nodes[i].items = kept

	for _, it := range moved {
		t.insertAt(first+quadrant(region, it.Box), it)
	}
}

func (t *Tree) insertAt(start int, it Item) {
	i := start
	for {
		n := &t.nodes[i]
		if n.child != none {
			if q := quadrant(n.region, it.Box); q != none {
				i = n.child + q
				continue
			}
		}
		n.items = append(n.items, it)
		if len(n.items) > t.maxObjects && n.level < t.maxDepth {
			t.rehome(i)
		}
		return
	}
}

// Retrieve appends to dst the id of every item that may intersect query and
// returns the extended slice. The result is a superset: no item whose box
// intersects query is ever missed, but items near quadrant borders may be
// returned without intersecting it.
//
// A query that fits one quadrant descends into that child only. A query that
// straddles a dividing line descends into every child whose side of the line
// it touches, since items stored in those children may overlap it.
func (t *Tree) Retrieve(query r2.Box, dst []int) []int {
	return t.retrieve(0, query, dst)
}

func (t *Tree) retrieve(i int, q r2.Box, dst []int) []int {
	n := &t.nodes[i]
	for _, it := range n.items {
		dst = append(dst, it.ID)
	}
	if n.child == none {
		return dst
	}
	first := n.child
	mid := midpoint(n.region)

	if q.Max.X >= mid.X && q.Min.Y < mid.Y {
		dst = t.retrieve(first+NE, q, dst)
	}
	if q.Min.X < mid.X && q.Min.Y < mid.Y {
		dst = t.retrieve(first+NW, q, dst)
	}
	if q.Min.X < mid.X && q.Max.Y >= mid.Y {
		dst = t.retrieve(first+SW, q, dst)
	}
	if q.Max.X >= mid.X && q.Max.Y >= mid.Y {
		dst = t.retrieve(first+SE, q, dst)
	}
	return dst
}

// Regions appends the region of every live node, root first, for debug
// overlays.
func (t *Tree) Regions(dst []r2.Box) []r2.Box {
	for i := 0; i < t.used; i++ {
		dst = append(dst, t.nodes[i].region)
	}
	return dst
}

// Depth is the deepest level holding a node.
func (t *Tree) Depth() int {
	d := 0
	for i := 0; i < t.used; i++ {
		d = max(d, t.nodes[i].level)
	}
	return d
}
