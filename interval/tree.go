package interval

import (
	"fmt"

	"github.com/biogo/store/interval"
)

// Tree is an ordered map keyed by half-open [start, end) ranges. Keys are
// unique (start, end) pairs and are ordered by start, then end. Values may
// repeat.
//
// Tree is a thin typed layer over biogo's augmented left-leaning red-black
// interval tree: every node records the range spanned by its subtree, so
// overlap queries cost O(log n + k).
//
// Tree is thread compatible: callers that share one across goroutines must
// synchronize externally.
type Tree[V any] struct {
	t interval.IntTree
}

// Node is a single (key, value) entry of a Tree.
type Node[V any] struct {
	Start, End int
	Value      V
}

// treeEntry is the element type stored in the underlying IntTree. The end
// coordinate doubles as the element ID, which makes (Start, ID) - the order
// used by IntTree - equal to the (start, end) key order.
type treeEntry[V any] struct {
	start, end int
	value      V
}

func (e *treeEntry[V]) Overlap(r interval.IntRange) bool {
	return e.start < r.End && r.Start < e.end
}
func (e *treeEntry[V]) ID() uintptr              { return uintptr(e.end) }
func (e *treeEntry[V]) Range() interval.IntRange { return interval.IntRange{Start: e.start, End: e.end} }

// query is a half-open probe range. Unlike treeEntry it is never stored.
type query struct {
	start, end int
}

func (q query) Overlap(r interval.IntRange) bool {
	return q.start < r.End && r.Start < q.end
}

// Len returns the number of keys stored in the tree.
func (t *Tree[V]) Len() int { return t.t.Len() }

// Put stores v under [start, end), replacing the value of an existing entry
// with the same key. Empty and inverted ranges are rejected.
func (t *Tree[V]) Put(start, end int, v V) error {
	if start < 0 || end <= start {
		return fmt.Errorf("interval.Tree.Put: invalid range [%d, %d)", start, end)
	}
	return t.t.Insert(&treeEntry[V]{start: start, end: end, value: v}, false)
}

// find returns the stored entry with exactly the given key, or nil.
func (t *Tree[V]) find(start, end int) *treeEntry[V] {
	if end <= start || t.t.Root == nil {
		return nil
	}
	var found *treeEntry[V]
	t.t.DoMatching(func(e interval.IntInterface) bool {
		te := e.(*treeEntry[V])
		if te.start > start {
			return true
		}
		if te.start == start && te.end == end {
			found = te
			return true
		}
		return false
	}, query{start, end})
	return found
}

// Get returns the value stored under [start, end).
func (t *Tree[V]) Get(start, end int) (v V, ok bool) {
	if e := t.find(start, end); e != nil {
		return e.value, true
	}
	return v, false
}

// Remove deletes the entry with key [start, end) and returns its value. It
// returns ok=false, and leaves the tree untouched, if there is no such key.
func (t *Tree[V]) Remove(start, end int) (v V, ok bool) {
	e := t.find(start, end)
	if e == nil {
		return v, false
	}
	if err := t.t.Delete(e, false); err != nil {
		panic(fmt.Sprintf("interval.Tree.Remove [%d, %d): %v", start, end, err))
	}
	return e.value, true
}

// HasOverlappers reports whether any key intersects [start, end).
func (t *Tree[V]) HasOverlappers(start, end int) bool {
	if end <= start || t.t.Root == nil {
		return false
	}
	found := false
	t.t.DoMatching(func(interval.IntInterface) bool {
		found = true
		return true
	}, query{start, end})
	return found
}

// DoOverlapping calls fn on every entry whose key intersects [start, end), in
// ascending key order, until fn returns true. fn must not modify the tree.
func (t *Tree[V]) DoOverlapping(start, end int, fn func(start, end int, v V) (done bool)) {
	if end <= start || t.t.Root == nil {
		return
	}
	t.t.DoMatching(func(e interval.IntInterface) bool {
		te := e.(*treeEntry[V])
		return fn(te.start, te.end, te.value)
	}, query{start, end})
}

// Overlapping returns the values whose keys intersect [start, end), lowest
// start first.
func (t *Tree[V]) Overlapping(start, end int) []V {
	var vals []V
	t.DoOverlapping(start, end, func(_, _ int, v V) bool {
		vals = append(vals, v)
		return false
	})
	return vals
}

// NodesBefore returns, in ascending key order, the entries whose key ends at
// or before start; that is, the keys lying entirely before the query
// [start, end).
func (t *Tree[V]) NodesBefore(start, end int) []Node[V] {
	var nodes []Node[V]
	t.t.Do(func(e interval.IntInterface) bool {
		te := e.(*treeEntry[V])
		if te.start >= start {
			// Keys are ordered by start, and end > start for every key.
			return true
		}
		if te.end <= start {
			nodes = append(nodes, Node[V]{te.start, te.end, te.value})
		}
		return false
	})
	return nodes
}

// Do calls fn on every entry in ascending key order until fn returns true.
func (t *Tree[V]) Do(fn func(start, end int, v V) (done bool)) {
	t.t.Do(func(e interval.IntInterface) bool {
		te := e.(*treeEntry[V])
		return fn(te.start, te.end, te.value)
	})
}

// Values returns all values in ascending key order.
func (t *Tree[V]) Values() []V {
	vals := make([]V, 0, t.Len())
	t.Do(func(_, _ int, v V) bool {
		vals = append(vals, v)
		return false
	})
	return vals
}

// Nodes returns all entries in ascending key order.
func (t *Tree[V]) Nodes() []Node[V] {
	nodes := make([]Node[V], 0, t.Len())
	t.Do(func(start, end int, v V) bool {
		nodes = append(nodes, Node[V]{start, end, v})
		return false
	})
	return nodes
}

// Min returns the entry with the smallest key.
func (t *Tree[V]) Min() (n Node[V], ok bool) {
	e := t.t.Min()
	if e == nil {
		return n, false
	}
	te := e.(*treeEntry[V])
	return Node[V]{te.start, te.end, te.value}, true
}
