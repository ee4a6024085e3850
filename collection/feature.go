package collection

import (
	"sort"
	"strings"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/interval"
	"github.com/biogo/store/llrb"
)

// refKey orders reference names in the llrb tree.
type refKey string

// Compare compares two refKey objects for use in llrb.
func (k refKey) Compare(c llrb.Comparable) int {
	return strings.Compare(string(k), string(c.(refKey)))
}

// FeatureCollection is an in-memory Collection.  Features are indexed per
// reference by an interval tree keyed on their bounding box, so region
// queries cost O(log n + k).  Sorted iteration visits references in
// lexicographic order.
//
// FeatureCollection is thread compatible.
type FeatureCollection[T annotation.Annotation] struct {
	FilterSet[T]
	refs  llrb.Tree
	trees map[string]*interval.Tree[[]T]
	// byFingerprint detects exact duplicates.
	byFingerprint map[uint64][]T
	n             int
}

// NewFeatureCollection creates an empty collection.
func NewFeatureCollection[T annotation.Annotation]() *FeatureCollection[T] {
	return &FeatureCollection[T]{
		trees:         map[string]*interval.Tree[[]T]{},
		byFingerprint: map[uint64][]T{},
	}
}

// Add inserts a.  It returns false, and leaves the collection unchanged, if a
// has no blocks or if an equal annotation (see annotation.Equal) is already
// present.
func (c *FeatureCollection[T]) Add(a T) bool {
	if a.NumBlocks() == 0 {
		return false
	}
	fp := annotation.Fingerprint(a)
	for _, other := range c.byFingerprint[fp] {
		if annotation.Equal(other, a) {
			return false
		}
	}
	c.byFingerprint[fp] = append(c.byFingerprint[fp], a)

	tree := c.trees[a.RefName()]
	if tree == nil {
		tree = &interval.Tree[[]T]{}
		c.trees[a.RefName()] = tree
		c.refs.Insert(refKey(a.RefName()))
	}
	features, _ := tree.Get(a.Start(), a.End())
	// Features sharing a bounding box are kept in Compare order.
	i := sort.Search(len(features), func(i int) bool {
		return annotation.Compare(features[i], a) > 0
	})
	features = append(features, a)
	copy(features[i+1:], features[i:])
	features[i] = a
	if err := tree.Put(a.Start(), a.End(), features); err != nil {
		panic(err)
	}
	c.n++
	return true
}

// AddAll inserts every annotation of it and closes it.  It returns the number
// of annotations added.
func (c *FeatureCollection[T]) AddAll(it Iterator[T]) (int, error) {
	n := 0
	for it.Scan() {
		if c.Add(it.Value()) {
			n++
		}
	}
	return n, it.Close()
}

// Len returns the number of annotations, ignoring filters.
func (c *FeatureCollection[T]) Len() int { return c.n }

// RefNames returns the names of the references holding annotations, in
// iteration order.
func (c *FeatureCollection[T]) RefNames() []string {
	names := make([]string, 0, c.refs.Len())
	c.refs.Do(func(item llrb.Comparable) bool {
		names = append(names, string(item.(refKey)))
		return false
	})
	return names
}

// SortedIterator implements Collection.
func (c *FeatureCollection[T]) SortedIterator() Iterator[T] {
	return &featureIterator[T]{c: c, refs: c.RefNames(), filters: c.Filters()}
}

// Overlapping implements Collection.
func (c *FeatureCollection[T]) Overlapping(region annotation.Annotation, fullyContained bool) Iterator[T] {
	tree := c.trees[region.RefName()]
	if tree == nil || region.NumBlocks() == 0 {
		return NewSliceIterator[T](nil)
	}
	filters := append(c.Filters(), RegionFilter[T](region, fullyContained))
	var matches []T
	tree.DoOverlapping(region.Start(), region.End(), func(_, _ int, features []T) bool {
		for _, f := range features {
			if keep(filters, f) {
				matches = append(matches, f)
			}
		}
		return false
	})
	return NewSliceIterator(matches)
}

// featureIterator walks the collection one reference at a time.
type featureIterator[T annotation.Annotation] struct {
	c       *FeatureCollection[T]
	refs    []string
	filters []Filter[T]
	buf     []T
	cur     T
}

func (it *featureIterator[T]) Scan() bool {
	for {
		for len(it.buf) > 0 {
			v := it.buf[0]
			it.buf = it.buf[1:]
			if keep(it.filters, v) {
				it.cur = v
				return true
			}
		}
		if len(it.refs) == 0 {
			return false
		}
		tree := it.c.trees[it.refs[0]]
		it.refs = it.refs[1:]
		tree.Do(func(_, _ int, features []T) bool {
			it.buf = append(it.buf, features...)
			return false
		})
	}
}

func (it *featureIterator[T]) Value() T   { return it.cur }
func (it *featureIterator[T]) Err() error { return nil }

func (it *featureIterator[T]) Close() error {
	it.refs, it.buf = nil, nil
	return nil
}
