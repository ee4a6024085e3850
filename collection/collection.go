package collection

import (
	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/interval"
)

// Filter decides whether a value is kept.  A collection yields only the
// values for which all of its filters return true.
type Filter[T any] func(T) bool

func keep[T any](filters []Filter[T], v T) bool {
	for _, f := range filters {
		if !f(v) {
			return false
		}
	}
	return true
}

// Collection is a source of annotations that can be iterated in sorted
// order or queried by region.  Every iterator it returns applies all the
// filters registered so far.
type Collection[T annotation.Annotation] interface {
	// AddFilter registers f.  It affects iterators created afterwards.
	AddFilter(f Filter[T])

	// Filters returns the registered filters.
	Filters() []Filter[T]

	// SortedIterator iterates over all annotations, sorted by reference and
	// then start.
	SortedIterator() Iterator[T]

	// Overlapping iterates, in sorted order, over the annotations that
	// overlap region.  If fullyContained is set, only annotations that
	// region contains are returned.
	Overlapping(region annotation.Annotation, fullyContained bool) Iterator[T]
}

// FilterSet is the filter bookkeeping shared by Collection implementations.
// The zero value has no filters.
type FilterSet[T any] struct {
	filters []Filter[T]
}

// AddFilter implements Collection.
func (s *FilterSet[T]) AddFilter(f Filter[T]) { s.filters = append(s.filters, f) }

// Filters implements Collection.
func (s *FilterSet[T]) Filters() []Filter[T] {
	return append([]Filter[T](nil), s.filters...)
}

// Keep reports whether v passes every filter.
func (s *FilterSet[T]) Keep(v T) bool { return keep(s.filters, v) }

// RegionFilter keeps the annotations that overlap (or, if fullyContained,
// lie within) region.
func RegionFilter[T annotation.Annotation](region annotation.Annotation, fullyContained bool) Filter[T] {
	if fullyContained {
		return func(a T) bool { return annotation.Contains(region, a) }
	}
	return func(a T) bool { return annotation.Overlaps(region, a) }
}

// TargetFilter keeps the annotations with at least one block that intersects
// u.
func TargetFilter[T annotation.Annotation](u *interval.Union) Filter[T] {
	return func(a T) bool {
		for _, blk := range a.Blocks() {
			if u.Intersects(blk.RefName(), blk.Start(), blk.End()) {
				return true
			}
		}
		return false
	}
}

// Windows returns a window iterator over the annotations of c that overlap
// region.
func Windows[T annotation.Annotation](c Collection[T], region annotation.Annotation, windowLength int) *WindowIterator[T] {
	return NewWindowIterator(c.Overlapping(region, false), windowLength)
}
