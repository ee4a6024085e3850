package collection

import (
	"fmt"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/grailbio/base/errors"
)

// ConverterIterator maps each input annotation into the feature space of
// every feature of a mapping collection that it overlaps.  For each such
// feature f it yields the bounding box of Intersect(f, input) expressed in
// f's coordinates (see annotation.ToFeatureSpace); the results live on a
// reference named after f.
type ConverterIterator[T, F annotation.Annotation] struct {
	in      Iterator[T]
	mapping Collection[F]
	pending []annotation.SingleInterval
	cur     annotation.SingleInterval
	done    bool
	err     error
}

// NewConverterIterator creates a converter over in.  The iterator owns in and
// closes it on exhaustion or Close.
func NewConverterIterator[T, F annotation.Annotation](in Iterator[T], mapping Collection[F]) *ConverterIterator[T, F] {
	return &ConverterIterator[T, F]{in: in, mapping: mapping}
}

// Scan implements Iterator.
func (it *ConverterIterator[T, F]) Scan() bool {
	for len(it.pending) == 0 {
		if it.done {
			return false
		}
		if !it.in.Scan() {
			it.done = true
			it.err = it.in.Close()
			return false
		}
		if err := it.convert(it.in.Value()); err != nil {
			it.err = err
			it.done = true
			if closeErr := it.in.Close(); closeErr != nil {
				it.err = errors.E(err, fmt.Sprintf("closing input: %v", closeErr))
			}
			return false
		}
	}
	it.cur = it.pending[0]
	it.pending = it.pending[1:]
	return true
}

func (it *ConverterIterator[T, F]) convert(a T) error {
	features := it.mapping.Overlapping(a, false)
	for features.Scan() {
		f := features.Value()
		shared := annotation.Intersect(f, a)
		if shared.IsEmpty() {
			continue
		}
		bbox := annotation.NewSingleInterval(shared.RefName(), shared.Start(), shared.End(), shared.Strand())
		if fr, ok := annotation.ToFeatureSpace(f, bbox); ok {
			it.pending = append(it.pending, fr)
		}
	}
	return features.Close()
}

// Value implements Iterator.
func (it *ConverterIterator[T, F]) Value() annotation.SingleInterval { return it.cur }

// Err implements Iterator.
func (it *ConverterIterator[T, F]) Err() error { return it.err }

// Close implements Iterator.
func (it *ConverterIterator[T, F]) Close() error {
	it.pending = nil
	if !it.done {
		it.done = true
		it.err = it.in.Close()
	}
	return it.err
}
