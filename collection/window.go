package collection

import (
	"fmt"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
)

// WindowIterator turns a stream of annotations sorted by (reference, start)
// into a stream of fixed-length windows, each holding the annotations that
// reach it.  An input annotation is added, once, to the windows
// [i, i+length) for every i in [max(0, s-length), e) of each of its blocks
// [s, e).
//
// Windows are buffered in an interval tree until no later input can reach
// them, and then emitted in ascending start order.  Memory is bounded by the
// window length times the local depth of the input.
//
// The input must be sorted; CheckSorted can enforce that.  An out-of-order
// annotation causes windows to be emitted before all their annotations have
// been seen.
type WindowIterator[T annotation.Annotation] struct {
	in     Iterator[T]
	length int

	refName string
	active  interval.Tree[*annotation.Window[T]]
	// ready holds fully formed windows, in emission order.
	ready []*annotation.Window[T]
	cur   *annotation.Window[T]

	exhausted bool
	closed    bool
	err       error
}

// NewWindowIterator creates a window iterator over in.  The iterator owns in:
// it closes in when in is exhausted, or on Close.
func NewWindowIterator[T annotation.Annotation](in Iterator[T], windowLength int) *WindowIterator[T] {
	it := &WindowIterator[T]{in: in, length: windowLength}
	if windowLength <= 0 {
		it.err = errors.E(errors.Invalid, fmt.Sprintf("window length must be positive, got %d", windowLength))
	}
	return it
}

// Scan implements Iterator.
func (it *WindowIterator[T]) Scan() bool {
	for {
		if len(it.ready) > 0 {
			it.cur = it.ready[0]
			it.ready[0] = nil
			it.ready = it.ready[1:]
			return true
		}
		if it.exhausted || it.closed || it.err != nil {
			return false
		}
		if !it.in.Scan() {
			it.exhausted = true
			if err := it.in.Close(); err != nil {
				it.err = err
				return false
			}
			it.flush()
			continue
		}
		it.add(it.in.Value())
	}
}

// add evicts the windows that r proves fully formed, then adds r to every
// window it reaches.
func (it *WindowIterator[T]) add(r T) {
	if r.RefName() != it.refName {
		it.flush()
		it.refName = r.RefName()
	}
	start := r.Start()
	for _, n := range it.active.NodesBefore(start, start) {
		if n.End < start {
			it.active.Remove(n.Start, n.End)
			it.ready = append(it.ready, n.Value)
		}
	}
	// next skips the windows an earlier block of r already reached.
	next := 0
	for _, blk := range r.Blocks() {
		for i := max(next, blk.Start()-it.length); i < blk.End(); i++ {
			w, ok := it.active.Remove(i, i+it.length)
			if !ok {
				w = annotation.NewWindow[T](r.RefName(), i, i+it.length)
			}
			w.Add(r)
			if err := it.active.Put(i, i+it.length, w); err != nil {
				panic(err)
			}
		}
		next = blk.End()
	}
}

// flush moves every buffered window to the ready queue in ascending order.
func (it *WindowIterator[T]) flush() {
	if it.active.Len() == 0 {
		return
	}
	if log.At(log.Debug) {
		log.Debug.Printf("collection: flushing %d windows on %s", it.active.Len(), it.refName)
	}
	it.ready = append(it.ready, it.active.Values()...)
	it.active = interval.Tree[*annotation.Window[T]]{}
}

// Value implements Iterator.
func (it *WindowIterator[T]) Value() *annotation.Window[T] { return it.cur }

// Err implements Iterator.
func (it *WindowIterator[T]) Err() error { return it.err }

// Close implements Iterator.  It closes the input if it is still open and
// drops any buffered windows.
func (it *WindowIterator[T]) Close() error {
	if it.closed {
		return it.err
	}
	it.closed = true
	if !it.exhausted {
		it.exhausted = true
		if err := it.in.Close(); err != nil && it.err == nil {
			it.err = err
		}
	}
	it.ready = nil
	it.active = interval.Tree[*annotation.Window[T]]{}
	return it.err
}
