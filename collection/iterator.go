package collection

// Iterator is a pull iterator over a stream of values.  Typical use:
//
//	it := c.SortedIterator()
//	for it.Scan() {
//		v := it.Value()
//		...
//	}
//	if err := it.Close(); err != nil {
//		...
//	}
//
// An iterator must be closed even when it is abandoned before exhaustion, so
// that it can release the source it reads from.
type Iterator[T any] interface {
	// Scan advances the iterator and reports whether a value is available.
	// It returns false at the end of the stream or on error; Err tells the two
	// apart.
	//
	// REQUIRES: Close has not been called.
	Scan() bool

	// Value returns the current value.  It must be called only after Scan
	// returned true.
	Value() T

	// Err returns the error encountered during iteration, or nil.
	Err() error

	// Close releases the resources held by the iterator and returns Err().
	// Close is idempotent.
	Close() error
}

// SliceIterator iterates over an in-memory slice.
type SliceIterator[T any] struct {
	values []T
	idx    int
}

// NewSliceIterator returns an iterator over values.  The slice is not copied.
func NewSliceIterator[T any](values []T) *SliceIterator[T] {
	return &SliceIterator[T]{values: values, idx: -1}
}

// Scan implements Iterator.
func (it *SliceIterator[T]) Scan() bool {
	if it.idx+1 >= len(it.values) {
		it.idx = len(it.values)
		return false
	}
	it.idx++
	return true
}

// Value implements Iterator.
func (it *SliceIterator[T]) Value() T { return it.values[it.idx] }

// Err implements Iterator.
func (it *SliceIterator[T]) Err() error { return nil }

// Close implements Iterator.
func (it *SliceIterator[T]) Close() error {
	it.idx = len(it.values)
	return nil
}

// filterIterator drops the values of its input rejected by any filter.
type filterIterator[T any] struct {
	in      Iterator[T]
	filters []Filter[T]
	cur     T
}

// Filtered returns an iterator over the values of in that pass every filter.
// Closing the result closes in.
func Filtered[T any](in Iterator[T], filters ...Filter[T]) Iterator[T] {
	if len(filters) == 0 {
		return in
	}
	return &filterIterator[T]{in: in, filters: filters}
}

func (it *filterIterator[T]) Scan() bool {
	for it.in.Scan() {
		v := it.in.Value()
		if keep(it.filters, v) {
			it.cur = v
			return true
		}
	}
	return false
}

func (it *filterIterator[T]) Value() T     { return it.cur }
func (it *filterIterator[T]) Err() error   { return it.in.Err() }
func (it *filterIterator[T]) Close() error { return it.in.Close() }

// ReadAll drains it into a slice and closes it.
func ReadAll[T any](it Iterator[T]) ([]T, error) {
	var values []T
	for it.Scan() {
		values = append(values, it.Value())
	}
	return values, it.Close()
}
