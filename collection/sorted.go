package collection

import (
	"fmt"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/grailbio/base/errors"
)

// sortChecker forwards an iterator and fails once the input goes out of
// (reference, start) order.
type sortChecker[T annotation.Annotation] struct {
	in       Iterator[T]
	seenRefs map[string]bool
	refName  string
	start    int
	n        int
	err      error
}

// CheckSorted wraps in so that iteration stops with an errors.Precondition
// error when an annotation starts before its predecessor on the same
// reference, or when a reference reappears after another one.  References
// may come in any order, as long as each forms one contiguous run.
func CheckSorted[T annotation.Annotation](in Iterator[T]) Iterator[T] {
	return &sortChecker[T]{in: in, seenRefs: map[string]bool{}}
}

func (c *sortChecker[T]) Scan() bool {
	if c.err != nil || !c.in.Scan() {
		return false
	}
	a := c.in.Value()
	c.n++
	switch {
	case a.RefName() != c.refName:
		if c.seenRefs[a.RefName()] {
			c.err = errors.E(errors.Precondition, fmt.Sprintf(
				"input not sorted: reference %s reappears at record %d (%s)", a.RefName(), c.n, annotation.UCSC(a)))
			return false
		}
		c.seenRefs[a.RefName()] = true
		c.refName = a.RefName()
	case a.Start() < c.start:
		c.err = errors.E(errors.Precondition, fmt.Sprintf(
			"input not sorted: record %d (%s) starts before %s:%d", c.n, annotation.UCSC(a), c.refName, c.start))
		return false
	}
	c.start = a.Start()
	return true
}

func (c *sortChecker[T]) Value() T { return c.in.Value() }

func (c *sortChecker[T]) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.in.Err()
}

func (c *sortChecker[T]) Close() error {
	if err := c.in.Close(); c.err == nil {
		return err
	}
	return c.err
}
