package annotation

// Window is a fixed reference range, always of strand Both, together with
// the annotations assigned to it.  Window implements Annotation through its
// embedded interval.
type Window[T Annotation] struct {
	SingleInterval
	annotations []T
}

// NewWindow creates an empty window over [start, end) on refName.
func NewWindow[T Annotation](refName string, start, end int) *Window[T] {
	return &Window[T]{SingleInterval: NewSingleInterval(refName, start, end, Both)}
}

// Add assigns a to the window.
func (w *Window[T]) Add(a T) { w.annotations = append(w.annotations, a) }

// Annotations returns the annotations assigned to the window, in the order
// they were added.
func (w *Window[T]) Annotations() []T { return w.annotations }

// Len returns the number of annotations assigned to the window.
func (w *Window[T]) Len() int { return len(w.annotations) }
