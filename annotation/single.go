// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package annotation

// SingleInterval is one contiguous half-open range [start, end) on a
// reference.  It is a value type: methods that "modify" it return a copy.
type SingleInterval struct {
	refName    string
	start, end int
	strand     Strand
	name       string
}

// NewSingleInterval creates an unnamed interval.  If start > end the two are
// swapped.
func NewSingleInterval(refName string, start, end int, strand Strand) SingleInterval {
	return NewNamedInterval(refName, start, end, strand, "")
}

// NewNamedInterval creates an interval with a feature name.  If start > end
// the two are swapped.
func NewNamedInterval(refName string, start, end int, strand Strand, name string) SingleInterval {
	if start > end {
		start, end = end, start
	}
	return SingleInterval{refName: refName, start: start, end: end, strand: strand, name: name}
}

// Name implements Annotation.
func (s SingleInterval) Name() string { return s.name }

// RefName implements Annotation.
func (s SingleInterval) RefName() string { return s.refName }

// Start implements Annotation.
func (s SingleInterval) Start() int { return s.start }

// End implements Annotation.
func (s SingleInterval) End() int { return s.end }

// Strand implements Annotation.
func (s SingleInterval) Strand() Strand { return s.strand }

// Size implements Annotation.
func (s SingleInterval) Size() int { return s.end - s.start }

// NumBlocks implements Annotation.  An empty interval has no blocks.
func (s SingleInterval) NumBlocks() int {
	if s.end == s.start {
		return 0
	}
	return 1
}

// Blocks implements Annotation.
func (s SingleInterval) Blocks() []SingleInterval {
	if s.end == s.start {
		return nil
	}
	return []SingleInterval{s}
}

// WithStrand returns a copy of s with the given strand.
func (s SingleInterval) WithStrand(strand Strand) SingleInterval {
	s.strand = strand
	return s
}

// WithName returns a copy of s with the given name.
func (s SingleInterval) WithName(name string) SingleInterval {
	s.name = name
	return s
}

// Trim returns the part of s between the offsets relStart and relEnd, counted
// from the 5' end.  For Negative intervals offsets count back from End; every
// other strand is trimmed as though it were Positive.  The reference and the
// strand are preserved, the name is not.
func (s SingleInterval) Trim(relStart, relEnd int) SingleInterval {
	if s.strand == Negative {
		return NewSingleInterval(s.refName, s.end-relEnd, s.end-relStart, s.strand)
	}
	return NewSingleInterval(s.refName, s.start+relStart, s.start+relEnd, s.strand)
}

// Merge returns the smallest interval spanning s and other, with their
// consensus strand.  ok is false when the two do not overlap.
func (s SingleInterval) Merge(other SingleInterval) (merged SingleInterval, ok bool) {
	if !blockOverlaps(s, other) {
		return merged, false
	}
	return NewSingleInterval(s.refName, min(s.start, other.start), max(s.end, other.end),
		ConsensusStrand(s.strand, other.strand)), true
}

// Bin returns the bin of width size that contains the start of s.  Bins are
// aligned at multiples of size and carry the strand of s.
func (s SingleInterval) Bin(size int) SingleInterval {
	if size <= 0 {
		return s
	}
	start := (s.start / size) * size
	return NewSingleInterval(s.refName, start, start+size, s.strand)
}

// String returns the BED12 representation of s.
func (s SingleInterval) String() string { return BED(s) }
