// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package annotation

import (
	"strings"

	"github.com/grailbio/base/errors"
)

// Annotation is a feature made of one or more disjoint blocks on a single
// reference and strand.
type Annotation interface {
	// Name returns the feature name; it may be empty.
	Name() string
	// RefName returns the name of the reference sequence, e.g. "chr1".  It is
	// empty for an annotation with no blocks.
	RefName() string
	// Start returns the 0-based start of the first block.
	Start() int
	// End returns the exclusive end of the last block.
	End() int
	// Strand returns the orientation shared by all blocks.
	Strand() Strand
	// Size returns the number of bases covered by the blocks.
	Size() int
	// NumBlocks returns the number of blocks.
	NumBlocks() int
	// Blocks returns the blocks in ascending coordinate order.  The caller
	// must not modify the returned slice.
	Blocks() []SingleInterval
}

// blockOverlaps reports whether two blocks share at least one base on the
// same reference with a valid consensus strand.
func blockOverlaps(b1, b2 SingleInterval) bool {
	return max(b1.start, b2.start) < min(b1.end, b2.end) &&
		b1.refName == b2.refName &&
		ConsensusStrand(b1.strand, b2.strand) != Invalid
}

// doOverlappingBlocks calls fn for each block of a that overlaps blk, in
// ascending order, until fn returns true.  Blocked annotations are probed
// through their interval tree.
func doOverlappingBlocks(a Annotation, blk SingleInterval, fn func(SingleInterval) (done bool)) {
	if ba, ok := a.(*BlockedAnnotation); ok {
		if ba.refName != blk.refName {
			return
		}
		ba.blocks.DoOverlapping(blk.start, blk.end, func(_, _ int, b SingleInterval) bool {
			if blockOverlaps(b, blk) {
				return fn(b)
			}
			return false
		})
		return
	}
	for _, b := range a.Blocks() {
		if b.start >= blk.end {
			return
		}
		if blockOverlaps(b, blk) && fn(b) {
			return
		}
	}
}

// Overlaps reports whether some block of a and some block of b are on the same
// reference, have a consensus strand other than Invalid, and share a base.
// Overlaps(a, b) == Overlaps(b, a).
func Overlaps(a, b Annotation) bool {
	if a.RefName() != b.RefName() || a.NumBlocks() == 0 || b.NumBlocks() == 0 {
		return false
	}
	if ConsensusStrand(a.Strand(), b.Strand()) == Invalid {
		return false
	}
	if max(a.Start(), b.Start()) >= min(a.End(), b.End()) {
		return false
	}
	found := false
	for _, blk := range b.Blocks() {
		doOverlappingBlocks(a, blk, func(SingleInterval) bool {
			found = true
			return true
		})
		if found {
			return true
		}
	}
	return false
}

// Intersect returns the bases covered by both a and b.  Each pair of
// overlapping blocks contributes [max start, min end) with the consensus
// strand of the pair.  The result is empty (Size() == 0) when nothing
// overlaps; strand mismatches are not an error here.
func Intersect(a, b Annotation) *BlockedAnnotation {
	result := NewBlockedAnnotation(a.Name())
	if a.RefName() != b.RefName() {
		return result
	}
	for _, blk := range b.Blocks() {
		doOverlappingBlocks(a, blk, func(other SingleInterval) bool {
			result.AddBlock(SingleInterval{
				refName: blk.refName,
				start:   max(blk.start, other.start),
				end:     min(blk.end, other.end),
				strand:  ConsensusStrand(other.strand, blk.strand),
			})
			return false
		})
	}
	return result
}

// Merge returns the union of the blocks of a and b, named after a.  The two
// annotations must have the same reference and the same strand; otherwise
// Merge fails with an errors.Invalid error.
func Merge(a, b Annotation) (*BlockedAnnotation, error) {
	if a.RefName() != b.RefName() {
		return nil, errors.E(errors.Invalid, "incompatible annotations: reference names differ:",
			a.RefName(), "vs.", b.RefName())
	}
	if a.Strand() != b.Strand() {
		return nil, errors.E(errors.Invalid, "incompatible annotations: strands differ:",
			a.Strand().String(), "vs.", b.Strand().String())
	}
	result := NewBlockedAnnotation(a.Name(), a)
	for _, blk := range b.Blocks() {
		result.AddBlock(blk)
	}
	return result, nil
}

// Contains reports whether every block of b lies within a single block of a.
// A block of b that is covered only by a combination of blocks of a does not
// count.
func Contains(a, b Annotation) bool {
	for _, blk := range b.Blocks() {
		contained := false
		doOverlappingBlocks(a, blk, func(outer SingleInterval) bool {
			contained = outer.start <= blk.start && blk.end <= outer.end
			return contained
		})
		if !contained {
			return false
		}
	}
	return true
}

// Compare returns (negative int, 0, positive int) if (a<b, a=b, a>b)
// respectively.  Annotations are ordered by reference name, start, end,
// strand, number of blocks, and then block by block.
func Compare(a, b Annotation) int {
	return compare(a, b, true)
}

// CompareIgnoringStrand is Compare without the strand comparison.
func CompareIgnoringStrand(a, b Annotation) int {
	return compare(a, b, false)
}

// Equal reports whether Compare(a, b) == 0.  Names are not compared.
func Equal(a, b Annotation) bool {
	return Compare(a, b) == 0
}

func compare(a, b Annotation, useStrand bool) int {
	if c := strings.Compare(a.RefName(), b.RefName()); c != 0 {
		return c
	}
	if c := a.Start() - b.Start(); c != 0 {
		return c
	}
	if c := a.End() - b.End(); c != 0 {
		return c
	}
	if useStrand {
		if c := int(a.Strand()) - int(b.Strand()); c != 0 {
			return c
		}
	}
	if c := a.NumBlocks() - b.NumBlocks(); c != 0 {
		return c
	}
	if a.NumBlocks() > 1 {
		blocks1, blocks2 := a.Blocks(), b.Blocks()
		for i := range blocks1 {
			if c := compare(blocks1[i], blocks2[i], useStrand); c != 0 {
				return c
			}
		}
	}
	return 0
}
