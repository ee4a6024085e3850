// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package annotation

import (
	"github.com/GuttmanLab/guttmanlab-core/interval"
)

// BlockedAnnotation is an annotation made of disjoint blocks held in an
// interval tree.  The first block added fixes the reference name and strand;
// blocks that overlap an existing block are coalesced with it, while blocks
// that merely touch stay separate.
//
// The zero value is not usable; call NewBlockedAnnotation.
type BlockedAnnotation struct {
	name       string
	refName    string
	start, end int
	size       int
	strand     Strand
	started    bool
	blocks     interval.Tree[SingleInterval]
}

// NewBlockedAnnotation creates an annotation from the blocks of the given
// annotations.  Blocks whose reference or strand disagree with the first
// block are dropped.
func NewBlockedAnnotation(name string, from ...Annotation) *BlockedAnnotation {
	b := &BlockedAnnotation{name: name, strand: Unknown}
	for _, a := range from {
		for _, blk := range a.Blocks() {
			b.AddBlock(blk)
		}
	}
	return b
}

// AddBlock adds blk, coalescing it with any blocks it overlaps.  It returns
// false, leaving b unchanged, if blk is empty, starts before 0, lies on
// another reference, or has a strand with no consensus with b's.  The strand
// of the first block is kept.
func (b *BlockedAnnotation) AddBlock(blk SingleInterval) bool {
	if blk.end <= blk.start || blk.start < 0 {
		return false
	}
	if !b.started {
		b.refName, b.strand = blk.refName, blk.strand
		b.start, b.end = blk.start, blk.end
		b.started = true
	} else {
		if blk.refName != b.refName || ConsensusStrand(b.strand, blk.strand) == Invalid {
			return false
		}
		b.start = min(b.start, blk.start)
		b.end = max(b.end, blk.end)
	}
	start, end := blk.start, blk.end
	for _, old := range b.blocks.Overlapping(blk.start, blk.end) {
		b.blocks.Remove(old.start, old.end)
		b.size -= old.Size()
		start = min(start, old.start)
		end = max(end, old.end)
	}
	if err := b.blocks.Put(start, end, NewSingleInterval(b.refName, start, end, b.strand)); err != nil {
		panic(err)
	}
	b.size += end - start
	return true
}

// AddBlocks adds every block of a.  It returns true only if all of them were
// accepted.
func (b *BlockedAnnotation) AddBlocks(a Annotation) bool {
	ok := true
	for _, blk := range a.Blocks() {
		if !b.AddBlock(blk) {
			ok = false
		}
	}
	return ok
}

// Copy returns a deep copy of b that shares no state with it.
func (b *BlockedAnnotation) Copy() *BlockedAnnotation {
	c := &BlockedAnnotation{
		name:    b.name,
		refName: b.refName,
		start:   b.start,
		end:     b.end,
		size:    b.size,
		strand:  b.strand,
		started: b.started,
	}
	b.blocks.Do(func(start, end int, blk SingleInterval) bool {
		if err := c.blocks.Put(start, end, blk); err != nil {
			panic(err)
		}
		return false
	})
	return c
}

// WithName returns a copy of b with the given name.
func (b *BlockedAnnotation) WithName(name string) *BlockedAnnotation {
	c := b.Copy()
	c.name = name
	return c
}

// Name implements Annotation.
func (b *BlockedAnnotation) Name() string { return b.name }

// RefName implements Annotation.
func (b *BlockedAnnotation) RefName() string { return b.refName }

// Start implements Annotation.
func (b *BlockedAnnotation) Start() int { return b.start }

// End implements Annotation.
func (b *BlockedAnnotation) End() int { return b.end }

// Strand implements Annotation.  An annotation without blocks is Unknown.
func (b *BlockedAnnotation) Strand() Strand { return b.strand }

// Size implements Annotation.
func (b *BlockedAnnotation) Size() int { return b.size }

// NumBlocks implements Annotation.
func (b *BlockedAnnotation) NumBlocks() int { return b.blocks.Len() }

// IsEmpty reports whether b has no blocks.
func (b *BlockedAnnotation) IsEmpty() bool { return b.blocks.Len() == 0 }

// Blocks implements Annotation.
func (b *BlockedAnnotation) Blocks() []SingleInterval {
	if b.blocks.Len() == 0 {
		return nil
	}
	return b.blocks.Values()
}

// String returns the BED12 representation of b.
func (b *BlockedAnnotation) String() string { return BED(b) }
