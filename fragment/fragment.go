// Package fragment turns aligned reads into annotations.
package fragment

import (
	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Fragment is the annotation of a mapped read.  Its bounds come straight
// from the record; the blocks are decoded from the CIGAR on first use.
type Fragment struct {
	rec    *sam.Record
	strand annotation.Strand
	blocks *annotation.BlockedAnnotation
}

// New creates a fragment for r, which must be mapped.
//
// The strand is that of the read.  For paired reads, strandIsFirstOfPair
// selects which mate reports the strand of the fragment: the other mate's
// strand is reversed.  Unpaired reads are never reversed.
func New(r *sam.Record, strandIsFirstOfPair bool) (*Fragment, error) {
	if r.Flags&sam.Unmapped != 0 || r.Ref == nil || r.Pos < 0 {
		return nil, errors.E(errors.Invalid, "fragment: unmapped read", r.Name)
	}
	strand := annotation.Positive
	if r.Flags&sam.Reverse != 0 {
		strand = annotation.Negative
	}
	if r.Flags&sam.Paired != 0 {
		isRead1 := r.Flags&sam.Read1 != 0
		if isRead1 != strandIsFirstOfPair {
			strand = strand.Reverse()
		}
	}
	return &Fragment{rec: r, strand: strand}, nil
}

// Record returns the underlying read.
func (f *Fragment) Record() *sam.Record { return f.rec }

// Name implements annotation.Annotation.
func (f *Fragment) Name() string { return f.rec.Name }

// RefName implements annotation.Annotation.
func (f *Fragment) RefName() string { return f.rec.Ref.Name() }

// Start implements annotation.Annotation.
func (f *Fragment) Start() int { return f.rec.Pos }

// End implements annotation.Annotation.
func (f *Fragment) End() int { return f.rec.End() }

// Strand implements annotation.Annotation.
func (f *Fragment) Strand() annotation.Strand { return f.strand }

// Size implements annotation.Annotation.
func (f *Fragment) Size() int { return f.decoded().Size() }

// NumBlocks implements annotation.Annotation.
func (f *Fragment) NumBlocks() int { return f.decoded().NumBlocks() }

// Blocks implements annotation.Annotation.
func (f *Fragment) Blocks() []annotation.SingleInterval { return f.decoded().Blocks() }

// CigarString returns the CIGAR of the read.
func (f *Fragment) CigarString() string { return f.rec.Cigar.String() }

func (f *Fragment) decoded() *annotation.BlockedAnnotation {
	if f.blocks == nil {
		f.blocks = Blocks(f.rec.Cigar, f.RefName(), f.rec.Pos, f.strand, f.rec.Name)
	}
	return f.blocks
}

// String returns the BED12 representation of f.
func (f *Fragment) String() string { return annotation.BED(f) }
