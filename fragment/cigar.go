package fragment

import (
	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
)

// Blocks returns the reference blocks covered by an alignment that starts at
// the 0-based position start.  Aligned bases (M, =, X) form blocks; skipped
// regions (N) and deletions (D) advance the reference position and end the
// current block.  Insertions, clips, and padding (I, S, H, P) do not consume
// the reference and leave the current block open.
func Blocks(cigar sam.Cigar, refName string, start int, strand annotation.Strand, name string) *annotation.BlockedAnnotation {
	b := annotation.NewBlockedAnnotation(name)
	pos, blockStart := start, start
	flush := func() {
		if pos > blockStart {
			b.AddBlock(annotation.NewSingleInterval(refName, blockStart, pos, strand))
		}
	}
	for _, co := range cigar {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			pos += co.Len()
		case sam.CigarDeletion, sam.CigarSkipped:
			flush()
			pos += co.Len()
			blockStart = pos
		}
	}
	flush()
	return b
}

// ParseBlocks is Blocks for a CIGAR string such as "10M200N15M".
func ParseBlocks(cigar, refName string, start int, strand annotation.Strand, name string) (*annotation.BlockedAnnotation, error) {
	c, err := sam.ParseCigar([]byte(cigar))
	if err != nil {
		return nil, errors.E(errors.Invalid, err, "cigar", cigar)
	}
	return Blocks(c, refName, start, strand, name), nil
}
