package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/bio/biosimd"
	"github.com/pkg/errors"
)

// ReverseComplement returns the reverse complement of an ASCII sequence.
// Lowercase bases map to uppercase complements and anything other than
// ACGT maps to 'N'.
func ReverseComplement(seq string) string {
	out := []byte(seq)
	biosimd.ReverseComp8Inplace(out)
	return gunsafe.BytesToString(out)
}

// Sequence returns the bases under a: its blocks are concatenated in
// reference order, and the result is reverse-complemented when a is on the
// negative strand.
func Sequence(fa Fasta, a annotation.Annotation) (string, error) {
	var sb strings.Builder
	sb.Grow(a.Size())
	for _, blk := range a.Blocks() {
		s, err := fa.Get(a.RefName(), blk.Start(), blk.End())
		if err != nil {
			return "", errors.Wrapf(err, "sequence of %s", annotation.UCSC(a))
		}
		sb.WriteString(s)
	}
	if a.Strand() == annotation.Negative {
		return ReverseComplement(sb.String()), nil
	}
	return sb.String(), nil
}

// Write writes one FASTA record, wrapping seq every lineWidth bases.  A
// lineWidth <= 0 writes the sequence on a single line.
func Write(w io.Writer, name, seq string, lineWidth int) error {
	// Write errors are sticky in bufio.Writer; Flush reports them.
	bw := bufio.NewWriter(w)
	bw.WriteByte('>')
	bw.WriteString(name)
	bw.WriteByte('\n')
	if lineWidth <= 0 {
		lineWidth = len(seq)
	}
	for len(seq) > 0 {
		n := lineWidth
		if n > len(seq) {
			n = len(seq)
		}
		bw.WriteString(seq[:n])
		bw.WriteByte('\n')
		seq = seq[n:]
	}
	return errors.Wrap(bw.Flush(), "writing FASTA")
}
