package annotation

import (
	"encoding/binary"

	farm "github.com/dgryski/go-farm"
)

// Fingerprint returns a 64-bit hash of the reference, strand, and block
// coordinates of a.  Equal annotations have equal fingerprints; names do not
// contribute.
func Fingerprint(a Annotation) uint64 {
	blocks := a.Blocks()
	buf := make([]byte, 0, len(a.RefName())+1+16*len(blocks))
	buf = append(buf, a.RefName()...)
	buf = append(buf, byte(a.Strand()))
	for _, blk := range blocks {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(blk.start))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(blk.end))
	}
	return farm.Fingerprint64(buf)
}
