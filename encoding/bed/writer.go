package bed

import (
	"io"
	"strconv"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/tsv"
)

// Writer writes annotations as BED12 or bedGraph lines.
type Writer struct {
	tsvw *tsv.Writer
	buf  []byte
}

// NewWriter creates a writer over w.  Flush must be called when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{tsvw: tsv.NewWriter(w)}
}

func (w *Writer) writeInt(v int) {
	w.tsvw.WriteUint32(uint32(v))
}

func (w *Writer) writeFloat(v float64) {
	w.buf = strconv.AppendFloat(w.buf[:0], v, 'f', -1, 64)
	w.tsvw.WriteString(string(w.buf))
}

// Write emits a as a BED12 line.  A *Record keeps its score, thick bounds,
// and color; other annotations get a score of 0 and no color.  An unnamed
// annotation is named after its locus.
func (w *Writer) Write(a annotation.Annotation) error {
	if a.NumBlocks() == 0 {
		return errors.E(errors.Invalid, "bed: cannot write an empty annotation")
	}
	var (
		score float64
		color annotation.RGB
	)
	thickStart, thickEnd := a.End(), a.End()
	if rec, ok := a.(*Record); ok {
		score, color = rec.Score, rec.Color
		thickStart, thickEnd = rec.ThickStart, rec.ThickEnd
	}
	cols, err := annotation.BEDColumns(a, score, thickStart, thickEnd, color)
	if err != nil {
		return errors.E(err, "bed: writing", a.Name())
	}
	for _, col := range cols {
		w.tsvw.WriteString(col)
	}
	return w.tsvw.EndLine()
}

// WriteBEDGraph emits the bounding box of a with a score, as
// "ref start end score".
func (w *Writer) WriteBEDGraph(a annotation.Annotation, score float64) error {
	w.tsvw.WriteString(a.RefName())
	w.writeInt(a.Start())
	w.writeInt(a.End())
	w.writeFloat(score)
	return w.tsvw.EndLine()
}

// Flush writes any buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.tsvw.Flush()
}
