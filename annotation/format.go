package annotation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
)

// RGB is a BED itemRgb color.  Each component must be in [0, 255].
type RGB struct {
	R, G, B int
}

func (c RGB) valid() bool {
	return c.R >= 0 && c.R <= 255 && c.G >= 0 && c.G <= 255 && c.B >= 0 && c.B <= 255
}

// UCSC returns the "ref:start-end" locus of a, with a 0-based start.
func UCSC(a Annotation) string {
	return a.RefName() + ":" + strconv.Itoa(a.Start()) + "-" + strconv.Itoa(a.End())
}

// BED returns the BED12 line for a with a score of 0 and a black color.
func BED(a Annotation) string {
	line, _ := FormatBED(a, 0, RGB{})
	return line
}

// FormatBED returns the twelve tab-separated BED columns for a, without a
// trailing newline.  The thick region is empty (thickStart = thickEnd = end).
func FormatBED(a Annotation, score float64, color RGB) (string, error) {
	cols, err := BEDColumns(a, score, a.End(), a.End(), color)
	if err != nil {
		return "", err
	}
	return strings.Join(cols, "\t"), nil
}

// BEDColumns returns the twelve BED columns for a.  An unnamed annotation is
// named with its UCSC locus, and block starts are relative to the annotation
// start.  Both block lists carry a trailing comma.
func BEDColumns(a Annotation, score float64, thickStart, thickEnd int, color RGB) ([]string, error) {
	if !color.valid() {
		return nil, errors.E(errors.Invalid, fmt.Sprintf("RGB values must be in [0, 255]: %d,%d,%d", color.R, color.G, color.B))
	}
	name := a.Name()
	if name == "" {
		name = UCSC(a)
	}
	blocks := a.Blocks()
	var sizes, starts []byte
	for _, blk := range blocks {
		sizes = append(strconv.AppendInt(sizes, int64(blk.Size()), 10), ',')
		starts = append(strconv.AppendInt(starts, int64(blk.start-a.Start()), 10), ',')
	}
	return []string{
		a.RefName(),
		strconv.Itoa(a.Start()),
		strconv.Itoa(a.End()),
		name,
		strconv.FormatFloat(score, 'f', -1, 64),
		a.Strand().String(),
		strconv.Itoa(thickStart),
		strconv.Itoa(thickEnd),
		strconv.Itoa(color.R) + "," + strconv.Itoa(color.G) + "," + strconv.Itoa(color.B),
		strconv.Itoa(len(blocks)),
		string(sizes),
		string(starts),
	}, nil
}

// BEDGraph returns the "ref start end score" line for a, tab separated.
func BEDGraph(a Annotation, score float64) string {
	return a.RefName() + "\t" + strconv.Itoa(a.Start()) + "\t" + strconv.Itoa(a.End()) +
		"\t" + strconv.FormatFloat(score, 'f', -1, 64)
}

// CigarString describes the block structure of a as a CIGAR string over the
// reference: blocks are matches (M) and gaps between them are skipped
// regions (N).  Touching blocks produce adjacent matches with no N between.
func CigarString(a Annotation) string {
	var sb strings.Builder
	prevEnd := -1
	for _, blk := range a.Blocks() {
		if prevEnd >= 0 && blk.start > prevEnd {
			fmt.Fprintf(&sb, "%dN", blk.start-prevEnd)
		}
		fmt.Fprintf(&sb, "%dM", blk.Size())
		prevEnd = blk.end
	}
	return sb.String()
}
