// Package windows counts the reads or features of a coordinate-sorted file
// in sliding windows, or converts them to feature space.
package windows

import (
	"context"
	"io"
	"strings"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/collection"
	"github.com/GuttmanLab/guttmanlab-core/encoding/bed"
	"github.com/GuttmanLab/guttmanlab-core/fragment"
	"github.com/GuttmanLab/guttmanlab-core/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bgzf"
)

// Opts holds the options for Run.
type Opts struct {
	// WindowSize is the window length in bases.
	WindowSize int
	// MinCount suppresses windows holding fewer annotations.
	MinCount int
	// Region restricts the input, formatted as <contig ID>:<1-based first
	// pos>-<last pos>, <contig ID>:<1-based pos>, or <contig ID>.
	Region string
	// TargetsPath is a BED file; if set, only annotations intersecting one of
	// its intervals are counted.
	TargetsPath string
	// FeaturesPath is a BED file of features.  If set, Run converts each
	// input annotation into the coordinates of every feature it overlaps
	// and writes those as BED instead of counting windows.
	FeaturesPath string
	// BAMIndexPath defaults to the BAM path + ".bai".
	BAMIndexPath string
	// StrandIsFirstOfPair selects the mate that reports a fragment's strand.
	StrandIsFirstOfPair bool
	// OneBasedInput marks BED starts as 1-based.
	OneBasedInput bool
}

// DefaultOpts is the default setting for Opts.
var DefaultOpts = Opts{
	WindowSize:          100,
	MinCount:            1,
	StrandIsFirstOfPair: true,
}

func (o *Opts) validate() error {
	if o.WindowSize <= 0 {
		return errors.E(errors.Invalid, "window size must be positive")
	}
	if o.MinCount < 0 {
		return errors.E(errors.Invalid, "min count must be nonnegative")
	}
	return nil
}

// Run reads the sorted BAM or BED file at inPath and writes to outPath.
// Both paths may be local or on S3.  Without FeaturesPath the output is a
// bedGraph of window counts; with it, the output is BED12 in feature space.
// An outPath ending in .gz is written bgzip-compressed.
func Run(ctx context.Context, inPath, outPath string, opts *Opts) (err error) {
	if err = opts.validate(); err != nil {
		return err
	}
	var filters []collection.Filter[annotation.Annotation]
	var region annotation.Annotation
	if opts.Region != "" {
		entry, err := interval.ParseRegionString(opts.Region)
		if err != nil {
			return errors.E(errors.Invalid, err, "region", opts.Region)
		}
		region = annotation.NewSingleInterval(entry.RefName, entry.Start0, entry.End, annotation.Unknown)
	}
	if opts.TargetsPath != "" {
		targets, err := bed.NewUnionFromPath(opts.TargetsPath, bed.Opts{OneBasedInput: opts.OneBasedInput})
		if err != nil {
			return err
		}
		filters = append(filters, collection.TargetFilter[annotation.Annotation](targets))
	}
	var features *collection.FeatureCollection[*bed.Record]
	if opts.FeaturesPath != "" {
		if features, err = loadFeatures(opts.FeaturesPath, opts); err != nil {
			return err
		}
	}

	out, err := file.Create(ctx, outPath)
	if err != nil {
		return err
	}
	defer file.CloseAndReport(ctx, out, &err)
	var (
		dst        io.Writer = out.Writer(ctx)
		bgzfWriter *bgzf.Writer
	)
	if fileio.DetermineType(outPath) == fileio.Gzip {
		bgzfWriter = bgzf.NewWriter(dst, 1)
		dst = bgzfWriter
	}
	w := bed.NewWriter(dst)

	in, err := openInput(inPath, region, opts)
	if err != nil {
		return err
	}
	in = collection.Filtered(in, filters...)
	var n int
	if features != nil {
		n, err = convert(in, features, w)
	} else {
		n, err = countWindows(in, w, opts)
	}
	if err != nil {
		return err
	}
	log.Printf("%s: wrote %d line(s) to %s", inPath, n, outPath)
	if err = w.Flush(); err != nil {
		return err
	}
	if bgzfWriter != nil {
		return bgzfWriter.Close()
	}
	return nil
}

// openInput opens a BAM (by extension) or BED file as a sorted stream of
// annotations, restricted to region when it is non-nil.
func openInput(path string, region annotation.Annotation, opts *Opts) (collection.Iterator[annotation.Annotation], error) {
	if strings.HasSuffix(path, ".bam") {
		c, err := fragment.NewBAMCollection(path, fragment.Opts{
			Index:               opts.BAMIndexPath,
			StrandIsFirstOfPair: opts.StrandIsFirstOfPair,
		})
		if err != nil {
			return nil, err
		}
		if region != nil {
			return upcast(c.Overlapping(region, false)), nil
		}
		return upcast(c.SortedIterator()), nil
	}
	r, err := bed.Open(path, bed.Opts{OneBasedInput: opts.OneBasedInput})
	if err != nil {
		return nil, err
	}
	it := upcast(collection.CheckSorted[*bed.Record](r))
	if region != nil {
		it = collection.Filtered(it, collection.RegionFilter[annotation.Annotation](region, false))
	}
	return it, nil
}

func loadFeatures(path string, opts *Opts) (*collection.FeatureCollection[*bed.Record], error) {
	r, err := bed.Open(path, bed.Opts{OneBasedInput: opts.OneBasedInput})
	if err != nil {
		return nil, err
	}
	features := collection.NewFeatureCollection[*bed.Record]()
	n, err := features.AddAll(r)
	if err != nil {
		return nil, err
	}
	log.Printf("%s: loaded %d feature(s) on %d reference(s)", path, n, len(features.RefNames()))
	return features, nil
}

func countWindows(in collection.Iterator[annotation.Annotation], w *bed.Writer, opts *Opts) (int, error) {
	it := collection.NewWindowIterator(in, opts.WindowSize)
	var n int
	for it.Scan() {
		win := it.Value()
		if win.Len() < opts.MinCount {
			continue
		}
		if err := w.WriteBEDGraph(win, float64(win.Len())); err != nil {
			_ = it.Close()
			return n, err
		}
		n++
	}
	return n, it.Close()
}

func convert(in collection.Iterator[annotation.Annotation], features *collection.FeatureCollection[*bed.Record], w *bed.Writer) (int, error) {
	it := collection.NewConverterIterator[annotation.Annotation, *bed.Record](in, features)
	var n int
	for it.Scan() {
		if err := w.Write(it.Value()); err != nil {
			_ = it.Close()
			return n, err
		}
		n++
	}
	return n, it.Close()
}

// annotations adapts an iterator over a concrete annotation type.
type annotations[T annotation.Annotation] struct {
	collection.Iterator[T]
}

func (it annotations[T]) Value() annotation.Annotation { return it.Iterator.Value() }

func upcast[T annotation.Annotation](it collection.Iterator[T]) collection.Iterator[annotation.Annotation] {
	return annotations[T]{it}
}
