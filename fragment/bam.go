package fragment

import (
	"io"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/collection"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/bgzf/index"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// Opts defines options for NewBAMCollection.
type Opts struct {
	// Index is the path of the BAM index.  If "", it defaults to path +
	// ".bai".  A missing index is not an error: region queries then scan the
	// file from the start.
	Index string

	// StrandIsFirstOfPair makes read 1 report the strand of a paired
	// fragment; otherwise read 2 does.
	StrandIsFirstOfPair bool
}

// DefaultOpts is the default setting for Opts.
var DefaultOpts = Opts{StrandIsFirstOfPair: true}

// BAMCollection is a Collection of the mapped reads of a coordinate-sorted
// BAM file.  Both the BAM and the index paths may be S3 URLs.  Each iterator
// opens its own reader and releases it when exhausted or closed.
type BAMCollection struct {
	collection.FilterSet[*Fragment]
	path   string
	opts   Opts
	header *sam.Header
}

// NewBAMCollection opens path and reads its header.
func NewBAMCollection(path string, opts Opts) (*BAMCollection, error) {
	c := &BAMCollection{path: path, opts: opts}
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	r, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(err, "reading BAM header", path)
	}
	defer r.Close() // nolint: errcheck
	c.header = r.Header()
	vlog.VI(1).Infof("%s: %d references", path, len(c.header.Refs()))
	return c, nil
}

var _ collection.Collection[*Fragment] = (*BAMCollection)(nil)

// Header returns the SAM header of the file.
func (c *BAMCollection) Header() *sam.Header { return c.header }

func (c *BAMCollection) indexPath() string {
	if c.opts.Index != "" {
		return c.opts.Index
	}
	return c.path + ".bai"
}

// SortedIterator implements collection.Collection.  Reads come in file order.
func (c *BAMCollection) SortedIterator() collection.Iterator[*Fragment] {
	return collection.Filtered[*Fragment](c.newIterator(nil), c.Filters()...)
}

// Overlapping implements collection.Collection.
func (c *BAMCollection) Overlapping(region annotation.Annotation, fullyContained bool) collection.Iterator[*Fragment] {
	it := c.newIterator(&regionQuery{region: region, fullyContained: fullyContained})
	return collection.Filtered[*Fragment](it, c.Filters()...)
}

type regionQuery struct {
	region         annotation.Annotation
	fullyContained bool
	// ref is the header reference named by region.
	ref *sam.Reference
}

func (q *regionQuery) match(f *Fragment) bool {
	if q.fullyContained {
		return annotation.Contains(q.region, f)
	}
	return annotation.Overlaps(q.region, f)
}

type bamIterator struct {
	path        string
	in          file.File
	reader      *bam.Reader
	firstOfPair bool
	query       *regionQuery
	cur         *Fragment
	// nRead counts the records decoded, mapped or not.
	nRead int
	done  bool
	err   error
}

func (c *BAMCollection) newIterator(q *regionQuery) *bamIterator {
	it := &bamIterator{
		path:        c.path,
		firstOfPair: c.opts.StrandIsFirstOfPair,
		query:       q,
	}
	ctx := vcontext.Background()
	if it.in, it.err = file.Open(ctx, c.path); it.err != nil {
		it.done = true
		return it
	}
	if it.reader, it.err = bam.NewReader(it.in.Reader(ctx), 1); it.err != nil {
		it.close()
		return it
	}
	if q != nil {
		for _, r := range it.reader.Header().Refs() {
			if r.Name() == q.region.RefName() {
				q.ref = r
				break
			}
		}
		if q.ref == nil {
			it.close()
			return it
		}
		if it.err = it.seek(c.indexPath(), q.ref, q.region); it.err != nil {
			it.close()
		}
	}
	return it
}

// seek moves the reader to the first chunk that can hold reads overlapping
// region, when an index is available.
func (it *bamIterator) seek(indexPath string, ref *sam.Reference, region annotation.Annotation) error {
	ctx := vcontext.Background()
	indexIn, err := file.Open(ctx, indexPath)
	if err != nil {
		vlog.VI(1).Infof("%s: no index (%v), scanning from the start", it.path, err)
		return nil
	}
	defer indexIn.Close(ctx) // nolint: errcheck
	idx, err := bam.ReadIndex(indexIn.Reader(ctx))
	if err != nil {
		return errors.E(err, "reading BAM index", indexPath)
	}
	chunks, err := idx.Chunks(ref, region.Start(), region.End())
	if err == index.ErrInvalid || (err == nil && len(chunks) == 0) {
		it.close()
		return nil
	}
	if err != nil {
		return err
	}
	return it.reader.Seek(chunks[0].Begin)
}

func (it *bamIterator) Scan() bool {
	for !it.done {
		rec, err := it.reader.Read()
		if err != nil {
			if err != io.EOF {
				it.err = errors.E(err, "reading", it.path)
			}
			it.close()
			return false
		}
		it.nRead++
		if rec.Flags&sam.Unmapped != 0 || rec.Ref == nil {
			continue
		}
		if q := it.query; q != nil {
			if rec.Ref.ID() < q.ref.ID() {
				continue
			}
			if rec.Ref.ID() > q.ref.ID() || rec.Pos >= q.region.End() {
				// The file is sorted: nothing later can overlap.
				it.close()
				return false
			}
		}
		f, err := New(rec, it.firstOfPair)
		if err != nil {
			continue
		}
		if it.query != nil && !it.query.match(f) {
			continue
		}
		it.cur = f
		return true
	}
	return false
}

func (it *bamIterator) Value() *Fragment { return it.cur }

func (it *bamIterator) Err() error { return it.err }

func (it *bamIterator) Close() error {
	it.close()
	return it.err
}

func (it *bamIterator) close() {
	it.done = true
	if it.reader != nil {
		if err := it.reader.Close(); err != nil && it.err == nil {
			it.err = err
		}
		it.reader = nil
	}
	if it.in != nil {
		if err := it.in.Close(vcontext.Background()); err != nil && it.err == nil {
			it.err = err
		}
		it.in = nil
	}
}
