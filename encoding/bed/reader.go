// Package bed reads and writes BED and bedGraph files.
package bed

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/GuttmanLab/guttmanlab-core/annotation"
	"github.com/GuttmanLab/guttmanlab-core/interval"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
)

// Record is one BED line.  The annotation carries the coordinates, strand,
// name, and blocks; the other columns are kept alongside.
type Record struct {
	*annotation.BlockedAnnotation
	Score      float64
	ThickStart int
	ThickEnd   int
	Color      annotation.RGB
	// NumFields is the number of columns on the line, 3 to 12.
	NumFields int
}

// String returns the BED12 line of r.
func (r *Record) String() string {
	line, err := annotation.FormatBED(r, r.Score, r.Color)
	if err != nil {
		return annotation.BED(r)
	}
	return line
}

// Opts controls parsing.
type Opts struct {
	// OneBasedInput marks start coordinates as 1-based, as in some
	// non-standard BED files.
	OneBasedInput bool
}

// Reader parses BED3 to BED12 lines.  Blank lines, comments, and track or
// browser lines are skipped; zero-length records are dropped.  Reader
// implements collection.Iterator[*Record].
type Reader struct {
	scanner *bufio.Scanner
	closer  func() error
	opts    Opts
	lineIdx int
	tokens  [12][]byte
	cur     *Record
	err     error
	done    bool
	nEmpty  int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader, opts Opts) *Reader {
	return &Reader{scanner: bufio.NewScanner(r), opts: opts}
}

// Open opens a BED file, which may be local or on S3.  Files ending in .gz
// are decompressed.
func Open(path string, opts Opts) (*Reader, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	reader := io.Reader(in.Reader(ctx))
	var gz *gzip.Reader
	if fileio.DetermineType(path) == fileio.Gzip {
		if gz, err = gzip.NewReader(reader); err != nil {
			_ = in.Close(ctx)
			return nil, errors.E(err, "opening", path)
		}
		reader = gz
	}
	r := NewReader(reader, opts)
	r.closer = func() error {
		if gz != nil {
			if err := gz.Close(); err != nil {
				_ = in.Close(ctx)
				return err
			}
		}
		return in.Close(ctx)
	}
	return r, nil
}

// getTokens identifies up to the first len(tokens) whitespace-separated
// tokens of curLine, and returns how many it found.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

func isHeader(token []byte) bool {
	return token[0] == '#' || bytes.Equal(token, []byte("track")) || bytes.Equal(token, []byte("browser"))
}

// Scan reads the next record.
func (r *Reader) Scan() bool {
	if r.done {
		return false
	}
	for r.scanner.Scan() {
		r.lineIdx++
		curLine := r.scanner.Bytes()
		nToken := getTokens(r.tokens[:], curLine)
		if nToken == 0 || isHeader(r.tokens[0]) {
			continue
		}
		rec, err := r.parse(r.tokens[:nToken])
		if err != nil {
			r.err = errors.E(errors.Invalid, fmt.Sprintf("bed: line %d", r.lineIdx), err)
			r.done = true
			return false
		}
		if rec == nil {
			r.nEmpty++
			continue
		}
		r.cur = rec
		return true
	}
	r.err = r.scanner.Err()
	r.done = true
	if r.nEmpty > 0 {
		log.Printf("bed: dropped %d zero-length record(s)", r.nEmpty)
	}
	return false
}

func atoi(b []byte) (int, error) {
	return strconv.Atoi(gunsafe.BytesToString(b))
}

// parse converts the tokens of one line.  It returns nil for a zero-length
// record.
func (r *Reader) parse(tokens [][]byte) (*Record, error) {
	n := len(tokens)
	if n < 3 || n == 10 || n == 11 {
		return nil, fmt.Errorf("unexpected number of columns: %d", n)
	}
	refName := string(tokens[0])
	start, err := atoi(tokens[1])
	if err != nil {
		return nil, err
	}
	if r.opts.OneBasedInput {
		start--
	}
	end, err := atoi(tokens[2])
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start {
		return nil, fmt.Errorf("invalid coordinate pair [%d, %d)", start, end)
	}
	if end == start {
		if log.At(log.Debug) {
			log.Debug.Printf("bed: line %d: zero-length record %s:%d", r.lineIdx, refName, start)
		}
		return nil, nil
	}
	rec := &Record{NumFields: n, ThickStart: end, ThickEnd: end}
	var name string
	if n > 3 && !isDot(tokens[3]) {
		name = string(tokens[3])
	}
	if n > 4 && !isDot(tokens[4]) {
		if rec.Score, err = strconv.ParseFloat(gunsafe.BytesToString(tokens[4]), 64); err != nil {
			return nil, err
		}
	}
	strand := annotation.Unknown
	if n > 5 {
		strand = annotation.ParseStrand(gunsafe.BytesToString(tokens[5]))
	}
	if n > 7 {
		if rec.ThickStart, err = atoi(tokens[6]); err != nil {
			return nil, err
		}
		if rec.ThickEnd, err = atoi(tokens[7]); err != nil {
			return nil, err
		}
	}
	if n > 8 {
		if rec.Color, err = parseRGB(tokens[8]); err != nil {
			return nil, err
		}
	}
	rec.BlockedAnnotation = annotation.NewBlockedAnnotation(name)
	if n < 12 {
		rec.AddBlock(annotation.NewSingleInterval(refName, start, end, strand))
		return rec, nil
	}
	count, err := atoi(tokens[9])
	if err != nil {
		return nil, err
	}
	sizes, err := parseList(tokens[10])
	if err != nil {
		return nil, err
	}
	starts, err := parseList(tokens[11])
	if err != nil {
		return nil, err
	}
	if len(sizes) != count || len(starts) != count {
		return nil, fmt.Errorf("blockCount %d does not match %d sizes and %d starts", count, len(sizes), len(starts))
	}
	for i := range sizes {
		blockStart := start + starts[i]
		blockEnd := blockStart + sizes[i]
		if starts[i] < 0 || sizes[i] < 0 || blockEnd > end {
			return nil, fmt.Errorf("block %d [%d, %d) outside [%d, %d)", i, blockStart, blockEnd, start, end)
		}
		rec.AddBlock(annotation.NewSingleInterval(refName, blockStart, blockEnd, strand))
	}
	if rec.IsEmpty() {
		return nil, nil
	}
	return rec, nil
}

func isDot(b []byte) bool { return len(b) == 1 && b[0] == '.' }

// parseList parses a comma-separated list of integers.  A trailing comma is
// allowed.
func parseList(b []byte) ([]int, error) {
	b = bytes.TrimSuffix(b, []byte(","))
	if len(b) == 0 {
		return nil, nil
	}
	fields := bytes.Split(b, []byte(","))
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := atoi(f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func parseRGB(b []byte) (annotation.RGB, error) {
	if isDot(b) || (len(b) == 1 && b[0] == '0') {
		return annotation.RGB{}, nil
	}
	values, err := parseList(b)
	if err != nil {
		return annotation.RGB{}, err
	}
	if len(values) != 3 {
		return annotation.RGB{}, fmt.Errorf("invalid itemRgb %q", b)
	}
	c := annotation.RGB{R: values[0], G: values[1], B: values[2]}
	if c.R < 0 || c.R > 255 || c.G < 0 || c.G > 255 || c.B < 0 || c.B > 255 {
		return annotation.RGB{}, fmt.Errorf("invalid itemRgb %q", b)
	}
	return c, nil
}

// Value returns the current record.
func (r *Reader) Value() *Record { return r.cur }

// Err returns the first parse or I/O error.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file, if the reader opened it, and returns
// Err().
func (r *Reader) Close() error {
	r.done = true
	if r.closer != nil {
		if err := r.closer(); err != nil && r.err == nil {
			r.err = err
		}
		r.closer = nil
	}
	return r.err
}

// ReadAll reads every record of path.
func ReadAll(path string, opts Opts) ([]*Record, error) {
	r, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	var records []*Record
	for r.Scan() {
		records = append(records, r.Value())
	}
	return records, r.Close()
}

// NewUnionFromPath loads the bounding boxes of the records of a BED file,
// sorted by reference and start, into an interval.Union.
func NewUnionFromPath(path string, opts Opts) (*interval.Union, error) {
	records, err := ReadAll(path, opts)
	if err != nil {
		return nil, err
	}
	entries := make([]interval.Entry, len(records))
	for i, rec := range records {
		entries[i] = interval.Entry{RefName: rec.RefName(), Start0: rec.Start(), End: rec.End()}
	}
	u, err := interval.NewUnion(entries)
	if err != nil {
		return nil, errors.E(err, path)
	}
	log.Printf("%s: BED loaded, %d base(s) covered", path, u.TotalBases())
	return u, nil
}
