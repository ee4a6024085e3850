// Package fasta reads reference sequences and extracts the bases under
// annotations.  FASTA files consist of named sequences, each possibly split
// over several lines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// A sequence name is the text after '>' up to the first space, so
// '>chr1 A viral sequence' names 'chr1'.
package fasta

import (
	"bufio"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024 * 300 // 300 MB

// Fasta is a set of named sequences.
type Fasta interface {
	// Get returns the bases of seqName in the 0-based half-open interval
	// [start, end).  Get is thread-safe.
	Get(seqName string, start, end int) (string, error)

	// Len returns the length of seqName.
	Len(seqName string) (int, error)

	// SeqNames returns the sequence names in file order.
	SeqNames() []string
}

type fasta struct {
	seqs     map[string]string
	seqNames []string
}

// New reads all the sequences of r into memory.
func New(r io.Reader) (Fasta, error) {
	f := &fasta{seqs: make(map[string]string)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	var (
		seqName string
		inSeq   bool
		seq     strings.Builder
	)
	store := func() {
		if inSeq {
			f.seqs[seqName] = seq.String()
			f.seqNames = append(f.seqNames, seqName)
		}
		seq.Reset()
	}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			store()
			seqName, inSeq = strings.Split(line[1:], " ")[0], true
			if _, ok := f.seqs[seqName]; ok {
				return nil, errors.Errorf("duplicate sequence name %s", seqName)
			}
			continue
		}
		if !inSeq {
			return nil, errors.Errorf("malformed FASTA file: bases before the first header")
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	store()
	return f, nil
}

// Open reads the FASTA file at path, which may be local or on S3, into
// memory.  Files ending in .gz are decompressed.
func Open(path string) (Fasta, error) {
	ctx := vcontext.Background()
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx) // nolint: errcheck
	r := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: gzip header", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	fa, err := New(r)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return fa, nil
}

func checkRange(seqName string, start, end, length int) error {
	if end <= start {
		return errors.Errorf("start must be less than end")
	}
	if start < 0 || end > length {
		return errors.Errorf("invalid query range %d - %d for sequence %s with length %d",
			start, end, seqName, length)
	}
	return nil
}

// Get implements Fasta.Get().
func (f *fasta) Get(seqName string, start, end int) (string, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, len(s)); err != nil {
		return "", err
	}
	return s[start:end], nil
}

// Len implements Fasta.Len().
func (f *fasta) Len(seqName string) (int, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return len(s), nil
}

// SeqNames implements Fasta.SeqNames().
func (f *fasta) SeqNames() []string {
	return f.seqNames
}
