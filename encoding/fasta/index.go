package fasta

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// indexEntry is one line of a .fai index: "<name>\t<length>\t<byte
// offset>\t<bases per line>\t<bytes per line>".
type indexEntry struct {
	length    int
	offset    int64
	lineBases int
	lineWidth int
}

type indexedFasta struct {
	seqs     map[string]indexEntry
	seqNames []string
	reader   io.ReadSeeker

	mu     sync.Mutex
	bufOff int64
	buf    []byte // file contents starting at bufOff
}

// NewIndexed creates a Fasta that reads bases from r on demand, using the
// .fai index read from index.  See http://www.htslib.org/doc/faidx.html.
func NewIndexed(r io.ReadSeeker, index io.Reader) (Fasta, error) {
	f := &indexedFasta{seqs: make(map[string]indexEntry), reader: r}
	scanner := bufio.NewScanner(index)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 5 {
			return nil, errors.Errorf("invalid index line: %s", scanner.Text())
		}
		var (
			ent  indexEntry
			vals [4]int64
			err  error
		)
		for i := range vals {
			if vals[i], err = strconv.ParseInt(fields[i+1], 10, 64); err != nil {
				return nil, errors.Wrapf(err, "invalid index line: %s", scanner.Text())
			}
		}
		ent.length, ent.offset, ent.lineBases, ent.lineWidth = int(vals[0]), vals[1], int(vals[2]), int(vals[3])
		if ent.lineBases <= 0 || ent.lineWidth < ent.lineBases {
			return nil, errors.Errorf("invalid line geometry in index line: %s", scanner.Text())
		}
		f.seqs[fields[0]] = ent
		f.seqNames = append(f.seqNames, fields[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA index")
	}
	sort.SliceStable(f.seqNames, func(i, j int) bool {
		return f.seqs[f.seqNames[i]].offset < f.seqs[f.seqNames[j]].offset
	})
	return f, nil
}

// Len implements Fasta.Len().
func (f *indexedFasta) Len(seqName string) (int, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return ent.length, nil
}

// SeqNames implements Fasta.SeqNames().
func (f *indexedFasta) SeqNames() []string {
	return f.seqNames
}

// read returns the file bytes [off, off+n).  REQUIRES: f.mu is held.
func (f *indexedFasta) read(off int64, n int) ([]byte, error) {
	limit := off + int64(n)
	if off < f.bufOff || limit > f.bufOff+int64(len(f.buf)) {
		if _, err := f.reader.Seek(off, io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seek to %d", off)
		}
		size := 8192
		if size < n {
			size = n
		}
		if cap(f.buf) < size {
			f.buf = make([]byte, size)
		}
		f.buf = f.buf[:size]
		nRead, err := io.ReadFull(f.reader, f.buf)
		if nRead < n {
			return nil, errors.Errorf("unexpected end of file at offset %d (bad index?)", off+int64(nRead))
		}
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return nil, err
		}
		f.bufOff = off
		f.buf = f.buf[:nRead]
	}
	return f.buf[off-f.bufOff : limit-f.bufOff], nil
}

// Get implements Fasta.Get().
func (f *indexedFasta) Get(seqName string, start, end int) (string, error) {
	ent, ok := f.seqs[seqName]
	if !ok {
		return "", errors.Errorf("sequence not found: %s", seqName)
	}
	if err := checkRange(seqName, start, end, ent.length); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	// Byte offset of start, allowing for the line terminators before it.
	newlineWidth := ent.lineWidth - ent.lineBases
	offset := ent.offset + int64(start+newlineWidth*(start/ent.lineBases))
	firstLineBases := ent.lineBases - start%ent.lineBases
	newlines := 0
	if end-start > firstLineBases {
		newlines = 1 + (end-start-firstLineBases)/ent.lineBases
	}
	data, err := f.read(offset, end-start+newlines*newlineWidth)
	if err != nil {
		return "", err
	}
	result := make([]byte, 0, end-start)
	linePos := start % ent.lineBases
	for _, c := range data {
		if linePos < ent.lineBases {
			result = append(result, c)
		}
		linePos++
		if linePos == ent.lineWidth {
			linePos = 0
		}
	}
	return string(result), nil
}

// GenerateIndex writes the .fai index of the FASTA data read from in.  All
// lines of a sequence except the last must have the same length.
func GenerateIndex(out io.Writer, in io.Reader) (err error) {
	var (
		tsvOut      = tsv.NewWriter(out)
		r           = bufio.NewReader(in)
		seqName     string
		seqStartOff int64
		totalBases  int
		lineBases   int
		lineWidth   int
		lastShort   bool
		cumByte     int64
		eof         bool
	)
	setErr := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	flush := func() {
		tsvOut.WriteString(seqName)
		tsvOut.WriteInt64(int64(totalBases))
		tsvOut.WriteInt64(seqStartOff)
		tsvOut.WriteInt64(int64(lineBases))
		tsvOut.WriteInt64(int64(lineWidth))
		setErr(tsvOut.EndLine())
	}
	for !eof && err == nil {
		fullLine, e := r.ReadBytes('\n')
		if e == io.EOF {
			eof = true
		} else if e != nil {
			setErr(e)
		}
		cumByte += int64(len(fullLine))
		line := bytes.TrimRight(fullLine, "\r\n")
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if seqName != "" {
				flush()
			}
			seqName = strings.Split(string(line[1:]), " ")[0]
			seqStartOff = cumByte
			lineWidth, lineBases, totalBases, lastShort = 0, 0, 0, false
			continue
		}
		if seqName == "" {
			setErr(errors.Errorf("malformed FASTA file: bases before the first header"))
			break
		}
		if lineWidth == 0 {
			lineWidth = len(fullLine)
			lineBases = len(line)
		} else if lastShort || len(line) > lineBases {
			setErr(errors.Errorf("sequence %s: uneven line lengths", seqName))
			break
		}
		lastShort = len(line) < lineBases
		totalBases += len(line)
	}
	if err != nil {
		return err
	}
	if seqName == "" {
		return errors.Errorf("empty FASTA file")
	}
	flush()
	setErr(tsvOut.Flush())
	return err
}
