package annotation

import (
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocked(strand Strand, ref string, coords ...int) *BlockedAnnotation {
	b := NewBlockedAnnotation("")
	for i := 0; i+1 < len(coords); i += 2 {
		if !b.AddBlock(NewSingleInterval(ref, coords[i], coords[i+1], strand)) {
			panic("bad block")
		}
	}
	return b
}

func blockCoords(a Annotation) []int {
	var c []int
	for _, blk := range a.Blocks() {
		c = append(c, blk.Start(), blk.End())
	}
	return c
}

func TestConsensusStrand(t *testing.T) {
	all := []Strand{Positive, Negative, Both, Unknown, Invalid}
	for _, a := range all {
		for _, b := range all {
			expect.EQ(t, ConsensusStrand(a, b), ConsensusStrand(b, a), "%v %v", a, b)
		}
		expect.EQ(t, ConsensusStrand(a, a), a)
		expect.EQ(t, ConsensusStrand(a, Unknown), a)
	}
	expect.EQ(t, ConsensusStrand(Positive, Negative), Invalid)
	expect.EQ(t, ConsensusStrand(Both, Negative), Negative)
	expect.EQ(t, ConsensusStrand(Both, Invalid), Invalid)
	expect.EQ(t, ConsensusStrand(Positive, Invalid), Invalid)
	for _, s := range all {
		expect.EQ(t, ParseStrand(s.String()), s)
	}
	expect.EQ(t, Positive.Reverse(), Negative)
	expect.EQ(t, Both.Reverse(), Both)
}

func TestSingleInterval(t *testing.T) {
	s := NewSingleInterval("chr1", 200, 100, Positive)
	expect.EQ(t, s.Start(), 100)
	expect.EQ(t, s.End(), 200)
	expect.EQ(t, s.Size(), 100)
	expect.EQ(t, s.NumBlocks(), 1)

	expect.EQ(t, blockCoords(s.Trim(10, 20)), []int{110, 120})
	expect.EQ(t, blockCoords(s.WithStrand(Negative).Trim(10, 20)), []int{180, 190})
	expect.EQ(t, blockCoords(s.WithStrand(Both).Trim(10, 20)), []int{110, 120})

	expect.EQ(t, blockCoords(NewSingleInterval("chr1", 1234, 1300, Positive).Bin(100)), []int{1200, 1300})

	m, ok := s.Merge(NewSingleInterval("chr1", 150, 250, Unknown))
	assert.True(t, ok)
	expect.EQ(t, blockCoords(m), []int{100, 250})
	expect.EQ(t, m.Strand(), Positive)
	_, ok = s.Merge(NewSingleInterval("chr1", 200, 250, Positive))
	assert.False(t, ok)
	_, ok = s.Merge(NewSingleInterval("chr1", 150, 250, Negative))
	assert.False(t, ok)
}

func TestAddBlockCoalesces(t *testing.T) {
	b := blocked(Positive, "chr1", 10, 20, 15, 25)
	expect.EQ(t, blockCoords(b), []int{10, 25})
	expect.EQ(t, b.Size(), 15)

	// Touching blocks stay separate.
	b = blocked(Positive, "chr1", 10, 20, 20, 30)
	expect.EQ(t, blockCoords(b), []int{10, 20, 20, 30})
	expect.EQ(t, b.Size(), 20)

	// A block that bridges several existing ones replaces all of them.
	b = blocked(Positive, "chr1", 0, 5, 10, 15, 20, 25, 40, 50)
	assert.True(t, b.AddBlock(NewSingleInterval("chr1", 3, 22, Positive)))
	expect.EQ(t, blockCoords(b), []int{0, 25, 40, 50})
	expect.EQ(t, b.Size(), 35)
	expect.EQ(t, b.Start(), 0)
	expect.EQ(t, b.End(), 50)
}

func TestAddBlockRejects(t *testing.T) {
	b := blocked(Positive, "chr1", 10, 20)
	assert.False(t, b.AddBlock(NewSingleInterval("chr2", 30, 40, Positive)))
	assert.False(t, b.AddBlock(NewSingleInterval("chr1", 30, 40, Negative)))
	assert.False(t, b.AddBlock(NewSingleInterval("chr1", 30, 30, Positive)))
	expect.EQ(t, blockCoords(b), []int{10, 20})
	expect.EQ(t, b.Size(), 10)
	expect.EQ(t, b.End(), 20)

	// A compatible strand is accepted and takes the annotation's strand.
	assert.True(t, b.AddBlock(NewSingleInterval("chr1", 30, 40, Unknown)))
	expect.EQ(t, blockCoords(b), []int{10, 20, 30, 40})
	expect.EQ(t, b.Strand(), Positive)

	empty := NewBlockedAnnotation("x")
	assert.True(t, empty.IsEmpty())
	expect.EQ(t, empty.Size(), 0)
	expect.EQ(t, empty.Strand(), Unknown)
}

func TestAddBlockIdempotent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 100; iter++ {
		b := NewBlockedAnnotation("")
		for i := 0; i < 10; i++ {
			start := r.Intn(1000)
			b.AddBlock(NewSingleInterval("chr1", start, start+1+r.Intn(100), Negative))
		}
		c := b.Copy()
		for _, blk := range b.Blocks() {
			require.True(t, c.AddBlock(blk))
		}
		require.True(t, Equal(b, c))
		require.Equal(t, b.Size(), c.Size())
		// Blocks are disjoint and sorted, and the bounding box matches.
		blocks := b.Blocks()
		size := 0
		for i, blk := range blocks {
			size += blk.Size()
			if i > 0 {
				require.True(t, blocks[i-1].End() <= blk.Start())
			}
		}
		require.Equal(t, size, b.Size())
		require.Equal(t, blocks[0].Start(), b.Start())
		require.Equal(t, blocks[len(blocks)-1].End(), b.End())
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := blocked(Positive, "chr1", 10, 20)
	c := b.Copy()
	c.AddBlock(NewSingleInterval("chr1", 30, 40, Positive))
	expect.EQ(t, b.NumBlocks(), 1)
	expect.EQ(t, c.NumBlocks(), 2)
}

func TestIntersect(t *testing.T) {
	a := NewSingleInterval("chr1", 100, 200, Positive)
	b := NewSingleInterval("chr1", 150, 250, Positive)
	assert.True(t, Overlaps(a, b))
	i := Intersect(a, b)
	expect.EQ(t, blockCoords(i), []int{150, 200})
	expect.EQ(t, i.Strand(), Positive)

	// Multi-block pairs.
	x := blocked(Positive, "chr1", 0, 10, 20, 30, 40, 50)
	y := blocked(Unknown, "chr1", 5, 25, 45, 60)
	i = Intersect(x, y)
	expect.EQ(t, blockCoords(i), []int{5, 10, 20, 25, 45, 50})
	expect.EQ(t, i.Strand(), Positive)
	expect.EQ(t, blockCoords(Intersect(y, x)), []int{5, 10, 20, 25, 45, 50})

	// No overlap: empty, not an error.
	i = Intersect(a, NewSingleInterval("chr1", 100, 200, Negative))
	assert.True(t, i.IsEmpty())
	i = Intersect(a, NewSingleInterval("chr2", 100, 200, Positive))
	assert.True(t, i.IsEmpty())
}

func TestOverlaps(t *testing.T) {
	a := NewSingleInterval("chr1", 100, 200, Positive)
	tests := []struct {
		b    Annotation
		want bool
	}{
		{NewSingleInterval("chr1", 199, 300, Positive), true},
		{NewSingleInterval("chr1", 200, 300, Positive), false},
		{NewSingleInterval("chr1", 150, 160, Negative), false},
		{NewSingleInterval("chr1", 150, 160, Both), true},
		{NewSingleInterval("chr1", 150, 160, Unknown), true},
		{NewSingleInterval("chr2", 150, 160, Positive), false},
		// Inside the intron of b.
		{blocked(Positive, "chr1", 0, 100, 200, 300), false},
		{blocked(Positive, "chr1", 0, 101, 200, 300), true},
	}
	for _, tt := range tests {
		expect.EQ(t, Overlaps(a, tt.b), tt.want, "%v", tt.b)
		expect.EQ(t, Overlaps(tt.b, a), tt.want, "%v", tt.b)
	}
}

func TestMerge(t *testing.T) {
	a := blocked(Positive, "chr1", 0, 10, 50, 60)
	b := blocked(Positive, "chr1", 5, 20, 60, 70, 100, 110)
	ab, err := Merge(a, b)
	require.NoError(t, err)
	ba, err := Merge(b, a)
	require.NoError(t, err)
	expect.True(t, Equal(ab, ba))
	expect.EQ(t, blockCoords(ab), []int{0, 20, 50, 60, 60, 70, 100, 110})
	expect.True(t, Contains(ab, a))
	expect.True(t, Contains(ab, b))
	for _, blk := range append(a.Blocks(), b.Blocks()...) {
		covered := Intersect(ab, blk)
		expect.EQ(t, covered.Size(), blk.Size())
	}

	_, err = Merge(a, blocked(Negative, "chr1", 0, 10))
	expect.True(t, errors.Is(errors.Invalid, err))
	_, err = Merge(a, blocked(Positive, "chr2", 0, 10))
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestContains(t *testing.T) {
	a := blocked(Positive, "chr1", 0, 10, 20, 30)
	expect.True(t, Contains(a, NewSingleInterval("chr1", 2, 8, Positive)))
	expect.True(t, Contains(a, blocked(Unknown, "chr1", 0, 10, 25, 30)))
	expect.False(t, Contains(a, NewSingleInterval("chr1", 5, 25, Positive)))
	expect.False(t, Contains(a, NewSingleInterval("chr1", 2, 8, Negative)))
	expect.False(t, Contains(a, NewSingleInterval("chr2", 2, 8, Positive)))
	// Covered only by two touching blocks.
	expect.False(t, Contains(blocked(Positive, "chr1", 0, 10, 10, 20), NewSingleInterval("chr1", 5, 15, Positive)))
}

func TestCompare(t *testing.T) {
	a := NewSingleInterval("chr1", 100, 200, Positive)
	expect.True(t, Compare(a, NewSingleInterval("chr2", 0, 10, Positive)) < 0)
	expect.True(t, Compare(a, NewSingleInterval("chr1", 99, 300, Positive)) > 0)
	expect.True(t, Compare(a, NewSingleInterval("chr1", 100, 201, Positive)) < 0)
	expect.True(t, Compare(a, NewSingleInterval("chr1", 100, 200, Negative)) < 0)
	expect.EQ(t, CompareIgnoringStrand(a, NewSingleInterval("chr1", 100, 200, Negative)), 0)
	expect.True(t, Compare(a, blocked(Positive, "chr1", 100, 150, 160, 200)) < 0)
	expect.True(t, Equal(a, blocked(Positive, "chr1", 100, 200)))
	expect.True(t, Equal(a, a.WithName("named")))
	expect.True(t, Compare(blocked(Positive, "chr1", 100, 150, 160, 200), blocked(Positive, "chr1", 100, 140, 160, 200)) > 0)
}

func TestFingerprint(t *testing.T) {
	a := blocked(Positive, "chr1", 0, 10, 20, 30)
	b := blocked(Positive, "chr1", 20, 30, 0, 10)
	expect.EQ(t, Fingerprint(a), Fingerprint(b))
	expect.EQ(t, Fingerprint(a), Fingerprint(a.WithName("x")))
	expect.True(t, Fingerprint(a) != Fingerprint(blocked(Negative, "chr1", 0, 10, 20, 30)))
	expect.True(t, Fingerprint(a) != Fingerprint(blocked(Positive, "chr1", 0, 10, 20, 31)))
}
