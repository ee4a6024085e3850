package interval

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T, keys ...[2]int) *Tree[string] {
	tree := &Tree[string]{}
	for _, k := range keys {
		require.NoError(t, tree.Put(k[0], k[1], keyString(k[0], k[1])))
	}
	return tree
}

func keyString(start, end int) string {
	return fmt.Sprintf("[%d,%d)", start, end)
}

func TestTreePutGetRemove(t *testing.T) {
	tree := newTestTree(t, [2]int{10, 20}, [2]int{5, 8}, [2]int{10, 15}, [2]int{30, 40})
	assert.Equal(t, 4, tree.Len())

	v, ok := tree.Get(10, 15)
	assert.True(t, ok)
	assert.Equal(t, "[10,15)", v)
	_, ok = tree.Get(10, 16)
	assert.False(t, ok)

	// Same key replaces the value.
	require.NoError(t, tree.Put(10, 15, "replaced"))
	assert.Equal(t, 4, tree.Len())
	v, _ = tree.Get(10, 15)
	assert.Equal(t, "replaced", v)

	v, ok = tree.Remove(10, 20)
	assert.True(t, ok)
	assert.Equal(t, "[10,20)", v)
	assert.Equal(t, 3, tree.Len())

	_, ok = tree.Remove(10, 20)
	assert.False(t, ok)
	_, ok = tree.Remove(100, 200)
	assert.False(t, ok)
	assert.Equal(t, 3, tree.Len())
}

func TestTreeRejectsBadRanges(t *testing.T) {
	tree := &Tree[int]{}
	assert.Error(t, tree.Put(5, 5, 0))
	assert.Error(t, tree.Put(6, 5, 0))
	assert.Error(t, tree.Put(-1, 5, 0))
	assert.Equal(t, 0, tree.Len())
}

func TestTreeEmpty(t *testing.T) {
	tree := &Tree[int]{}
	assert.False(t, tree.HasOverlappers(0, 100))
	assert.Empty(t, tree.Overlapping(0, 100))
	assert.Empty(t, tree.NodesBefore(50, 50))
	assert.Empty(t, tree.Values())
	_, ok := tree.Remove(0, 1)
	assert.False(t, ok)
	_, ok = tree.Min()
	assert.False(t, ok)
}

func TestTreeOverlap(t *testing.T) {
	tree := newTestTree(t,
		[2]int{0, 2}, [2]int{2, 4}, [2]int{1, 6}, [2]int{3, 4}, [2]int{1, 3},
		[2]int{4, 6}, [2]int{5, 8}, [2]int{6, 8}, [2]int{5, 7}, [2]int{8, 9})

	expect.EQ(t, tree.Overlapping(3, 6), []string{"[1,6)", "[2,4)", "[3,4)", "[4,6)", "[5,7)", "[5,8)"})
	// Half-open: [8,9) does not touch [6,8).
	expect.EQ(t, tree.Overlapping(8, 20), []string{"[8,9)"})
	assert.True(t, tree.HasOverlappers(7, 8))
	assert.False(t, tree.HasOverlappers(9, 100))
	assert.False(t, tree.HasOverlappers(4, 4))

	var firstTwo []string
	tree.DoOverlapping(0, 10, func(start, end int, v string) bool {
		firstTwo = append(firstTwo, v)
		return len(firstTwo) == 2
	})
	expect.EQ(t, firstTwo, []string{"[0,2)", "[1,3)"})
}

func TestTreeNodesBefore(t *testing.T) {
	tree := newTestTree(t, [2]int{0, 10}, [2]int{5, 15}, [2]int{10, 20}, [2]int{2, 12}, [2]int{15, 25})
	var got []string
	for _, n := range tree.NodesBefore(15, 15) {
		got = append(got, n.Value)
	}
	expect.EQ(t, got, []string{"[0,10)", "[2,12)", "[5,15)"})
	assert.Empty(t, tree.NodesBefore(5, 5))
}

func TestTreeOrder(t *testing.T) {
	tree := newTestTree(t, [2]int{5, 9}, [2]int{1, 3}, [2]int{5, 6}, [2]int{0, 100})
	expect.EQ(t, tree.Values(), []string{"[0,100)", "[1,3)", "[5,6)", "[5,9)"})
	n, ok := tree.Min()
	assert.True(t, ok)
	assert.Equal(t, Node[string]{0, 100, "[0,100)"}, n)
}

// TestTreeRandom compares the tree against a brute-force key list.
func TestTreeRandom(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	tree := &Tree[int]{}
	ref := map[[2]int]int{}
	for iter := 0; iter < 2000; iter++ {
		start := r.Intn(500)
		end := start + 1 + r.Intn(50)
		k := [2]int{start, end}
		if r.Intn(3) == 0 {
			_, ok := tree.Remove(start, end)
			_, want := ref[k]
			require.Equal(t, want, ok)
			delete(ref, k)
		} else {
			require.NoError(t, tree.Put(start, end, iter))
			ref[k] = iter
		}
		require.Equal(t, len(ref), tree.Len())
	}
	for q := 0; q < 200; q++ {
		start := r.Intn(550)
		end := start + 1 + r.Intn(40)
		var want []int
		var keys [][2]int
		for k := range ref {
			if k[0] < end && start < k[1] {
				keys = append(keys, k)
			}
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i][0] != keys[j][0] {
				return keys[i][0] < keys[j][0]
			}
			return keys[i][1] < keys[j][1]
		})
		for _, k := range keys {
			want = append(want, ref[k])
		}
		assert.Equal(t, want, tree.Overlapping(start, end))
		assert.Equal(t, len(want) > 0, tree.HasOverlappers(start, end))
	}
}
