package interval

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PosMax is one past the largest coordinate a Union can hold.
const PosMax = math.MaxInt32

// Entry represents a single interval, with 0-based coordinates.
type Entry struct {
	RefName string
	Start0  int
	End     int
}

// Union is an interval-union over named references: overlapping and touching
// entries are merged, not tracked separately. Each reference maps to a
// length-2N sorted sequence of endpoints, where interval #k occupies elements
// [2k] (start) and [2k+1] (end).
type Union struct {
	// nameMap is a reference-keyed map with disjoint-interval-set values.
	nameMap  map[string][]int
	totBases int
}

// searchEndpoints returns the index of x in a[], or the position where x
// would be inserted if x isn't in a (this could be len(a)).
func searchEndpoints(a []int, x int) int {
	return sort.SearchInts(a, x)
}

// NewUnion initializes a Union from entries sorted by reference (each
// reference contiguous) and then start. Empty entries still mark their
// reference as mentioned.
func NewUnion(entries []Entry) (*Union, error) {
	u := &Union{nameMap: make(map[string][]int)}
	prevRef := ""
	prevStart, prevEnd := -1, -1
	var refIntervals []int
	flush := func() {
		if prevRef == "" {
			return
		}
		if prevEnd != -1 {
			refIntervals = append(refIntervals, prevStart, prevEnd)
		}
		u.nameMap[prevRef] = refIntervals
	}
	for _, e := range entries {
		if e.RefName == "" {
			return nil, fmt.Errorf("interval.NewUnion: empty reference name")
		}
		if e.Start0 < 0 {
			return nil, fmt.Errorf("interval.NewUnion: negative start coordinate in %v", e)
		}
		if e.End < e.Start0 || e.End >= PosMax {
			return nil, fmt.Errorf("interval.NewUnion: invalid coordinate pair [%d, %d)", e.Start0, e.End)
		}
		if e.RefName != prevRef {
			flush()
			if _, found := u.nameMap[e.RefName]; found {
				return nil, fmt.Errorf("interval.NewUnion: unsorted input (split reference %v)", e.RefName)
			}
			prevRef = e.RefName
			refIntervals = []int{}
			prevStart, prevEnd = -1, -1
		}
		if e.End == e.Start0 {
			continue
		}
		if prevEnd == -1 {
			prevStart, prevEnd = e.Start0, e.End
			u.totBases += e.End - e.Start0
			continue
		}
		if e.Start0 < prevStart {
			return nil, fmt.Errorf("interval.NewUnion: unsorted input at %v", e)
		}
		if e.Start0 > prevEnd {
			refIntervals = append(refIntervals, prevStart, prevEnd)
			prevStart, prevEnd = e.Start0, e.End
			u.totBases += e.End - e.Start0
			continue
		}
		if e.End > prevEnd {
			u.totBases += e.End - prevEnd
			prevEnd = e.End
		}
	}
	flush()
	return u, nil
}

// TotalBases returns the number of positions covered by the union.
func (u *Union) TotalBases() int { return u.totBases }

// Intersects checks whether [start, end) on refName shares at least one
// position with the union.
func (u *Union) Intersects(refName string, start, end int) bool {
	if end <= start {
		return false
	}
	endpoints := u.nameMap[refName]
	if len(endpoints) == 0 {
		return false
	}
	idx := searchEndpoints(endpoints, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(endpoints) && end > endpoints[idx]
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning the reference name and 0-based interval boundaries.  The interval
// [0, PosMax - 1) is returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.RefName = region
		result.End = PosMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.RefName = region[:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int
		if pos1, err = strconv.Atoi(rangeStr); err != nil {
			return
		}
		if pos1 <= 0 || pos1 >= PosMax {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = pos1 - 1
		result.End = pos1
		return
	}
	var start1, end int
	if start1, err = strconv.Atoi(rangeStr[:dashPos]); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr[:dashPos])
		return
	}
	if end, err = strconv.Atoi(rangeStr[dashPos+1:]); err != nil {
		return
	}
	if end < start1 || end >= PosMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = start1 - 1
	result.End = end
	return
}
