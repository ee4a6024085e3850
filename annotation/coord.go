package annotation

// featureOffset returns the number of bases of a that lie before the
// reference position pos.
func featureOffset(a Annotation, pos int) int {
	offset := 0
	for _, blk := range a.Blocks() {
		if blk.start >= pos {
			break
		}
		offset += min(blk.end, pos) - blk.start
	}
	return offset
}

// RelativePositionFrom5Prime returns the distance, in feature bases, from the
// 5' end of a to the reference position pos: bases are counted from Start for
// Positive (and unstranded) annotations and back from End for Negative ones.
// Positive results lie in [0, Size); Negative results lie in (0, Size], so
// the last base before End maps to 1 and Start maps to Size.  It returns -1 if
// pos lies outside [a.Start(), a.End()).
func RelativePositionFrom5Prime(a Annotation, pos int) int {
	if pos < a.Start() || pos >= a.End() {
		return -1
	}
	offset := featureOffset(a, pos)
	if a.Strand() == Negative {
		return a.Size() - offset
	}
	return offset
}

// ToFeatureSpace expresses the part of region that overlaps a in a's feature
// coordinates, where 0 is a's 5' end.  The returned interval lies on a
// reference named after a, and carries the consensus strand of a and region.
// ok is false if region does not overlap a.
func ToFeatureSpace(a, region Annotation) (fr SingleInterval, ok bool) {
	if !Overlaps(a, region) {
		return fr, false
	}
	start := max(region.Start(), a.Start())
	end := min(region.End(), a.End())
	fs, fe := featureOffset(a, start), featureOffset(a, end)
	if a.Strand() == Negative {
		fs, fe = a.Size()-fe, a.Size()-fs
	}
	if fe <= fs {
		return fr, false
	}
	return NewNamedInterval(a.Name(), fs, fe, ConsensusStrand(a.Strand(), region.Strand()), a.Name()), true
}

// ToReferenceSpace maps fr, given in a's feature coordinates, back onto the
// reference.  The result keeps a's intron structure and carries the consensus
// strand of a and fr.  It is empty if fr lies outside [0, a.Size()) or the
// strands are incompatible.
//
// For any region r that overlaps a,
//
//	fr, _ := ToFeatureSpace(a, r)
//	Equal(ToReferenceSpace(a, fr), Intersect(a, r))
//
// holds whenever r is a single interval.
func ToReferenceSpace(a, fr Annotation) *BlockedAnnotation {
	result := NewBlockedAnnotation(a.Name())
	strand := ConsensusStrand(a.Strand(), fr.Strand())
	if strand == Invalid {
		return result
	}
	size := a.Size()
	for _, frBlock := range fr.Blocks() {
		fs, fe := frBlock.start, frBlock.end
		sum := 0
		for _, blk := range a.Blocks() {
			bsize := blk.Size()
			fbStart, fbEnd := sum, sum+bsize
			if a.Strand() == Negative {
				fbStart, fbEnd = size-(sum+bsize), size-sum
			}
			sum += bsize
			if fbStart >= fe || fs >= fbEnd {
				continue
			}
			shiftStart := max(0, fs-fbStart)
			shiftEnd := max(0, fbEnd-fe)
			result.AddBlock(blk.Trim(shiftStart, bsize-shiftEnd).WithStrand(strand))
		}
	}
	return result
}

// Trim returns the part of a within the reference range [start, end).
func Trim(a Annotation, start, end int) *BlockedAnnotation {
	return Intersect(a, NewSingleInterval(a.RefName(), start, end, a.Strand()))
}

// FeatureWindows tiles a with windows of windowSize feature bases, moving
// step bases at a time from the 5' end, and returns them mapped back to the
// reference in ascending reference order.  Each window is named with its
// UCSC-style locus.  Windows that would run past the end of a are not
// produced.
func FeatureWindows(a Annotation, windowSize, step int) []*BlockedAnnotation {
	size := a.Size()
	if windowSize <= 0 || step <= 0 || windowSize > size {
		return nil
	}
	var starts []int
	if a.Strand() == Negative {
		// Walking down from the 3' end keeps the output in reference order.
		for fs := size - windowSize; fs >= 0; fs -= step {
			starts = append(starts, fs)
		}
	} else {
		for fs := 0; fs+windowSize <= size; fs += step {
			starts = append(starts, fs)
		}
	}
	windows := make([]*BlockedAnnotation, 0, len(starts))
	for _, fs := range starts {
		w := ToReferenceSpace(a, NewSingleInterval(a.Name(), fs, fs+windowSize, Unknown))
		if w.IsEmpty() {
			continue
		}
		w.name = UCSC(w)
		windows = append(windows, w)
	}
	return windows
}
