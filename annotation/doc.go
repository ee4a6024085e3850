// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package annotation represents genomic features as sets of coordinate
intervals.

A feature is an Annotation: one or more disjoint blocks on a single reference
sequence and strand.  SingleInterval is the contiguous case; BlockedAnnotation
is the general case, and keeps its blocks in an interval.Tree so that block
insertion coalesces overlapping blocks.

The algebra (Overlaps, Intersect, Merge, Contains, Compare) and the coordinate
converter (RelativePositionFrom5Prime, ToFeatureSpace, ToReferenceSpace) are
free functions over the Annotation interface, so every implementation shares
one definition of them.

Coordinates are zero-based and half-open.  "Reference space" is the absolute
position on a reference sequence; "feature space" is the offset from the 5'
end of a feature, counting only the bases covered by its blocks.
*/
package annotation
