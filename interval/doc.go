/*Package interval implements the coordinate indexes used across this module:

  Tree, an ordered map keyed by half-open [start, end) ranges which answers
  overlap queries in O(log n + k);

  Union, an interval-union optimized for sets of genomic coordinates such as
  target regions loaded from BED files.  (Note the 'union': overlapping
  intervals are merged, not tracked separately; use Tree when that is not the
  desired behavior.)

All coordinates are zero-based, and intervals are left-closed right-open.
*/
package interval
