/*Package collection provides pull iterators over annotations and the
streaming views built on them.

A Collection yields annotations sorted by (reference, start), optionally
restricted to a region and filtered.  FeatureCollection is the in-memory
implementation; fragment.BAMCollection and the BED reader stream from files.

WindowIterator consumes a sorted stream and produces fixed-length windows
populated with the annotations that reach them, holding only the windows
that later input could still extend.  ConverterIterator re-expresses a
stream in the feature space of the overlapping features of another
collection.

Iterators follow the Scan/Value/Err/Close protocol.  Derived iterators own
their input and close it on exhaustion or Close.
*/
package collection
