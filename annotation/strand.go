// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package annotation

import "fmt"

// Strand is the orientation of an annotation relative to its reference.
type Strand uint8

const (
	// Positive is the forward strand.
	Positive Strand = iota
	// Negative is the reverse strand.
	Negative
	// Both marks features that apply to either strand.
	Both
	// Unknown marks features whose strand has not been determined.
	Unknown
	// Invalid is the consensus of irreconcilable strands.  Two intervals whose
	// consensus is Invalid cannot be part of the same feature.
	Invalid
)

var strandSymbols = [...]string{"+", "-", "*", ".", "?"}

// String returns the BED-style symbol of the strand.
func (s Strand) String() string {
	if int(s) < len(strandSymbols) {
		return strandSymbols[s]
	}
	return fmt.Sprintf("Strand(%d)", uint8(s))
}

// ParseStrand parses the output of Strand.String.  Unrecognized symbols map to
// Unknown.
func ParseStrand(s string) Strand {
	switch s {
	case "+":
		return Positive
	case "-":
		return Negative
	case "*":
		return Both
	case "?":
		return Invalid
	}
	return Unknown
}

// Reverse swaps Positive and Negative and leaves the other values alone.
func (s Strand) Reverse() Strand {
	switch s {
	case Positive:
		return Negative
	case Negative:
		return Positive
	}
	return s
}

// ConsensusStrand combines the strands of two intervals. It is commutative.
func ConsensusStrand(a, b Strand) Strand {
	switch {
	case a == b:
		return a
	case a == Unknown:
		return b
	case b == Unknown:
		return a
	case a == Invalid || b == Invalid:
		return Invalid
	case a == Both:
		return b
	case b == Both:
		return a
	}
	// Positive vs. Negative.
	return Invalid
}
