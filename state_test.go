// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package mrs

import (
	"testing"

	"github.com/go-quicktest/qt"
)

func TestStateByteWordRoundTrip(t *testing.T) {
	var s State
	for i := range s.words {
		s.words[i] = uint64(i)*0x0102030405060708 + 1
	}

	var b [StateLength]byte
	s.toBytes(&b)

	// B[8*i+j] = (S[i] >> (8*j)) & 0xFF, the little-endian discipline §4.1
	// requires at every view crossing.
	for i, w := range s.words {
		for j := 0; j < 8; j++ {
			want := byte(w >> (8 * j))
			qt.Assert(t, qt.Equals(b[8*i+j], want))
		}
	}

	var s2 State
	s2.fromBytes(&b)
	qt.Assert(t, qt.CmpEquals(s2.words, s.words))
}

func TestWithBytesRoundTripsUnmodified(t *testing.T) {
	var s State
	for i := range s.words {
		s.words[i] = uint64(i) + 1
	}
	before := s.words

	s.withBytes(func(b *[StateLength]byte) {})
	qt.Assert(t, qt.CmpEquals(s.words, before))
}

func TestWithBytesAppliesByteMutation(t *testing.T) {
	var s State
	s.withBytes(func(b *[StateLength]byte) {
		b[0] = 0xFF
	})
	qt.Assert(t, qt.Equals(s.words[0], uint64(0xFF)))
}

func TestZero(t *testing.T) {
	var s State
	s.words[3] = 42
	s.zero()
	qt.Assert(t, qt.CmpEquals(s.words, [Length]uint64{}))
}
