// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package mrs

import "encoding/binary"

// State is the 128-byte sponge state, addressable as 16 little-endian
// 64-bit words (the view the permutation consumes) or as a flat byte array
// (the view XOR-absorption, key/nonce copy-in, and tag copy-out use).
//
// The canonical in-memory form is the word array; byte-view operations
// serialize to and from little-endian bytes at each boundary crossing via
// withBytes, matching the discipline B[8*i+j] = (S[i] >> (8*j)) & 0xFF
// regardless of host endianness.
type State struct {
	words [Length]uint64
}

// withBytes exposes the state's byte view to f, then re-derives the word
// view from whatever bytes f left behind. Every full absorb/encrypt/decrypt
// block and the short absorb tail make their byte-level mutation through
// this call, after permuting. init, finalise and the short encrypt/decrypt
// tails convert with fromBytes or toBytes directly.
func (s *State) withBytes(f func(b *[StateLength]byte)) {
	var b [StateLength]byte
	s.toBytes(&b)
	f(&b)
	s.fromBytes(&b)
}

func (s *State) toBytes(b *[StateLength]byte) {
	for i, w := range s.words {
		binary.LittleEndian.PutUint64(b[i*8:], w)
	}
}

func (s *State) fromBytes(b *[StateLength]byte) {
	for i := range s.words {
		s.words[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
}

// zero resets the state to all-zero words.
func (s *State) zero() {
	s.words = [Length]uint64{}
}
