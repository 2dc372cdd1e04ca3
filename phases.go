// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package mrs

// permute applies the injected permutation capability to the state's word
// view in place.
func (c *Context[P]) permute() {
	c.perm.Permute(&c.state.words)
}

// init resets the Context to the initial state for one phase of the mode
// driver. frame selects the domain-separating tag (frameAbs or frameEnc);
// nonceOrTag is the 16-byte nonce for the absorption phase or the 32-byte
// tag for the encryption phase, and occupies the low bytes of the rate
// region. key (32 bytes) always lands in the capacity region at byte
// offset 96 (words 12..15).
//
// Post-state: words 9..15 carry (L, T, frame, key0..key3); words 0..8 carry
// nonceOrTag in their low bytes and zero elsewhere.
func (c *Context[P]) init(frame uint64, key, nonceOrTag []byte) {
	var b [StateLength]byte
	copy(b[:], nonceOrTag)
	copy(b[12*8:], key)
	c.state.fromBytes(&b)

	c.state.words[9] = L
	c.state.words[10] = T
	c.state.words[11] = frame
}

// absorb XOR-mixes data into the state's full 128-byte rate, one block at a
// time. A full block is preceded by a permutation; the final short block
// (0 <= r < StateLength) is likewise preceded by a permutation before its r
// bytes are XORed in. No padding is applied; domain separation is carried
// entirely by the frame tag set in init and by the length injection in
// finalise. An empty input is a no-op: no permutation is applied.
func (c *Context[P]) absorb(data []byte) {
	for len(data) >= StateLength {
		c.permute()
		c.state.withBytes(func(b *[StateLength]byte) {
			for i := 0; i < StateLength; i++ {
				b[i] ^= data[i]
			}
		})
		data = data[StateLength:]
	}
	if len(data) > 0 {
		c.permute()
		c.state.withBytes(func(b *[StateLength]byte) {
			for i := range data {
				b[i] ^= data[i]
			}
		})
	}
}

// finalise injects the pre-padding byte lengths of the absorbed AAD and
// message, permutes once more, and extracts the first TagLength bytes of
// the byte view as the tag. headerLen and messageLen are raw byte counts,
// not block counts.
func (c *Context[P]) finalise(headerLen, messageLen uint64) [TagLength]byte {
	c.permute()
	c.state.words[0] ^= headerLen
	c.state.words[1] ^= messageLen
	c.permute()

	var b [StateLength]byte
	c.state.toBytes(&b)
	var tag [TagLength]byte
	copy(tag[:], b[:TagLength])
	return tag
}

// encryptData encrypts m in place using the 96-byte encryption rate
// (BlockLength, words 0..11). Each full block is permuted, then every byte
// is XORed with the state and the result fed back into the state (the
// output byte is the post-XOR state byte). The final short block (r <
// BlockLength) is permuted and XORed with the keystream but does not feed
// back into the state, since no further block follows within this call.
func (c *Context[P]) encryptData(m []byte) {
	for len(m) >= BlockLength {
		c.permute()
		c.state.withBytes(func(b *[StateLength]byte) {
			for i := 0; i < BlockLength; i++ {
				b[i] ^= m[i]
				m[i] = b[i]
			}
		})
		m = m[BlockLength:]
	}
	if len(m) > 0 {
		c.permute()
		var b [StateLength]byte
		c.state.toBytes(&b)
		for i := range m {
			m[i] ^= b[i]
		}
	}
}

// decryptData is the adjoint of encryptData: for each full block, the
// ciphertext byte is stored into the state and the emitted byte is the
// pre-state byte XOR the ciphertext byte (recovering the original
// plaintext). The final short block is symmetric to encryptData's: it is
// XORed with the keystream without writing back into the state.
func (c *Context[P]) decryptData(ct []byte) {
	for len(ct) >= BlockLength {
		c.permute()
		c.state.withBytes(func(b *[StateLength]byte) {
			for i := 0; i < BlockLength; i++ {
				s := b[i]
				b[i] = ct[i]
				ct[i] ^= s
			}
		})
		ct = ct[BlockLength:]
	}
	if len(ct) > 0 {
		c.permute()
		var b [StateLength]byte
		c.state.toBytes(&b)
		for i := range ct {
			ct[i] ^= b[i]
		}
	}
}
