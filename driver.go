// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package mrs

import (
	"crypto/subtle"
	"fmt"
)

// Encrypt runs the MRS mode driver's encryption side: an absorption pass
// over aad and m produces a tag, which is then used as the synthetic nonce
// for a second, tag-keyed pass that turns m into ciphertext in place.
//
// key must be KeyLength (32) bytes and nonce must be NonceLength (16)
// bytes; a length mismatch is a contract violation and panics. m is
// encrypted in place: on return it holds ciphertext of the same length.
// perm is invoked fresh for every call; callers must not reuse the
// permutation's internal state (it has none, see Permutation).
//
// Tag-then-encrypt is deliberate and must not be reordered: absorbing the
// plaintext before producing keystream is what binds the tag to the full
// input under nonce repetition (the construction's SIV shape).
func Encrypt[P Permutation](perm P, key, nonce, aad, m []byte) [TagLength]byte {
	mustKeyAndNonce(key, nonce)

	ctx := NewContext(perm)
	ctx.init(frameAbs, key, nonce)
	ctx.absorb(aad)
	ctx.absorb(m)
	tag := ctx.finalise(uint64(len(aad)), uint64(len(m)))

	ctx.init(frameEnc, key, tag[:])
	ctx.encryptData(m)

	ctx.Wipe()
	return tag
}

// Decrypt runs the MRS mode driver's decryption side: the ciphertext is
// first turned back into candidate plaintext using the tag as the
// synthetic nonce, then re-authenticated by repeating the absorption pass
// over aad and the recovered plaintext. It returns true iff the recomputed
// tag matches tag under constant-time comparison.
//
// c is decrypted in place regardless of the outcome; on a false return the
// caller must treat c's contents as indeterminate and should discard them;
// Decrypt does not erase them itself.
func Decrypt[P Permutation](perm P, key, nonce, aad, c []byte, tag [TagLength]byte) bool {
	mustKeyAndNonce(key, nonce)

	ctx := NewContext(perm)
	ctx.init(frameEnc, key, tag[:])
	ctx.decryptData(c)

	ctx.init(frameAbs, key, nonce)
	ctx.absorb(aad)
	ctx.absorb(c)
	tag2 := ctx.finalise(uint64(len(aad)), uint64(len(c)))

	ctx.Wipe()
	// crypto/subtle.ConstantTimeCompare traverses every byte regardless of
	// an early mismatch, matching the construction's no-early-exit
	// requirement for tag verification.
	return subtle.ConstantTimeCompare(tag[:], tag2[:]) == 1
}

func mustKeyAndNonce(key, nonce []byte) {
	if len(key) != KeyLength {
		panic(fmt.Sprintf("mrs: key must be %d bytes, got %d", KeyLength, len(key)))
	}
	if len(nonce) != NonceLength {
		panic(fmt.Sprintf("mrs: nonce must be %d bytes, got %d", NonceLength, len(nonce)))
	}
}
