// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package mrs

import (
	"crypto/cipher"
	"errors"
	"fmt"
)

// ErrAuthenticationFailed is returned by an Open call when the supplied tag
// does not verify. The accompanying plaintext-shaped output must be treated
// as indeterminate by the caller.
var ErrAuthenticationFailed = errors.New("mrs: authentication failed")

// aeadAdapter adapts the MRS mode driver to the standard crypto/cipher.AEAD
// interface, constructing a fresh Context for every Seal/Open call so the
// core's "consumed, not reused" contract is honored without the caller
// having to manage a Context directly.
type aeadAdapter struct {
	perm Permutation
	key  [KeyLength]byte
}

// New returns a cipher.AEAD sealing and opening with the MRS construction
// over perm. key must be exactly KeyLength (32) bytes.
func New(perm Permutation, key []byte) (cipher.AEAD, error) {
	if len(key) != KeyLength {
		return nil, fmt.Errorf("mrs: invalid key length %d, want %d", len(key), KeyLength)
	}
	a := &aeadAdapter{perm: perm}
	copy(a.key[:], key)
	return a, nil
}

// NonceSize reports the nonce length required by the construction.
func (a *aeadAdapter) NonceSize() int { return NonceLength }

// Overhead reports the tag size appended to sealed ciphertexts.
func (a *aeadAdapter) Overhead() int { return TagLength }

// Seal encrypts and authenticates plaintext, authenticates additionalData,
// and appends the result (ciphertext followed by the tag, per the
// construction's buffer-layout convention) to dst. It panics if
// len(nonce) != NonceSize(), matching the fixed-nonce-size convention of
// other cipher.AEAD implementations in this module's dependency stack.
func (a *aeadAdapter) Seal(dst, nonce, plaintext, additionalData []byte) []byte {
	if len(nonce) != NonceLength {
		panic("mrs: invalid nonce size")
	}

	m := append([]byte(nil), plaintext...)
	tag := Encrypt(a.perm, a.key[:], nonce, additionalData, m)

	ret, out := sliceForAppend(dst, len(m)+TagLength)
	copy(out, m)
	copy(out[len(m):], tag[:])
	return ret
}

// Open authenticates additionalData and ciphertext (produced by Seal,
// ciphertext followed by its tag) and, on success, appends the recovered
// plaintext to dst. It returns ErrAuthenticationFailed if the tag does not
// verify. It panics if len(nonce) != NonceSize().
func (a *aeadAdapter) Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != NonceLength {
		panic("mrs: invalid nonce size")
	}
	if len(ciphertext) < TagLength {
		return nil, ErrAuthenticationFailed
	}

	n := len(ciphertext) - TagLength
	c := append([]byte(nil), ciphertext[:n]...)
	var tag [TagLength]byte
	copy(tag[:], ciphertext[n:])

	if !Decrypt(a.perm, a.key[:], nonce, additionalData, c, tag) {
		return nil, ErrAuthenticationFailed
	}

	ret, out := sliceForAppend(dst, len(c))
	copy(out, c)
	return ret, nil
}

// sliceForAppend extends in by n bytes, reusing its capacity when there is
// room. This is the same append-growth idiom golang.org/x/crypto's AEAD
// constructions (e.g. chacha20poly1305) use to avoid an extra allocation on
// the common Seal/Open path.
func sliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}

var _ cipher.AEAD = (*aeadAdapter)(nil)
