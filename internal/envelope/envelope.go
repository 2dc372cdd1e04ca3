// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package envelope versions sealed blobs so a caller can migrate from a
// legacy ChaCha20-Poly1305 sealer to the MRS construction without a flag
// day: Open recognizes either version from a leading byte, and Reseal
// re-encrypts a legacy blob under MRS.
//
// Envelope wraps two interchangeable crypto/cipher.AEAD implementations
// side by side, one legacy and one current, so a blob sealed under either
// can still be opened.
package envelope

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/mrsaead/mrs"
)

// Blob format versions, stored as the leading byte of a sealed blob.
const (
	VersionLegacyChaCha20Poly1305 byte = 0
	VersionMRS                    byte = 1
)

// Envelope seals with the MRS construction and can additionally open blobs
// produced by a legacy ChaCha20-Poly1305 sealer, for migration.
type Envelope struct {
	current cipher.AEAD
	legacy  cipher.AEAD
}

// New constructs an Envelope. perm and key configure the MRS side; if
// legacyKey is non-nil, blobs sealed under VersionLegacyChaCha20Poly1305
// with that key can still be opened (and resealed under MRS).
func New(perm mrs.Permutation, key, legacyKey []byte) (*Envelope, error) {
	current, err := mrs.New(perm, key)
	if err != nil {
		return nil, fmt.Errorf("envelope: construct mrs aead: %w", err)
	}

	var legacy cipher.AEAD
	if legacyKey != nil {
		legacy, err = chacha20poly1305.New(legacyKey)
		if err != nil {
			return nil, fmt.Errorf("envelope: construct legacy aead: %w", err)
		}
	}

	return &Envelope{current: current, legacy: legacy}, nil
}

// NonceSize reports the nonce length required by Seal (the current, MRS,
// construction's nonce size).
func (e *Envelope) NonceSize() int { return e.current.NonceSize() }

// Seal encrypts and authenticates plaintext (and authenticates aad) under
// the current MRS construction, returning a version-tagged blob.
func (e *Envelope) Seal(nonce, plaintext, aad []byte) []byte {
	if len(nonce) != e.current.NonceSize() {
		panic("envelope: invalid nonce size")
	}
	out := make([]byte, 1, 1+len(nonce)+len(plaintext)+e.current.Overhead())
	out[0] = VersionMRS
	out = append(out, nonce...)
	return e.current.Seal(out, nonce, plaintext, aad)
}

// Open authenticates and decrypts a blob produced by Seal, or by a legacy
// ChaCha20-Poly1305 sealer if this Envelope was constructed with a legacy
// key.
func (e *Envelope) Open(blob, aad []byte) ([]byte, error) {
	if len(blob) < 1 {
		return nil, fmt.Errorf("envelope: empty blob")
	}

	a, err := e.aeadFor(blob[0])
	if err != nil {
		return nil, err
	}

	body := blob[1:]
	if len(body) < a.NonceSize() {
		return nil, fmt.Errorf("envelope: blob too short for version %d", blob[0])
	}
	nonce := body[:a.NonceSize()]
	ciphertext := body[a.NonceSize():]

	plaintext, err := a.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("envelope: open: %w", err)
	}
	return plaintext, nil
}

// Reseal opens a (possibly legacy) blob and seals the recovered plaintext
// again under the current MRS construction with nonce, migrating it to
// VersionMRS.
func (e *Envelope) Reseal(blob, aad, nonce []byte) ([]byte, error) {
	plaintext, err := e.Open(blob, aad)
	if err != nil {
		return nil, fmt.Errorf("envelope: reseal: %w", err)
	}
	return e.Seal(nonce, plaintext, aad), nil
}

func (e *Envelope) aeadFor(version byte) (cipher.AEAD, error) {
	switch version {
	case VersionMRS:
		return e.current, nil
	case VersionLegacyChaCha20Poly1305:
		if e.legacy == nil {
			return nil, fmt.Errorf("envelope: no legacy key configured")
		}
		return e.legacy, nil
	default:
		return nil, fmt.Errorf("envelope: unknown blob version %d", version)
	}
}
