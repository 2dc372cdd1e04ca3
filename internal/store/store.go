// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/mrsaead/mrs"
)

// Store seals arbitrary gob-encodable values with MRS under a single
// HKDF-derived key, one per (secret, salt) pair: gob-encode, then
// authenticated-encrypt with a derived nonce.
type Store struct {
	perm   mrs.Permutation
	key    [mrs.KeyLength]byte
	nonces NonceDeriver
}

// New derives a record key from secret and salt and returns a Store that
// seals records using perm as the MRS permutation.
func New(perm mrs.Permutation, secret, salt []byte) (*Store, error) {
	key, err := DeriveKey(secret, salt)
	if err != nil {
		return nil, err
	}
	nonces, err := NewHKDFNonceDeriver(secret, salt)
	if err != nil {
		return nil, err
	}

	s := &Store{perm: perm, nonces: nonces}
	copy(s.key[:], key)
	return s, nil
}

// Seal gob-encodes value, authenticates it under aad, and returns the
// sealed record as nonce || ciphertext || tag.
func (s *Store) Seal(value any, aad []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}

	nonce := s.nonces.NextNonce()
	m := buf.Bytes()
	tag := mrs.Encrypt(s.perm, s.key[:], nonce, aad, m)

	out := make([]byte, 0, len(nonce)+len(m)+mrs.TagLength)
	out = append(out, nonce...)
	out = append(out, m...)
	out = append(out, tag[:]...)
	return out, nil
}

// Open verifies and decodes a record produced by Seal into out, recovering
// the nonce from the record itself.
func (s *Store) Open(record, aad []byte, out any) error {
	if len(record) < mrs.NonceLength+mrs.TagLength {
		return fmt.Errorf("store: record too short (%d bytes)", len(record))
	}

	nonce := record[:mrs.NonceLength]
	body := record[mrs.NonceLength:]
	n := len(body) - mrs.TagLength
	c := append([]byte(nil), body[:n]...)
	var tag [mrs.TagLength]byte
	copy(tag[:], body[n:])

	if !mrs.Decrypt(s.perm, s.key[:], nonce, aad, c, tag) {
		return fmt.Errorf("store: %w", mrs.ErrAuthenticationFailed)
	}

	if err := gob.NewDecoder(bytes.NewReader(c)).Decode(out); err != nil {
		return fmt.Errorf("store: decode record: %w", err)
	}
	return nil
}
