// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

// Package store persists arbitrary Go values as MRS-sealed, gob-encoded
// records under a single long-term secret, deriving the record key and a
// fresh per-record nonce with HKDF-SHA256. This sits outside the MRS core
// (which takes a nonce as given): it is a consumer built on top of it.
//
// Record nonces are derived, not random, but uniqueness is a best effort,
// not a requirement: MRS's misuse-resistance means a repeated nonce can at
// worst make two records with identical (aad, value) produce identical
// ciphertext; it can never leak the key or let an attacker forge a
// different record, unlike a nonce-reused traditional AEAD.
package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/crypto/hkdf"

	"github.com/mrsaead/mrs"
)

const (
	keyContext   = "mrsaead/store/key:v1"
	nonceContext = "mrsaead/store/nonce:v1"
)

// DeriveKey derives the 32-byte MRS key this store's records are sealed
// under, from a master secret and a caller-chosen salt (e.g. a table or
// namespace identifier). secret and salt must both be non-empty.
func DeriveKey(secret, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("store: master secret is empty")
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("store: salt is empty")
	}
	r := hkdf.New(sha256.New, secret, salt, []byte(keyContext))
	key := make([]byte, mrs.KeyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		panic(fmt.Sprintf("store: hkdf expand failed: %v", err))
	}
	return key, nil
}

// NonceDeriver hands out a fresh NonceLength-byte nonce for each sealed
// record.
type NonceDeriver interface {
	NextNonce() []byte
}

// hkdfNonceDeriver derives nonces from the same master secret and salt as
// DeriveKey, domain-separated by nonceContext, with a monotonic counter
// folded into the HKDF info parameter.
type hkdfNonceDeriver struct {
	secret  []byte
	salt    []byte
	counter atomic.Uint64
}

// NewHKDFNonceDeriver constructs a NonceDeriver backed by HKDF-SHA256.
func NewHKDFNonceDeriver(secret, salt []byte) (NonceDeriver, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("store: master secret is empty")
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("store: salt is empty")
	}
	return &hkdfNonceDeriver{
		secret: append([]byte(nil), secret...),
		salt:   append([]byte(nil), salt...),
	}, nil
}

func (d *hkdfNonceDeriver) NextNonce() []byte {
	idx := d.counter.Add(1) - 1

	var info strings.Builder
	info.Grow(len(nonceContext) + 1 + 8)
	info.WriteString(nonceContext)
	info.WriteByte(0)
	var counterBytes [8]byte
	binary.BigEndian.PutUint64(counterBytes[:], idx)
	info.Write(counterBytes[:])

	r := hkdf.New(sha256.New, d.secret, d.salt, []byte(info.String()))
	nonce := make([]byte, mrs.NonceLength)
	if _, err := io.ReadFull(r, nonce); err != nil {
		panic(fmt.Sprintf("store: hkdf expand failed: %v", err))
	}
	return nonce
}
