// Copyright (c) 2025, The Garble Authors.
// See LICENSE for licensing information.

package store

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/mrsaead/mrs"
)

type record struct {
	Name  string
	Count int
}

func TestSealOpenRoundTrip(t *testing.T) {
	s, err := New(mrs.Blake2P{}, []byte("master-secret-0123456789"), []byte("table:users"))
	qt.Assert(t, qt.IsNil(err))

	want := record{Name: "alice", Count: 7}
	sealed, err := s.Seal(want, []byte("ctx"))
	qt.Assert(t, qt.IsNil(err))

	var got record
	err = s.Open(sealed, []byte("ctx"), &got)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got, want))
}

func TestSealProducesDistinctNoncesPerRecord(t *testing.T) {
	s, err := New(mrs.Blake2P{}, []byte("master-secret-0123456789"), []byte("table:users"))
	qt.Assert(t, qt.IsNil(err))

	r1, err := s.Seal(record{Name: "a"}, nil)
	qt.Assert(t, qt.IsNil(err))
	r2, err := s.Seal(record{Name: "a"}, nil)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsFalse(string(r1[:mrs.NonceLength]) == string(r2[:mrs.NonceLength])))
}

func TestOpenRejectsWrongAAD(t *testing.T) {
	s, err := New(mrs.Blake2P{}, []byte("master-secret-0123456789"), []byte("table:users"))
	qt.Assert(t, qt.IsNil(err))

	sealed, err := s.Seal(record{Name: "bob"}, []byte("ctx-a"))
	qt.Assert(t, qt.IsNil(err))

	var got record
	err = s.Open(sealed, []byte("ctx-b"), &got)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestOpenRejectsTamperedRecord(t *testing.T) {
	s, err := New(mrs.Blake2P{}, []byte("master-secret-0123456789"), []byte("table:users"))
	qt.Assert(t, qt.IsNil(err))

	sealed, err := s.Seal(record{Name: "carol"}, nil)
	qt.Assert(t, qt.IsNil(err))
	sealed[len(sealed)-1] ^= 0x01

	var got record
	err = s.Open(sealed, nil, &got)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestDeriveKeyDeterministicPerSalt(t *testing.T) {
	k1, err := DeriveKey([]byte("secret"), []byte("salt-a"))
	qt.Assert(t, qt.IsNil(err))
	k2, err := DeriveKey([]byte("secret"), []byte("salt-a"))
	qt.Assert(t, qt.IsNil(err))
	k3, err := DeriveKey([]byte("secret"), []byte("salt-b"))
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.CmpEquals(k1, k2))
	qt.Assert(t, qt.IsFalse(string(k1) == string(k3)))
}

func TestNewRejectsEmptySecretOrSalt(t *testing.T) {
	_, err := New(mrs.Blake2P{}, nil, []byte("salt"))
	qt.Assert(t, qt.IsNotNil(err))

	_, err = New(mrs.Blake2P{}, []byte("secret"), nil)
	qt.Assert(t, qt.IsNotNil(err))
}
