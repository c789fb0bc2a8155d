// Package crypto seals persisted history snapshots with NaCl secretbox.
//
// A 32-byte key is derived from the user's passphrase with HKDF-SHA256. Each
// sealed blob carries a short magic header and a random 24-byte nonce:
//
//	[ "CBX1" ][ 24-byte nonce ][ ciphertext ]
//
// With an empty passphrase callers pass a nil key and snapshots are written as
// plain JSON.
package crypto

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	KeySize   = 32
	nonceSize = 24
)

var (
	magic    = []byte("CBX1")
	hkdfInfo = []byte("clipbox-history-v1")

	// ErrDecrypt means the blob could not be opened with the given key.
	ErrDecrypt = errors.New("decryption failed (wrong passphrase?)")
)

// Key is a derived secretbox key.
type Key = [KeySize]byte

// DeriveKey derives a secretbox key from passphrase using HKDF-SHA256.
func DeriveKey(passphrase string) (*Key, error) {
	h := hkdf.New(sha256.New, []byte(passphrase), nil, hkdfInfo)
	var key Key
	if _, err := io.ReadFull(h, key[:]); err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	return &key, nil
}

// IsSealed reports whether b starts with the sealed-blob header.
func IsSealed(b []byte) bool { return bytes.HasPrefix(b, magic) }

// Seal encrypts plaintext with key and returns header+nonce+ciphertext.
func Seal(plaintext []byte, key *Key) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("nonce generation: %w", err)
	}
	out := make([]byte, 0, len(magic)+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, magic...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

// Open decrypts a blob produced by Seal.
func Open(blob []byte, key *Key) ([]byte, error) {
	if !IsSealed(blob) {
		return nil, fmt.Errorf("not a sealed snapshot")
	}
	blob = blob[len(magic):]
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[:nonceSize])
	plain, ok := secretbox.Open(nil, blob[nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrDecrypt
	}
	return plain, nil
}
